package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type cartServiceFixture struct {
	svc      *CartService
	carts    *repository.GormCartRepository
	owned    *repository.GormOwnedRepository
	products *repository.GormProductRepository
	users    *repository.GormUserRepository
}

func newCartServiceFixture(t *testing.T) *cartServiceFixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	fx := &cartServiceFixture{
		carts:    repository.NewCartRepository(db),
		owned:    repository.NewOwnedRepository(db),
		products: repository.NewProductRepository(db),
		users:    repository.NewUserRepository(db),
	}
	fx.svc = NewCartService(fx.carts, fx.owned, fx.products, fx.users)
	return fx
}

func (fx *cartServiceFixture) product(t *testing.T, slug, price string) *models.Product {
	t.Helper()
	product := &models.Product{Slug: slug, Name: strings.ToUpper(slug), Price: mustParseMoney(t, price), IsActive: true}
	if err := fx.products.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func mustParseMoney(t *testing.T, raw string) models.Money {
	t.Helper()
	m, err := models.ParseMoney(raw)
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	return m
}

func TestCartServiceTotalsUseAttachedSnapshots(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, err := fx.svc.Create(CreateCartInput{Discount: mustParseMoney(t, "5")})
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	shirt := fx.product(t, "shirt", "10.00")
	mug := fx.product(t, "mug", "3.33")

	if _, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: shirt.ID, Price: mustParseMoney(t, "10.00"), Tax: mustParseMoney(t, "1.50"), Quantity: 2}); err != nil {
		t.Fatalf("attach shirt failed: %v", err)
	}
	if _, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: mug.ID, Price: mustParseMoney(t, "3.33"), Tax: mustParseMoney(t, "0.27"), Quantity: 3}); err != nil {
		t.Fatalf("attach mug failed: %v", err)
	}

	summary, err := fx.svc.Summary(cart.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !summary.Total.Equal(mustParseMoney(t, "28.80")) {
		t.Fatalf("total want 28.80 got %s", summary.Total)
	}
	if !summary.NetTotal.Equal(mustParseMoney(t, "24.99")) {
		t.Fatalf("net total want 24.99 got %s", summary.NetTotal)
	}
	if len(summary.Cart.Items) != 2 || summary.Cart.Items[0].Name != "SHIRT" {
		t.Fatalf("unexpected items: %+v", summary.Cart.Items)
	}

	// 修改商品价格不影响已加入的快照
	if err := fx.products.UpdatePrice(shirt.ID, mustParseMoney(t, "99.00")); err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	total, err := fx.svc.Total(cart.ID)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if !total.Equal(mustParseMoney(t, "28.80")) {
		t.Fatalf("snapshot changed after price update: %s", total)
	}
}

func TestCartServiceEmptyCartTotalIsZero(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, err := fx.svc.Create(CreateCartInput{})
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if cart.Currency != defaultCartCurrency {
		t.Fatalf("unexpected currency: %s", cart.Currency)
	}
	total, err := fx.svc.Total(cart.ID)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	net, err := fx.svc.NetTotal(cart.ID)
	if err != nil {
		t.Fatalf("net total failed: %v", err)
	}
	if !total.IsZero() || !net.IsZero() {
		t.Fatalf("empty cart want zero totals, got %s / %s", total, net)
	}
}

func TestCartServiceAttachSameProductMergesQuantity(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	pen := fx.product(t, "pen", "2.00")

	for _, price := range []string{"2.00", "1.50"} {
		if _, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Price: mustParseMoney(t, price), Quantity: 2}); err != nil {
			t.Fatalf("attach failed: %v", err)
		}
	}
	items, err := fx.owned.ListItems(models.OwnerOf(cart))
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("expected one merged item with quantity 4, got %+v", items)
	}
	if !items[0].Price.Equal(mustParseMoney(t, "1.50")) {
		t.Fatalf("expected latest price snapshot, got %s", items[0].Price)
	}
}

func TestCartServiceAttachReturnsMergedItem(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	pen := fx.product(t, "pen", "2.00")

	if _, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Price: mustParseMoney(t, "2"), Quantity: 2}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	item, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Price: mustParseMoney(t, "2"), Quantity: 3})
	if err != nil {
		t.Fatalf("attach again failed: %v", err)
	}
	if item.Quantity != 5 || item.ID == 0 {
		t.Fatalf("expected stored item with quantity 5, got %+v", item)
	}
}

func TestCartServiceAttachValidation(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	pen := fx.product(t, "pen", "2.00")

	cases := []struct {
		name  string
		input AttachItemInput
		want  error
	}{
		{"zero quantity", AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Quantity: 0}, ErrInvalidCartItem},
		{"negative price", AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Price: mustParseMoney(t, "-1"), Quantity: 1}, ErrInvalidCartItem},
		{"missing product", AttachItemInput{CartID: cart.ID, ProductID: 999, Quantity: 1}, ErrProductNotFound},
		{"missing cart", AttachItemInput{CartID: 999, ProductID: pen.ID, Quantity: 1}, ErrCartNotFound},
	}
	for _, tc := range cases {
		if _, err := fx.svc.Attach(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestCartServiceDetach(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	pen := fx.product(t, "pen", "2.00")
	if _, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Price: mustParseMoney(t, "2"), Quantity: 1}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := fx.svc.Detach(cart.ID, pen.ID); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	total, _ := fx.svc.Total(cart.ID)
	if !total.IsZero() {
		t.Fatalf("expected zero total after detach, got %s", total)
	}
}

func TestCartServiceDeleteCascades(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	other, _ := fx.svc.Create(CreateCartInput{})
	pen := fx.product(t, "pen", "2.00")

	for _, id := range []uint{cart.ID, other.ID} {
		if _, err := fx.svc.Attach(AttachItemInput{CartID: id, ProductID: pen.ID, Price: mustParseMoney(t, "2"), Quantity: 1}); err != nil {
			t.Fatalf("attach failed: %v", err)
		}
		if _, err := fx.svc.SaveAddress(id, &models.Address{FirstName: "Ada", City: "London"}); err != nil {
			t.Fatalf("save address failed: %v", err)
		}
		if _, err := fx.svc.SaveShipping(id, &models.Shipping{Cost: mustParseMoney(t, "4.99")}); err != nil {
			t.Fatalf("save shipping failed: %v", err)
		}
	}

	if err := fx.svc.Delete(cart.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	counts, err := fx.owned.CountByOwner(models.OwnerOf(cart))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts.Addresses != 0 || counts.Shippings != 0 || counts.Items != 0 {
		t.Fatalf("expected no orphans, got %+v", counts)
	}
	if _, err := fx.svc.Get(cart.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected cart not found after delete, got %v", err)
	}

	kept, err := fx.owned.CountByOwner(models.OwnerOf(other))
	if err != nil {
		t.Fatalf("count other failed: %v", err)
	}
	if kept.Addresses != 1 || kept.Shippings != 1 || kept.Items != 1 {
		t.Fatalf("other cart should be untouched, got %+v", kept)
	}
}

// failingDeleteCartRepo 删除购物车行时失败，用于验证事务回滚
type failingDeleteCartRepo struct {
	repository.CartRepository
}

func (r failingDeleteCartRepo) WithTx(tx *gorm.DB) repository.CartRepository {
	return failingDeleteCartRepo{CartRepository: r.CartRepository.WithTx(tx)}
}

func (failingDeleteCartRepo) Delete(id uint) (int64, error) {
	return 0, errors.New("boom")
}

func TestCartServiceDeleteRollsBackDependents(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	pen := fx.product(t, "pen", "2.00")
	if _, err := fx.svc.Attach(AttachItemInput{CartID: cart.ID, ProductID: pen.ID, Price: mustParseMoney(t, "2"), Quantity: 1}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if _, err := fx.svc.SaveAddress(cart.ID, &models.Address{FirstName: "Ada"}); err != nil {
		t.Fatalf("save address failed: %v", err)
	}
	if _, err := fx.svc.SaveShipping(cart.ID, &models.Shipping{Cost: mustParseMoney(t, "4.99")}); err != nil {
		t.Fatalf("save shipping failed: %v", err)
	}

	svc := NewCartService(failingDeleteCartRepo{CartRepository: fx.carts}, fx.owned, fx.products, fx.users)
	if err := svc.Delete(cart.ID); !errors.Is(err, ErrCartDeleteFailed) {
		t.Fatalf("want ErrCartDeleteFailed got %v", err)
	}

	counts, err := fx.owned.CountByOwner(models.OwnerOf(cart))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts.Addresses != 1 || counts.Shippings != 1 || counts.Items != 1 {
		t.Fatalf("dependents should be rolled back, got %+v", counts)
	}
	if _, err := fx.svc.Get(cart.ID); err != nil {
		t.Fatalf("cart should survive failed delete: %v", err)
	}
}

func TestCartServiceDeleteMissingCart(t *testing.T) {
	fx := newCartServiceFixture(t)
	if err := fx.svc.Delete(404); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("want ErrCartNotFound got %v", err)
	}
}

func TestCartServiceUserAssociation(t *testing.T) {
	fx := newCartServiceFixture(t)
	user := &models.User{Email: "buyer@example.com"}
	if err := fx.users.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	cart, _ := fx.svc.Create(CreateCartInput{})

	if err := fx.svc.AssociateUser(cart.ID, 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound got %v", err)
	}
	if err := fx.svc.AssociateUser(cart.ID, user.ID); err != nil {
		t.Fatalf("associate failed: %v", err)
	}
	got, err := fx.svc.Get(cart.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.User == nil || got.User.Email != "buyer@example.com" {
		t.Fatalf("expected associated user, got %+v", got.User)
	}

	if err := fx.svc.DissociateUser(cart.ID); err != nil {
		t.Fatalf("dissociate failed: %v", err)
	}
	got, _ = fx.svc.Get(cart.ID)
	if got.UserID != nil || got.User != nil {
		t.Fatalf("expected guest cart, got %+v", got.UserID)
	}
}

func TestCartServiceSaveShippingDefaultsDriver(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	shipping, err := fx.svc.SaveShipping(cart.ID, &models.Shipping{})
	if err != nil {
		t.Fatalf("save shipping failed: %v", err)
	}
	if shipping.Driver != "local-pickup" {
		t.Fatalf("unexpected driver: %s", shipping.Driver)
	}
	if _, err := fx.svc.SaveShipping(cart.ID, &models.Shipping{Cost: mustParseMoney(t, "-1")}); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("want ErrInvalidCartItem got %v", err)
	}
}

func TestCartServiceSetDiscount(t *testing.T) {
	fx := newCartServiceFixture(t)
	cart, _ := fx.svc.Create(CreateCartInput{})
	if err := fx.svc.SetDiscount(cart.ID, mustParseMoney(t, "-2")); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("want ErrInvalidDiscount got %v", err)
	}
	if err := fx.svc.SetDiscount(cart.ID, mustParseMoney(t, "3.50")); err != nil {
		t.Fatalf("set discount failed: %v", err)
	}
	total, _ := fx.svc.Total(cart.ID)
	if !total.Equal(mustParseMoney(t, "-3.50")) {
		t.Fatalf("want -3.50 got %s", total)
	}
}
