package main

import (
	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	productRepo := repository.NewProductRepository(models.DB)
	products := []models.Product{
		{Slug: "usb-c-cable", Name: "USB-C Cable", Price: models.NewMoneyFromDecimal(decimal.RequireFromString("9.90")), IsActive: true},
		{Slug: "wireless-mouse", Name: "Wireless Mouse", Price: models.NewMoneyFromDecimal(decimal.RequireFromString("24.50")), IsActive: true},
		{Slug: "desk-lamp", Name: "Desk Lamp", Price: models.NewMoneyFromDecimal(decimal.RequireFromString("39.00")), IsActive: true},
		{Slug: "notebook-a5", Name: "A5 Notebook", Price: models.NewMoneyFromDecimal(decimal.RequireFromString("4.25")), IsActive: false},
	}
	for i := range products {
		product := products[i]
		existing, err := productRepo.GetBySlug(product.Slug)
		if err != nil {
			stdLog.Printf("Failed to load product %s: %v", product.Slug, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Product already exists: %s", product.Slug)
			continue
		}
		if err := productRepo.Create(&product); err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			continue
		}
		stdLog.Printf("Created product: %s (#%d, %s)", product.Slug, product.ID, product.Price.String())
	}

	userRepo := repository.NewUserRepository(models.DB)
	users := []models.User{
		{Email: "demo@example.com", DisplayName: "Demo"},
		{Email: "buyer@example.com", DisplayName: "Buyer"},
	}
	for i := range users {
		user := users[i]
		existing, err := userRepo.GetByEmail(user.Email)
		if err != nil {
			stdLog.Printf("Failed to load user %s: %v", user.Email, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("User already exists: %s", user.Email)
			continue
		}
		if err := userRepo.Create(&user); err != nil {
			stdLog.Printf("Failed to create user %s: %v", user.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s (#%d)", user.Email, user.ID)
	}

	stdLog.Println("Seed completed")
}
