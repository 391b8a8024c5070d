package provider

import (
	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/repository"
	"github.com/bazar-next/internal/service"
	"github.com/bazar-next/internal/storage"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Disk        storage.Disk

	// Repositories
	CartRepo    repository.CartRepository
	OwnedRepo   repository.OwnedRepository
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository

	// Services
	CartService   *service.CartService
	ChunkService  *service.ChunkService
	UploadService *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	disk, err := storage.NewLocalDisk(cfg.Media.DiskRoot)
	if err != nil {
		logger.Errorw("provider_init_disk_failed", "root", cfg.Media.DiskRoot, "error", err)
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Disk:        disk,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices()

	return c, nil
}

// NewContainerWith 使用指定数据库与磁盘创建容器（测试与命令行使用）
func NewContainerWith(cfg *config.Config, db *gorm.DB, disk storage.Disk) *Container {
	c := &Container{Config: cfg, Disk: disk}
	c.initRepositories(db)
	c.initServices()
	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	if db == nil {
		return
	}
	c.CartRepo = repository.NewCartRepository(db)
	c.OwnedRepo = repository.NewOwnedRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
}

func (c *Container) initServices() {
	if c.CartRepo != nil {
		c.CartService = service.NewCartService(c.CartRepo, c.OwnedRepo, c.ProductRepo, c.UserRepo)
	}
	if c.Disk != nil {
		c.ChunkService = service.NewChunkService(c.Disk, c.Config.Media.ChunkDir, c.Config.Media.ChunkTTL())
		c.UploadService = service.NewUploadService(c.Disk, c.Config.Media)
	}
}

// Close 释放容器持有的外部连接
func (c *Container) Close() error {
	if c == nil || c.QueueClient == nil {
		return nil
	}
	return c.QueueClient.Close()
}
