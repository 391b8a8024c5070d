package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// MaintenanceQueue 维护任务队列名称
	MaintenanceQueue = constants.QueueMaintenance

	clearChunksUniqueTTL = 10 * time.Minute
	clearChunksMaxRetry  = 1
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueClearChunks 推送过期分片清理任务
// 同一时间窗口内重复推送会被去重。
func (c *Client) EnqueueClearChunks(payload ClearChunksPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewClearChunksTask(payload)
	if err != nil {
		return err
	}
	options := append(ClearChunksOptions(), opts...)
	_, err = c.client.Enqueue(task, options...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// ClearChunksOptions 分片清理任务的默认选项
func ClearChunksOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(MaintenanceQueue),
		asynq.MaxRetry(clearChunksMaxRetry),
		asynq.Unique(clearChunksUniqueTTL),
	}
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, MaintenanceQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

// NewScheduler 创建周期任务调度器并注册分片清理任务
func NewScheduler(cfg *config.QueueConfig, schedulerCfg config.SchedulerConfig) (*asynq.Scheduler, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	cronspec := strings.TrimSpace(schedulerCfg.ClearChunksCron)
	if cronspec == "" {
		return nil, errors.New("clear chunks cron is empty")
	}
	task, err := NewClearChunksTask(ClearChunksPayload{Trigger: "scheduler"})
	if err != nil {
		return nil, err
	}
	scheduler := asynq.NewScheduler(buildRedisOpt(cfg), &asynq.SchedulerOpts{Location: time.Local})
	if _, err := scheduler.Register(cronspec, task, ClearChunksOptions()...); err != nil {
		return nil, fmt.Errorf("register clear chunks cron %q failed: %w", cronspec, err)
	}
	return scheduler, nil
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
