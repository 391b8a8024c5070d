package worker

import (
	"context"
	"time"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/provider"
	"github.com/bazar-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskClearChunks, c.handleClearChunks)
}

func (c *Consumer) handleClearChunks(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_clear_chunks_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseClearChunksPayload(task)
	if err != nil {
		// 载荷损坏不影响清理本身
		logger.Warnw("worker_clear_chunks_unmarshal_failed", "error", err)
	}
	if c.Container == nil || c.ChunkService == nil {
		logger.Warnw("worker_clear_chunks_skip_service_nil")
		return nil
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	report, err := c.ChunkService.ClearExpired(ctx, now())
	if err != nil {
		logger.Warnw("worker_clear_chunks_failed", "trigger", payload.Trigger, "error", err)
		return err
	}
	if err := cache.SetJSON(ctx, cache.KeyLastChunkSweep, report, 0); err != nil {
		logger.Warnw("worker_clear_chunks_cache_report_failed", "error", err)
	}
	logger.Infow("worker_clear_chunks_done",
		"trigger", payload.Trigger,
		"deleted", report.Deleted,
		"retained", report.Retained,
		"failed", report.Failed,
		"summary", report.String(),
	)
	return nil
}
