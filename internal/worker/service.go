package worker

import (
	"context"
	"errors"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务（消费者 + 周期调度）
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	consumer  *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, schedulerCfg config.SchedulerConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	svc := &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}
	if schedulerCfg.Enabled {
		scheduler, err := queue.NewScheduler(cfg, schedulerCfg)
		if err != nil {
			return nil, err
		}
		svc.scheduler = scheduler
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	_ = ctx
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			logger.Errorw("worker_scheduler_start_failed", "error", err)
			return err
		}
		logger.Infow("worker_scheduler_started", "task", queue.TaskClearChunks)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	if s.server != nil {
		s.server.Shutdown()
	}
	return nil
}
