package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/service"
	"github.com/bazar-next/internal/storage"
)

const clearedMessage = "File chunks are cleared!"

func main() {
	var enqueue bool
	flag.BoolVar(&enqueue, "queue", false, "推送到异步队列由 worker 执行，而不是立即清理")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	os.Exit(execute(cfg, enqueue))
}

func execute(cfg *config.Config, enqueue bool) int {
	defer func() { _ = logger.Z().Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if enqueue {
		return enqueueSweep(cfg, os.Stdout)
	}

	disk, err := storage.NewLocalDisk(cfg.Media.DiskRoot)
	if err != nil {
		logger.Errorw("clear_chunks_disk_init_failed", "root", cfg.Media.DiskRoot, "error", err)
		fmt.Fprintf(os.Stderr, "disk init failed: %v\n", err)
		return 1
	}
	// 未启用 Redis 时记录为空操作
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("clear_chunks_init_redis_failed", "error", err)
	}
	chunks := service.NewChunkService(disk, cfg.Media.ChunkDir, cfg.Media.ChunkTTL())
	return run(ctx, chunks, time.Now(), recordLastSweep, os.Stdout, os.Stderr)
}

// sweepRecorder 保存最近一次清理结果
type sweepRecorder func(ctx context.Context, report service.ChunkSweepReport) error

func recordLastSweep(ctx context.Context, report service.ChunkSweepReport) error {
	return cache.SetJSON(ctx, cache.KeyLastChunkSweep, report, 0)
}

// run 执行一次清理；单个文件失败不影响退出码，仅命名空间无法列举时返回 1
func run(ctx context.Context, chunks *service.ChunkService, now time.Time, record sweepRecorder, stdout, stderr io.Writer) int {
	report, err := chunks.ClearExpired(ctx, now)
	if err != nil {
		fmt.Fprintf(stderr, "clear chunks failed: %v\n", err)
		return 1
	}
	if record != nil {
		if err := record(ctx, report); err != nil {
			logger.Warnw("clear_chunks_record_failed", "error", err)
		}
	}
	fmt.Fprintln(stdout, clearedMessage)
	fmt.Fprintln(stdout, report.String())
	return 0
}

func enqueueSweep(cfg *config.Config, stdout io.Writer) int {
	client, err := queue.NewClient(&cfg.Queue)
	if err != nil || !client.Enabled() {
		fmt.Fprintln(stdout, "queue is disabled, nothing enqueued")
		return 1
	}
	defer client.Close()
	if err := client.EnqueueClearChunks(queue.ClearChunksPayload{Trigger: "manual", RequestedAt: time.Now()}); err != nil {
		logger.Errorw("clear_chunks_enqueue_failed", "error", err)
		fmt.Fprintf(stdout, "enqueue failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "clear chunks task enqueued")
	return 0
}
