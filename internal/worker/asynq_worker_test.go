package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/provider"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/service"
	"github.com/bazar-next/internal/storage"

	"github.com/hibiken/asynq"
	"github.com/spf13/afero"
)

func TestHandleClearChunksDeletesExpired(t *testing.T) {
	fs := afero.NewBasePathFs(afero.NewMemMapFs(), "/disk")
	disk := storage.NewDiskFromFs(fs, "/disk")
	if _, err := disk.Put("chunks/u/0.part", strings.NewReader("x")); err != nil {
		t.Fatalf("put chunk failed: %v", err)
	}
	now := time.Now()
	old := now.Add(-2 * time.Hour)
	if err := fs.Chtimes("chunks/u/0.part", old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	consumer := NewConsumer(&provider.Container{
		ChunkService: service.NewChunkService(disk, "chunks", time.Hour),
	})
	consumer.now = func() time.Time { return now }

	task, err := queue.NewClearChunksTask(queue.ClearChunksPayload{Trigger: "manual"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleClearChunks(context.Background(), task); err != nil {
		t.Fatalf("handle clear chunks failed: %v", err)
	}
	if _, err := disk.LastModified("chunks/u/0.part"); err == nil {
		t.Fatalf("expired chunk should be deleted")
	}
}

func TestHandleClearChunksToleratesBadPayload(t *testing.T) {
	fs := afero.NewBasePathFs(afero.NewMemMapFs(), "/disk")
	consumer := NewConsumer(&provider.Container{
		ChunkService: service.NewChunkService(storage.NewDiskFromFs(fs, "/disk"), "chunks", time.Hour),
	})
	task := asynq.NewTask(queue.TaskClearChunks, []byte("{broken"))
	if err := consumer.handleClearChunks(context.Background(), task); err != nil {
		t.Fatalf("broken payload should not fail sweep: %v", err)
	}
}

func TestHandleClearChunksWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskClearChunks, nil)
	if err := consumer.handleClearChunks(context.Background(), task); err != nil {
		t.Fatalf("missing service should be skipped: %v", err)
	}
}

func TestNewServiceRequiresQueue(t *testing.T) {
	if _, err := NewService(&config.QueueConfig{Enabled: false}, config.SchedulerConfig{}, NewConsumer(&provider.Container{})); err == nil {
		t.Fatalf("expected error when queue disabled")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, config.SchedulerConfig{}, nil); err == nil {
		t.Fatalf("expected error when consumer nil")
	}
}
