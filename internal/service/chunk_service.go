package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/storage"

	"github.com/dustin/go-humanize"
)

const defaultChunkDir = "chunks"

// ChunkSweepReport 一次分片清理的结果
type ChunkSweepReport struct {
	Scanned    int           `json:"scanned"`
	Deleted    int           `json:"deleted"`
	Retained   int           `json:"retained"`
	Failed     int           `json:"failed"`
	FreedBytes int64         `json:"freed_bytes"`
	Duration   time.Duration `json:"duration"`
	SweptAt    time.Time     `json:"swept_at"`
}

// String 返回可读的清理摘要
func (r ChunkSweepReport) String() string {
	return fmt.Sprintf("scanned %d, deleted %d, retained %d, failed %d, freed %s",
		r.Scanned, r.Deleted, r.Retained, r.Failed, humanize.Bytes(uint64(r.FreedBytes)))
}

// ChunkService 上传分片服务
type ChunkService struct {
	disk       storage.Disk
	dir        string
	expiration time.Duration
}

// NewChunkService 创建分片服务
func NewChunkService(disk storage.Disk, dir string, expiration time.Duration) *ChunkService {
	dir = strings.Trim(strings.TrimSpace(dir), "/")
	if dir == "" {
		dir = defaultChunkDir
	}
	if expiration < 0 {
		expiration = 0
	}
	return &ChunkService{disk: disk, dir: dir, expiration: expiration}
}

// Dir 分片命名空间
func (s *ChunkService) Dir() string {
	return s.dir
}

// Expiration 分片过期时长
func (s *ChunkService) Expiration() time.Duration {
	return s.expiration
}

// ClearExpired 删除最后修改时间距 now 已达到过期时长的分片
// 单个文件失败只记录日志并计数，不影响其余文件；仅命名空间列举失败时返回错误。
func (s *ChunkService) ClearExpired(ctx context.Context, now time.Time) (ChunkSweepReport, error) {
	started := time.Now()
	report := ChunkSweepReport{SweptAt: now}
	log := logger.SW("component", "chunk_sweeper", "dir", s.dir)

	files, err := s.disk.AllFiles(ctx, s.dir)
	if err != nil {
		log.Errorw("chunk_sweep_list_failed", "error", err)
		return report, fmt.Errorf("%w: %w", ErrChunkListFailed, err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(started)
			log.Warnw("chunk_sweep_canceled", "scanned", report.Scanned, "deleted", report.Deleted)
			return report, err
		}
		report.Scanned++

		modified, err := s.disk.LastModified(file)
		if err != nil {
			report.Failed++
			log.Warnw("chunk_sweep_stat_failed", "file", file, "error", err)
			continue
		}
		if !s.expired(now, modified) {
			report.Retained++
			continue
		}

		size, sizeErr := s.disk.Size(file)
		if err := s.disk.Delete(file); err != nil {
			report.Failed++
			log.Warnw("chunk_sweep_delete_failed", "file", file, "path", s.disk.Path(file), "error", err)
			continue
		}
		report.Deleted++
		if sizeErr == nil {
			report.FreedBytes += size
		}
		log.Debugw("chunk_sweep_deleted", "file", file, "age", now.Sub(modified))
	}

	report.Duration = time.Since(started)
	log.Infow("chunk_sweep_done",
		"scanned", report.Scanned,
		"deleted", report.Deleted,
		"retained", report.Retained,
		"failed", report.Failed,
		"freed_bytes", report.FreedBytes,
		"duration", report.Duration,
	)
	return report, nil
}

func (s *ChunkService) expired(now, modified time.Time) bool {
	return now.Sub(modified) >= s.expiration
}
