package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadChunk 上传单个文件分片（multipart: file, upload_id, index, total, filename）
func (h *Handler) UploadChunk(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.chunk_invalid", nil)
		return
	}
	index, err := strconv.Atoi(strings.TrimSpace(c.PostForm("index")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.chunk_invalid", nil)
		return
	}
	total, err := strconv.Atoi(strings.TrimSpace(c.PostForm("total")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.chunk_invalid", nil)
		return
	}
	filename := strings.TrimSpace(c.PostForm("filename"))
	if filename == "" {
		filename = file.Filename
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, response.CodeInternal, "error.chunk_store_failed", err)
		return
	}
	defer src.Close()

	result, err := h.UploadService.SaveChunk(service.ChunkUploadInput{
		UploadID: c.PostForm("upload_id"),
		Filename: filename,
		Index:    index,
		Total:    total,
		Size:     file.Size,
		Content:  src,
	})
	if err != nil {
		respondWithMappedError(c, err, chunkErrorRules, response.CodeInternal, "error.chunk_store_failed")
		return
	}
	response.Success(c, result)
}

// GetLastChunkSweep 获取最近一次分片清理结果（未启用缓存或尚未清理时为 null）
func (h *Handler) GetLastChunkSweep(c *gin.Context) {
	var report service.ChunkSweepReport
	found, err := cache.GetJSON(c.Request.Context(), cache.KeyLastChunkSweep, &report)
	if err != nil {
		respondError(c, response.CodeInternal, "error.chunk_sweep_fetch", err)
		return
	}
	if !found {
		response.Success(c, nil)
		return
	}
	response.Success(c, gin.H{
		"report":  report,
		"summary": report.String(),
	})
}

// TriggerChunkSweep 触发一次分片清理；启用队列时交给 worker，否则同步执行并返回结果
func (h *Handler) TriggerChunkSweep(c *gin.Context) {
	if h.QueueClient.Enabled() {
		payload := queue.ClearChunksPayload{Trigger: "api", RequestedAt: time.Now()}
		if err := h.QueueClient.EnqueueClearChunks(payload); err != nil {
			respondError(c, response.CodeInternal, "error.chunk_sweep_enqueue_failed", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}
	if h.ChunkService == nil {
		respondError(c, response.CodeInternal, "error.chunk_sweep_failed", nil)
		return
	}

	ctx := c.Request.Context()
	report, err := h.ChunkService.ClearExpired(ctx, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.chunk_sweep_failed", err)
		return
	}
	if err := cache.SetJSON(ctx, cache.KeyLastChunkSweep, report, 0); err != nil {
		logger.Warnw("chunk_sweep_cache_report_failed", "error", err)
	}
	response.Success(c, gin.H{
		"queued":  false,
		"report":  report,
		"summary": report.String(),
	})
}
