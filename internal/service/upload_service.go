package service

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/storage"

	"github.com/google/uuid"
)

const (
	defaultChunkMaxSize = 2 << 20
	defaultMaxChunks    = 512
	mediaDir            = "media"
)

// ChunkUploadInput 分片上传输入
type ChunkUploadInput struct {
	UploadID string
	Filename string
	Index    int
	Total    int
	Size     int64
	Content  io.Reader
}

// ChunkUploadResult 分片上传结果
// Path 仅在全部分片到齐并合并后返回。
type ChunkUploadResult struct {
	UploadID  string `json:"upload_id"`
	Index     int    `json:"index"`
	Received  int    `json:"received"`
	Total     int    `json:"total"`
	Completed bool   `json:"completed"`
	Path      string `json:"path,omitempty"`
}

// UploadService 分片上传服务
type UploadService struct {
	disk     storage.Disk
	chunkDir string
	media    config.MediaConfig
	now      func() time.Time
}

// NewUploadService 创建分片上传服务
func NewUploadService(disk storage.Disk, media config.MediaConfig) *UploadService {
	chunkDir := strings.Trim(strings.TrimSpace(media.ChunkDir), "/")
	if chunkDir == "" {
		chunkDir = defaultChunkDir
	}
	return &UploadService{
		disk:     disk,
		chunkDir: chunkDir,
		media:    media,
		now:      time.Now,
	}
}

// SaveChunk 保存一个分片；最后一个分片到达时合并为完整文件并清理分片
func (s *UploadService) SaveChunk(input ChunkUploadInput) (*ChunkUploadResult, error) {
	maxChunks := s.media.MaxChunks
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	if input.Content == nil || input.Total <= 0 || input.Total > maxChunks || input.Index < 0 || input.Index >= input.Total {
		return nil, ErrInvalidChunk
	}
	maxSize := s.media.ChunkMaxSize
	if maxSize <= 0 {
		maxSize = defaultChunkMaxSize
	}
	if input.Size > maxSize {
		return nil, ErrChunkTooLarge
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if len(s.media.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.media.AllowedExtensions) {
			return nil, fmt.Errorf("%w: extension %q not allowed", ErrInvalidChunk, ext)
		}
	}

	uploadID := strings.TrimSpace(input.UploadID)
	if uploadID == "" {
		uploadID = uuid.NewString()
	} else {
		parsed, err := uuid.Parse(uploadID)
		if err != nil {
			return nil, fmt.Errorf("%w: upload id", ErrInvalidChunk)
		}
		// urn:uuid:、{...} 等写法统一为标准形式，保证同一上传落在同一目录
		uploadID = parsed.String()
	}

	// 多读 1 字节用于识别超限分片（Size 可能未知或不可信）
	written, err := s.disk.Put(s.chunkPath(uploadID, input.Index), io.LimitReader(input.Content, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkStoreFailed, err)
	}
	if written > maxSize {
		_ = s.disk.Delete(s.chunkPath(uploadID, input.Index))
		return nil, ErrChunkTooLarge
	}

	received, err := s.receivedChunks(uploadID, input.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkStoreFailed, err)
	}
	result := &ChunkUploadResult{
		UploadID: uploadID,
		Index:    input.Index,
		Received: received,
		Total:    input.Total,
	}
	if received < input.Total {
		return result, nil
	}

	target, err := s.assemble(uploadID, input.Total, ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkStoreFailed, err)
	}
	result.Completed = true
	result.Path = "/" + target
	return result, nil
}

func (s *UploadService) chunkPath(uploadID string, index int) string {
	return path.Join(s.chunkDir, uploadID, strconv.Itoa(index)+".part")
}

func (s *UploadService) receivedChunks(uploadID string, total int) (int, error) {
	received := 0
	for i := 0; i < total; i++ {
		if _, err := s.disk.LastModified(s.chunkPath(uploadID, i)); err == nil {
			received++
		}
	}
	return received, nil
}

// assemble 按序合并分片，成功后删除分片；失败时分片保留，由过期清理兜底
func (s *UploadService) assemble(uploadID string, total int, ext string) (string, error) {
	readers := make([]io.Reader, 0, total)
	closers := make([]io.Closer, 0, total)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	for i := 0; i < total; i++ {
		rc, err := s.disk.Open(s.chunkPath(uploadID, i))
		if err != nil {
			return "", err
		}
		readers = append(readers, rc)
		closers = append(closers, rc)
	}

	now := s.now()
	target := path.Join(mediaDir, now.Format("2006"), now.Format("01"), uploadID+ext)
	if _, err := s.disk.Put(target, io.MultiReader(readers...)); err != nil {
		return "", err
	}
	for _, c := range closers {
		_ = c.Close()
	}
	closers = nil

	for i := 0; i < total; i++ {
		if err := s.disk.Delete(s.chunkPath(uploadID, i)); err != nil {
			logger.Warnw("chunk_cleanup_after_assemble_failed", "upload_id", uploadID, "index", i, "error", err)
		}
	}
	return target, nil
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}
