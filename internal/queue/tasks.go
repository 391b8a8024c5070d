package queue

import (
	"encoding/json"
	"time"

	"github.com/bazar-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskClearChunks 过期分片清理任务
	TaskClearChunks = constants.TaskClearChunks
)

// ClearChunksPayload 分片清理任务载荷
// Trigger 标记任务来源（scheduler/manual），RequestedAt 为入队时间。
type ClearChunksPayload struct {
	Trigger     string    `json:"trigger"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewClearChunksTask 创建分片清理任务
func NewClearChunksTask(payload ClearChunksPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClearChunks, body), nil
}

// ParseClearChunksPayload 解析分片清理任务载荷，空载荷视为手动触发
func ParseClearChunksPayload(task *asynq.Task) (ClearChunksPayload, error) {
	var payload ClearChunksPayload
	if task == nil || len(task.Payload()) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
