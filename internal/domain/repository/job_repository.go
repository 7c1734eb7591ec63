// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"codeforge-ai-api/internal/domain/entity"
)

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Save 保存任务 (新建或整体覆盖)
	Save(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.GenerationJob, error)

	// UpdateStatus 更新任务状态与进度
	UpdateStatus(ctx context.Context, job *entity.GenerationJob) error
}
