package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"codeforge-ai-api/internal/domain/entity"
	"codeforge-ai-api/internal/domain/repository"
	apperrors "codeforge-ai-api/pkg/errors"
)

// 任务记录默认保留时长，过期后查询返回 job not found
const defaultJobTTL = 24 * time.Hour

// JobStore 基于 Redis 的任务仓储实现
type JobStore struct {
	client *Client
	ttl    time.Duration
}

var _ repository.JobRepository = (*JobStore)(nil)

// NewJobStore 创建任务仓储，ttl 非正时使用默认保留时长
func NewJobStore(client *Client, ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &JobStore{client: client, ttl: ttl}
}

func jobKey(id string) string {
	return fmt.Sprintf("pipeline:job:%s", id)
}

// Save 保存任务
func (s *JobStore) Save(ctx context.Context, job *entity.GenerationJob) error {
	ctx, span := tracer.Start(ctx, "jobstore.Save",
		trace.WithAttributes(attribute.String("job.id", job.ID)))
	defer span.End()

	bytes, err := json.Marshal(job)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to marshal job")
	}
	if err := s.client.rdb.Set(ctx, jobKey(job.ID), bytes, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to save job")
	}
	return nil
}

// GetByID 根据 ID 获取任务
func (s *JobStore) GetByID(ctx context.Context, id string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "jobstore.GetByID",
		trace.WithAttributes(attribute.String("job.id", id)))
	defer span.End()

	bytes, err := s.client.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, apperrors.ErrJobNotFound
		}
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to load job")
	}

	var job entity.GenerationJob
	if err := json.Unmarshal(bytes, &job); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to unmarshal job")
	}
	return &job, nil
}

// UpdateStatus 更新任务状态，整体覆盖写入
func (s *JobStore) UpdateStatus(ctx context.Context, job *entity.GenerationJob) error {
	return s.Save(ctx, job)
}
