package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	"codeforge-ai-api/internal/domain/repository"
	"codeforge-ai-api/internal/infrastructure/messaging"
	apperrors "codeforge-ai-api/pkg/errors"
	"codeforge-ai-api/pkg/logger"
	"codeforge-ai-api/pkg/metrics"
)

// ResultCache 结果缓存的最小依赖。miss 以错误表达（redis.Nil 语义）。
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// LearningPublisher 学习事件发布的最小依赖
type LearningPublisher interface {
	PublishLearningEvent(ctx context.Context, event *messaging.LearningEventMessage) (string, error)
}

// JobQueue 异步任务入队的最小依赖
type JobQueue interface {
	PublishPipelineJob(ctx context.Context, job *messaging.PipelineJobMessage) (string, error)
}

// Service 流水线应用服务。
// 在编排器之上提供并发去重、结果缓存、异步任务和学习事件。
type Service struct {
	cfg          *config.Config
	orchestrator *Orchestrator
	cache        ResultCache
	publisher    LearningPublisher
	queue        JobQueue
	jobs         repository.JobRepository

	group singleflight.Group
}

// NewService 创建应用服务。cache/publisher/queue/jobs 均可为 nil，对应能力关闭。
func NewService(cfg *config.Config, orchestrator *Orchestrator, cache ResultCache, publisher LearningPublisher, queue JobQueue, jobs repository.JobRepository) *Service {
	return &Service{
		cfg:          cfg,
		orchestrator: orchestrator,
		cache:        cache,
		publisher:    publisher,
		queue:        queue,
		jobs:         jobs,
	}
}

func cacheKey(fingerprint string) string {
	return "pipeline:result:" + fingerprint
}

// Generate 同步执行流水线。
// 相同指纹的并发请求合并为一次执行，其余请求共享结果。
func (s *Service) Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.PipelineResult, error) {
	if !req.Valid() {
		return nil, apperrors.ErrInvalidRequest.WithDetail("prompt is empty")
	}
	fingerprint := req.Fingerprint()

	// 结果缓存命中直接返回
	if cached := s.lookupCache(ctx, fingerprint); cached != nil {
		return cached, nil
	}

	v, err, shared := s.group.Do(fingerprint, func() (interface{}, error) {
		requestID := uuid.New().String()
		result, err := s.orchestrator.Execute(ctx, requestID, req)
		if err != nil {
			return result, err
		}
		s.storeCache(ctx, fingerprint, result)
		s.publishLearningEvent(ctx, req, result)
		return result, nil
	})

	result, _ := v.(*entity.PipelineResult)
	if err != nil {
		return result, err
	}
	if shared {
		// 共享结果返回副本标记，不影响缓存里的原始结果
		clone := *result
		clone.Shared = true
		result = &clone
		metrics.ResultCacheTotal.WithLabelValues("shared").Inc()
	}
	return result, nil
}

// SubmitJob 提交异步生成任务，返回任务 ID
func (s *Service) SubmitJob(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationJob, error) {
	if !req.Valid() {
		return nil, apperrors.ErrInvalidRequest.WithDetail("prompt is empty")
	}
	if s.queue == nil || s.jobs == nil {
		return nil, apperrors.New(apperrors.CodeQueueError, "async jobs are not configured")
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidRequest, "failed to encode request")
	}

	job := entity.NewGenerationJob(uuid.New().String(), req.Fingerprint(), raw)
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	if _, err := s.queue.PublishPipelineJob(ctx, &messaging.PipelineJobMessage{
		JobID:       job.ID,
		RequestID:   uuid.New().String(),
		Fingerprint: job.Fingerprint,
		Request:     raw,
	}); err != nil {
		job.Fail("failed to enqueue: " + err.Error())
		_ = s.jobs.UpdateStatus(ctx, job)
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "failed to enqueue job")
	}
	return job, nil
}

// GetJob 查询异步任务
func (s *Service) GetJob(ctx context.Context, id string) (*entity.GenerationJob, error) {
	if s.jobs == nil {
		return nil, apperrors.ErrJobNotFound
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrJobNotFound
	}
	return s.jobs.GetByID(ctx, id)
}

// RunJob 执行一个排队任务，由消息消费者调用
func (s *Service) RunJob(ctx context.Context, jobID string, req *entity.GenerationRequest) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == entity.JobStatusCompleted || job.Status == entity.JobStatusCancelled {
		return nil
	}

	job.Start()
	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		logger.Warn(ctx, "failed to mark job running", "job_id", jobID, "error", err.Error())
	}

	result, execErr := s.Generate(ctx, req)
	if execErr != nil {
		job.Fail(execErr.Error())
		if err := s.jobs.UpdateStatus(ctx, job); err != nil {
			logger.Error(ctx, "failed to persist job failure", err, "job_id", jobID)
		}
		return execErr
	}

	raw, err := json.Marshal(result)
	if err != nil {
		job.Fail("failed to encode result: " + err.Error())
		_ = s.jobs.UpdateStatus(ctx, job)
		return err
	}
	if result.Usage != nil {
		job.SetLLMMetrics(req.Provider, "", result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}
	job.Complete(raw)
	return s.jobs.UpdateStatus(ctx, job)
}

func (s *Service) lookupCache(ctx context.Context, fingerprint string) *entity.PipelineResult {
	if s.cache == nil || !s.cfg.Features.ResultCache.Enabled {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKey(fingerprint))
	if err != nil || len(raw) == 0 {
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}
	var result entity.PipelineResult
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Warn(ctx, "failed to decode cached result", "error", err.Error())
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}
	result.Shared = true
	metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
	return &result
}

func (s *Service) storeCache(ctx context.Context, fingerprint string, result *entity.PipelineResult) {
	if s.cache == nil || !s.cfg.Features.ResultCache.Enabled {
		return
	}
	// 失败和取消的结果不缓存
	if result.Status == entity.PipelineStatusFailed || result.Status == entity.PipelineStatusCancelled {
		return
	}
	ttl := s.cfg.Features.ResultCache.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := s.cache.Set(ctx, cacheKey(fingerprint), result, ttl); err != nil {
		// 缓存写入失败不影响主流程
		logger.Warn(ctx, "failed to cache pipeline result", "error", err.Error())
	}
}

// publishLearningEvent 发布学习事件，fire-and-forget
func (s *Service) publishLearningEvent(ctx context.Context, req *entity.GenerationRequest, result *entity.PipelineResult) {
	if s.publisher == nil || !s.cfg.Features.LearningEvents.Enabled {
		return
	}
	event := &messaging.LearningEventMessage{
		RequestID:     result.RequestID,
		Fingerprint:   result.Fingerprint,
		Status:        string(result.Status),
		ArtifactCount: len(result.Artifacts),
		FallbackCount: result.FallbackCount(),
		QualityScore:  result.QualityScore,
		DurationMs:    result.Duration.Milliseconds(),
		Provider:      req.Provider,
		Framework:     req.Framework,
		Language:      req.Language,
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := s.publisher.PublishLearningEvent(pubCtx, event); err != nil {
			logger.Warn(pubCtx, "failed to publish learning event", "error", err.Error())
		}
	}()
}
