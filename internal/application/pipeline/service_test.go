package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	"codeforge-ai-api/internal/domain/repository"
	"codeforge-ai-api/internal/infrastructure/messaging"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	apperrors "codeforge-ai-api/pkg/errors"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if raw, ok := c.data[key]; ok {
		return raw, nil
	}
	return nil, errors.New("cache miss")
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.sets++
	return nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]*entity.GenerationJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*entity.GenerationJob)}
}

func (s *fakeJobStore) Save(ctx context.Context, job *entity.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

func (s *fakeJobStore) GetByID(ctx context.Context, id string) (*entity.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (s *fakeJobStore) UpdateStatus(ctx context.Context, job *entity.GenerationJob) error {
	return s.Save(ctx, job)
}

type fakeQueue struct {
	mu       sync.Mutex
	messages []*messaging.PipelineJobMessage
	err      error
}

func (q *fakeQueue) PublishPipelineJob(ctx context.Context, job *messaging.PipelineJobMessage) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.messages = append(q.messages, job)
	return "1-0", nil
}

func newTestService(cfg *config.Config, invoker ComponentInvoker, cache ResultCache, queue JobQueue, jobs repository.JobRepository) *Service {
	return NewService(cfg, newTestOrchestrator(cfg, invoker), cache, nil, queue, jobs)
}

func slowUsableInvoker(delay time.Duration) *fakeComponentInvoker {
	return &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		time.Sleep(delay)
		return &wfmodel.ComponentGenerateOutput{Raw: usableComponentOutput}, nil
	}}
}

func TestGenerateDeduplicatesConcurrentRequests(t *testing.T) {
	invoker := slowUsableInvoker(100 * time.Millisecond)
	svc := newTestService(testConfig(), invoker, nil, nil, nil)

	const callers = 5
	results := make([]*entity.PipelineResult, callers)
	errs := make([]error, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = svc.Generate(context.Background(), cardRequest())
		}()
	}
	start.Done()
	done.Wait()

	assert.Equal(t, 1, invoker.callCount())

	shared := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, entity.PipelineStatusSuccess, results[i].Status)
		if results[i].Shared {
			shared++
		}
	}
	assert.Equal(t, callers-1, shared)
}

func TestGenerateResultCacheHit(t *testing.T) {
	cfg := testConfig()
	cfg.Features.ResultCache.Enabled = true

	invoker := slowUsableInvoker(0)
	cache := newFakeCache()
	svc := newTestService(cfg, invoker, cache, nil, nil)

	first, err := svc.Generate(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.False(t, first.Shared)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Generate(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.True(t, second.Shared)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	// 缓存命中不再触发执行
	assert.Equal(t, 1, invoker.callCount())
}

func TestGenerateInvalidRequest(t *testing.T) {
	invoker := slowUsableInvoker(0)
	svc := newTestService(testConfig(), invoker, nil, nil, nil)

	_, err := svc.Generate(context.Background(), &entity.GenerationRequest{Prompt: " "})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRequest))
	assert.Equal(t, 0, invoker.callCount())
}

func TestSubmitJobWithoutQueue(t *testing.T) {
	svc := newTestService(testConfig(), slowUsableInvoker(0), nil, nil, nil)

	_, err := svc.SubmitJob(context.Background(), cardRequest())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQueueError))
}

func TestSubmitJobEnqueuesAndPersists(t *testing.T) {
	jobs := newFakeJobStore()
	queue := &fakeQueue{}
	svc := newTestService(testConfig(), slowUsableInvoker(0), nil, queue, jobs)

	job, err := svc.SubmitJob(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, job.Status)
	assert.NotEmpty(t, job.ID)
	assert.NotEmpty(t, job.Fingerprint)

	stored, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.ID)

	require.Len(t, queue.messages, 1)
	assert.Equal(t, job.ID, queue.messages[0].JobID)
	assert.Equal(t, job.Fingerprint, queue.messages[0].Fingerprint)
	assert.NotEmpty(t, queue.messages[0].Request)
}

func TestSubmitJobEnqueueFailureMarksJobFailed(t *testing.T) {
	jobs := newFakeJobStore()
	queue := &fakeQueue{err: errors.New("stream unavailable")}
	svc := newTestService(testConfig(), slowUsableInvoker(0), nil, queue, jobs)

	job, err := svc.SubmitJob(context.Background(), cardRequest())
	require.Error(t, err)
	require.Nil(t, job)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQueueError))

	// 入队失败的任务留在存储里并标记失败
	var failed *entity.GenerationJob
	for _, j := range jobs.jobs {
		failed = j
	}
	require.NotNil(t, failed)
	assert.Equal(t, entity.JobStatusFailed, failed.Status)
}

func TestGetJobMissing(t *testing.T) {
	svc := newTestService(testConfig(), slowUsableInvoker(0), nil, &fakeQueue{}, newFakeJobStore())

	_, err := svc.GetJob(context.Background(), "no-such-job")

	assert.True(t, apperrors.IsCode(err, apperrors.CodeJobNotFound))
}

func TestRunJobCompletes(t *testing.T) {
	jobs := newFakeJobStore()
	queue := &fakeQueue{}
	svc := newTestService(testConfig(), slowUsableInvoker(0), nil, queue, jobs)

	req := cardRequest()
	job, err := svc.SubmitJob(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, svc.RunJob(context.Background(), job.ID, req))

	stored, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, stored.Status)
	require.NotEmpty(t, stored.Result)

	var result entity.PipelineResult
	require.NoError(t, json.Unmarshal(stored.Result, &result))
	assert.Equal(t, entity.PipelineStatusSuccess, result.Status)
	assert.Len(t, result.Artifacts, 1)
}

func TestRunJobFailurePersisted(t *testing.T) {
	jobs := newFakeJobStore()
	queue := &fakeQueue{}
	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return nil, errors.New("boom")
	}}
	svc := newTestService(testConfig(), invoker, nil, queue, jobs)

	req := cardRequest()
	job, err := svc.SubmitJob(context.Background(), req)
	require.NoError(t, err)

	// 执行时请求无效，Generate 返回致命错误
	runErr := svc.RunJob(context.Background(), job.ID, &entity.GenerationRequest{Prompt: " "})
	require.Error(t, runErr)

	stored, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
}

func TestRunJobAlreadyCompletedIsNoop(t *testing.T) {
	jobs := newFakeJobStore()
	invoker := slowUsableInvoker(0)
	svc := newTestService(testConfig(), invoker, nil, &fakeQueue{}, jobs)

	job := entity.NewGenerationJob("job-1", "fp", []byte(`{}`))
	job.Complete([]byte(`{"status":"success"}`))
	require.NoError(t, jobs.Save(context.Background(), job))

	require.NoError(t, svc.RunJob(context.Background(), "job-1", cardRequest()))
	assert.Equal(t, 0, invoker.callCount())
}
