package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	apperrors "codeforge-ai-api/pkg/errors"
)

type fakeComponentInvoker struct {
	mu    sync.Mutex
	calls int
	fn    func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error)
}

func (f *fakeComponentInvoker) Invoke(ctx context.Context, in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return f.fn(in)
}

func (f *fakeComponentInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LLM.DefaultProvider = "openai"
	cfg.Pipeline.DefaultLanguage = "typescript"
	cfg.Pipeline.DefaultFramework = "react"
	cfg.Pipeline.MaxConcurrency = 2
	cfg.Pipeline.MaxRetries = 0
	cfg.Pipeline.MinViableChars = 50
	cfg.Features.Validation.Enabled = true
	cfg.Features.Optimization.Enabled = true
	return cfg
}

const usableComponentOutput = "```tsx component:UserCard:component:src/components/user-card.tsx\n" +
	"import React from 'react';\n\n" +
	"export function UserCard({ name }: { name: string }) {\n" +
	"  return <div className=\"user-card\">{name}</div>;\n" +
	"}\n\n" +
	"export default UserCard;\n" +
	"```\n"

func newTestOrchestrator(cfg *config.Config, invoker ComponentInvoker) *Orchestrator {
	return NewOrchestrator(cfg, NewPreparer(cfg, nil), NewGenerator(cfg, invoker))
}

func cardRequest() *entity.GenerationRequest {
	return &entity.GenerationRequest{
		Prompt: "a card showing the user name",
		Components: []entity.ComponentSpec{
			{Name: "user card", Kind: entity.ArtifactKindComponent},
		},
	}
}

func TestExecuteSuccess(t *testing.T) {
	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return &wfmodel.ComponentGenerateOutput{
			Raw: usableComponentOutput,
			Meta: wfmodel.LLMUsageMeta{
				Provider:         "openai",
				Model:            "gpt-4o",
				PromptTokens:     120,
				CompletionTokens: 80,
			},
		}, nil
	}}
	o := newTestOrchestrator(testConfig(), invoker)

	result, err := o.Execute(context.Background(), "req-1", cardRequest())

	require.NoError(t, err)
	assert.Equal(t, entity.PipelineStatusSuccess, result.Status)
	assert.Equal(t, 1, invoker.callCount())

	require.Len(t, result.Artifacts, 1)
	a := result.Artifacts[0]
	assert.Equal(t, "UserCard", a.Name)
	assert.Equal(t, "src/components/user-card.tsx", a.Path)
	assert.Equal(t, entity.ArtifactSourceProvider, a.Source)
	assert.True(t, a.Metadata.Validated)
	assert.Greater(t, result.QualityScore, 0.0)

	require.NotNil(t, result.Usage)
	assert.Equal(t, 200, result.Usage.TotalTokens)

	for _, stage := range entity.Stages() {
		outcome := result.Outcome(stage)
		require.NotNil(t, outcome, stage)
		assert.True(t, outcome.Ran, stage)
		assert.Empty(t, outcome.Error, stage)
	}
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Fingerprint)
}

func TestExecuteProviderErrorFallsBack(t *testing.T) {
	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return nil, errors.New("invalid api key")
	}}
	o := newTestOrchestrator(testConfig(), invoker)

	result, err := o.Execute(context.Background(), "req-2", cardRequest())

	require.NoError(t, err)
	assert.Equal(t, entity.PipelineStatusDegraded, result.Status)
	// 不可重试错误只调用一次
	assert.Equal(t, 1, invoker.callCount())

	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, entity.ArtifactSourceFallback, result.Artifacts[0].Source)
	assert.Equal(t, 1, result.FallbackCount())

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "fell back to stub") {
			found = true
		}
	}
	assert.True(t, found, "expected fallback warning, got %v", result.Warnings)
}

func TestExecuteUnusableOutputFallsBack(t *testing.T) {
	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return &wfmodel.ComponentGenerateOutput{Raw: "```tsx\nok\n```\n"}, nil
	}}
	o := newTestOrchestrator(testConfig(), invoker)

	result, err := o.Execute(context.Background(), "req-3", cardRequest())

	require.NoError(t, err)
	assert.Equal(t, entity.PipelineStatusDegraded, result.Status)
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, entity.ArtifactSourceFallback, result.Artifacts[0].Source)
}

func TestExecuteValidationDisabledSkipsStage(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Validation.Enabled = false

	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return &wfmodel.ComponentGenerateOutput{Raw: usableComponentOutput}, nil
	}}
	o := newTestOrchestrator(cfg, invoker)

	result, err := o.Execute(context.Background(), "req-4", cardRequest())

	require.NoError(t, err)
	// 功能开关关闭是跳过，不是降级
	assert.Equal(t, entity.PipelineStatusSuccess, result.Status)

	outcome := result.Outcome(entity.StageValidate)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Skipped)
	assert.False(t, outcome.Ran)
	assert.Equal(t, 0.0, result.QualityScore)
	assert.False(t, result.Artifacts[0].Metadata.Validated)
}

func TestExecuteInvalidRequest(t *testing.T) {
	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return nil, errors.New("invoker should not be called")
	}}
	o := newTestOrchestrator(testConfig(), invoker)

	result, err := o.Execute(context.Background(), "req-5", &entity.GenerationRequest{Prompt: "   "})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRequest))
	assert.Equal(t, entity.PipelineStatusFailed, result.Status)

	outcome := result.Outcome(entity.StagePrepare)
	require.NotNil(t, outcome)
	assert.NotEmpty(t, outcome.Error)
	assert.Nil(t, result.Outcome(entity.StageGenerate))
}

func TestExecuteCancelled(t *testing.T) {
	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		return &wfmodel.ComponentGenerateOutput{Raw: usableComponentOutput}, nil
	}}
	o := newTestOrchestrator(testConfig(), invoker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Execute(ctx, "req-6", cardRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrCancelled))
	assert.Equal(t, entity.PipelineStatusCancelled, result.Status)
	assert.Empty(t, result.Artifacts)
}
