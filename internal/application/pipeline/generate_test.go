package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	"codeforge-ai-api/pkg/metrics"
)

func TestModelLabel(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"openai": {Model: "gpt-4o-mini"},
	}
	g := NewGenerator(cfg, nil)

	// 响应元信息优先
	out := &wfmodel.ComponentGenerateOutput{Meta: wfmodel.LLMUsageMeta{Model: "gpt-4o"}}
	assert.Equal(t, "gpt-4o", g.modelLabel("openai", out))

	// 无响应时用提供商配置
	assert.Equal(t, "gpt-4o-mini", g.modelLabel("openai", nil))

	// 两者都没有时兜底
	assert.Equal(t, "unknown", g.modelLabel("anthropic", nil))
}

func TestProviderOrder(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"openai":    {Model: "gpt-4o-mini"},
		"deepseek":  {Model: "deepseek-chat"},
		"anthropic": {Model: "claude-sonnet"},
	}
	cfg.LLM.FallbackChain = []string{"openai", "deepseek", "missing", "anthropic"}
	g := NewGenerator(cfg, nil)

	// 首选提供商去重，未配置的提供商被跳过
	assert.Equal(t, []string{"openai", "deepseek", "anthropic"}, g.providerOrder(""))
	assert.Equal(t, []string{"deepseek", "openai", "anthropic"}, g.providerOrder("deepseek"))
}

func TestGenerateFailsOverToNextProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"openai":   {Model: "gpt-4o-mini"},
		"deepseek": {Model: "deepseek-chat"},
	}
	cfg.LLM.FallbackChain = []string{"deepseek"}

	invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
		if in.Provider == "openai" {
			return nil, errors.New("invalid api key")
		}
		return &wfmodel.ComponentGenerateOutput{
			Raw:  usableComponentOutput,
			Meta: wfmodel.LLMUsageMeta{Provider: in.Provider, Model: "deepseek-chat"},
		}, nil
	}}
	o := newTestOrchestrator(cfg, invoker)

	result, err := o.Execute(context.Background(), "req-failover-1", cardRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, invoker.callCount())
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, entity.ArtifactSourceProvider, result.Artifacts[0].Source)
}

func TestGenerateRecordsCallMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"openai": {Model: "gpt-4o-mini"},
	}

	t.Run("success labels provider and model", func(t *testing.T) {
		invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
			return &wfmodel.ComponentGenerateOutput{
				Raw:  usableComponentOutput,
				Meta: wfmodel.LLMUsageMeta{Provider: "openai", Model: "gpt-4o"},
			}, nil
		}}
		o := newTestOrchestrator(cfg, invoker)

		before := testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("openai", "gpt-4o", "success"))
		_, err := o.Execute(context.Background(), "req-metrics-1", cardRequest())
		require.NoError(t, err)

		after := testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("openai", "gpt-4o", "success"))
		assert.Equal(t, before+1, after)
	})

	t.Run("error falls back to configured model", func(t *testing.T) {
		invoker := &fakeComponentInvoker{fn: func(in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
			return nil, errors.New("invalid api key")
		}}
		o := newTestOrchestrator(cfg, invoker)

		before := testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("openai", "gpt-4o-mini", "error"))
		result, err := o.Execute(context.Background(), "req-metrics-2", cardRequest())
		require.NoError(t, err)
		require.NotEmpty(t, result.Artifacts)

		after := testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("openai", "gpt-4o-mini", "error"))
		assert.Equal(t, before+1, after)
	})
}
