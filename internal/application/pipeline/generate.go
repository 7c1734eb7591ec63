package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	wfnode "codeforge-ai-api/internal/workflow/node"
	"codeforge-ai-api/pkg/logger"
	"codeforge-ai-api/pkg/metrics"
)

// ComponentInvoker 组件生成链的最小依赖，便于测试替换
type ComponentInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error)
}

// 回退原因标签
const (
	FallbackReasonProviderError  = "provider_error"
	FallbackReasonTimeout        = "timeout"
	FallbackReasonUnusableOutput = "unusable_output"
)

// Generator 生成阶段：按组件并发调用 LLM，失败走回退生成器。
// 产物顺序与组件规格顺序一致，与并发完成顺序无关。
type Generator struct {
	cfg      *config.Config
	invoker  ComponentInvoker
	splitter *Splitter
	fallback *FallbackGenerator
}

func NewGenerator(cfg *config.Config, invoker ComponentInvoker) *Generator {
	return &Generator{
		cfg:      cfg,
		invoker:  invoker,
		splitter: NewSplitter(),
		fallback: NewFallbackGenerator(),
	}
}

// Generate 为规格中的每个组件产出至少一个产物。
// 只有整体取消会返回错误；单组件失败由回退兜底。
func (g *Generator) Generate(ctx context.Context, gc *entity.GenerationContext) ([]*entity.Artifact, *entity.UsageTotals, []string, error) {
	spec := gc.Spec
	results := make([][]*entity.Artifact, len(spec.Components))
	compWarnings := make([][]string, len(spec.Components))

	usage := &entity.UsageTotals{}
	var usageMu sync.Mutex

	eg, egctx := errgroup.WithContext(ctx)
	limit := g.cfg.Pipeline.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	eg.SetLimit(limit)

	for i, comp := range spec.Components {
		i, comp := i, comp
		eg.Go(func() error {
			artifacts, warnings, err := g.generateComponent(egctx, gc, comp, usage, &usageMu)
			if err != nil {
				// 只有取消会走到这里
				return err
			}
			results[i] = artifacts
			compWarnings[i] = warnings
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, nil, err
	}

	var artifacts []*entity.Artifact
	var warnings []string
	for i := range results {
		artifacts = append(artifacts, results[i]...)
		warnings = append(warnings, compWarnings[i]...)
	}
	artifacts = dedupeNames(artifacts)

	for _, a := range artifacts {
		metrics.ArtifactsGenerated.WithLabelValues(string(a.Kind), string(a.Source)).Inc()
	}
	return artifacts, usage, warnings, nil
}

func (g *Generator) generateComponent(ctx context.Context, gc *entity.GenerationContext, comp entity.ComponentSpec, usage *entity.UsageTotals, usageMu *sync.Mutex) ([]*entity.Artifact, []string, error) {
	spec := gc.Spec
	req := gc.Request

	out, reason, err := g.invokeWithRetry(ctx, req, spec, comp)
	if err != nil {
		if wfnode.IsCancelledError(err) && ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		logger.Warn(ctx, "component generation failed, using fallback",
			"component", comp.Name,
			"reason", reason,
			"error", err.Error(),
		)
		metrics.FallbackTotal.WithLabelValues(reason).Inc()
		a := g.fallback.Generate(comp, spec.Language, spec.Framework)
		return []*entity.Artifact{a},
			[]string{"component " + comp.Name + " fell back to stub: " + err.Error()}, nil
	}

	if out.Meta.PromptTokens > 0 || out.Meta.CompletionTokens > 0 {
		usageMu.Lock()
		usage.Add(out.Meta.PromptTokens, out.Meta.CompletionTokens)
		usageMu.Unlock()
		metrics.LLMTokensUsed.WithLabelValues(out.Meta.Provider, out.Meta.Model, "prompt").Add(float64(out.Meta.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(out.Meta.Provider, out.Meta.Model, "completion").Add(float64(out.Meta.CompletionTokens))
	}

	artifacts := g.splitter.Split(out.Raw, comp, spec.Language)
	artifacts = g.filterUsable(artifacts)
	if len(artifacts) == 0 {
		logger.Warn(ctx, "provider output unusable, using fallback",
			"component", comp.Name,
		)
		metrics.FallbackTotal.WithLabelValues(FallbackReasonUnusableOutput).Inc()
		a := g.fallback.Generate(comp, spec.Language, spec.Framework)
		return []*entity.Artifact{a},
			[]string{"component " + comp.Name + " output was unusable, fell back to stub"}, nil
	}
	return artifacts, nil, nil
}

// invokeWithRetry 带重试与提供商回退的 LLM 调用。
// 单提供商的重试耗尽或遇到不可重试错误时，切换到回退链中的下一个提供商。
// 返回的 reason 仅在 err 非空时有意义。
func (g *Generator) invokeWithRetry(ctx context.Context, req *entity.GenerationRequest, spec *entity.TechnicalSpecification, comp entity.ComponentSpec) (*wfmodel.ComponentGenerateOutput, string, error) {
	in := g.buildInput(req, spec, comp)
	providers := g.providerOrder(req.Provider)

	var lastErr error
	reason := FallbackReasonProviderError
	for i, provider := range providers {
		out, r, err := g.invokeProvider(ctx, in, provider)
		if err == nil {
			return out, "", nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		lastErr = err
		reason = r
		if i < len(providers)-1 {
			logger.Warn(ctx, "provider exhausted, trying next in fallback chain",
				"component", comp.Name,
				"provider", provider,
				"next", providers[i+1],
				"error", err.Error(),
			)
		}
	}
	return nil, reason, lastErr
}

// providerOrder 提供商调用顺序：请求指定或默认提供商优先，
// 其后是回退链中已配置的提供商。
func (g *Generator) providerOrder(preferred string) []string {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		preferred = g.cfg.LLM.DefaultProvider
	}
	order := []string{preferred}
	for _, name := range g.cfg.LLM.FallbackChain {
		name = strings.TrimSpace(name)
		if name == "" || name == preferred {
			continue
		}
		if _, ok := g.cfg.LLM.Providers[name]; !ok {
			continue
		}
		order = append(order, name)
	}
	return order
}

// invokeProvider 对单个提供商带超时和退避重试
func (g *Generator) invokeProvider(ctx context.Context, in *wfmodel.ComponentGenerateInput, provider string) (*wfmodel.ComponentGenerateOutput, string, error) {
	in.Provider = provider
	maxAttempts := g.cfg.Pipeline.MaxRetries + 1
	backoff := g.cfg.Pipeline.RetryBackoff

	var lastErr error
	reason := FallbackReasonProviderError
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := calcBackoff(backoff, attempt-1)
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(wait):
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if g.cfg.Pipeline.ProviderTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, g.cfg.Pipeline.ProviderTimeout)
		}

		start := time.Now()
		out, err := g.invoker.Invoke(attemptCtx, in)
		if cancel != nil {
			cancel()
		}

		model := g.modelLabel(provider, out)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.LLMCallDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
		metrics.LLMCallTotal.WithLabelValues(provider, model, status).Inc()

		if err == nil {
			return out, "", nil
		}

		// 整体取消直接上抛
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		lastErr = err
		if wfnode.IsCancelledError(err) {
			// 单次调用超时，可重试
			reason = FallbackReasonTimeout
			continue
		}
		if wfnode.IsRetryableError(err) {
			reason = FallbackReasonProviderError
			continue
		}
		// 不可重试的错误，换下一个提供商
		return nil, FallbackReasonProviderError, err
	}
	return nil, reason, lastErr
}

// modelLabel 指标用的模型标签：优先响应元信息，其次提供商配置
func (g *Generator) modelLabel(provider string, out *wfmodel.ComponentGenerateOutput) string {
	if out != nil && strings.TrimSpace(out.Meta.Model) != "" {
		return strings.TrimSpace(out.Meta.Model)
	}
	if p, ok := g.cfg.LLM.Providers[provider]; ok && p.Model != "" {
		return p.Model
	}
	return "unknown"
}

func (g *Generator) buildInput(req *entity.GenerationRequest, spec *entity.TechnicalSpecification, comp entity.ComponentSpec) *wfmodel.ComponentGenerateInput {
	in := &wfmodel.ComponentGenerateInput{
		ComponentName: comp.Name,
		Kind:          string(comp.Kind),
		Purpose:       comp.Purpose,
		Path:          comp.Path,
		Language:      spec.Language,
		Framework:     spec.Framework,
		Constraints:   spec.Constraints,
		Methods:       comp.Methods,
		Provider:      strings.TrimSpace(req.Provider),
	}
	if g.cfg.Pipeline.MaxTokens > 0 {
		mt := g.cfg.Pipeline.MaxTokens
		in.MaxTokens = &mt
	}
	if g.cfg.Pipeline.Temperature > 0 {
		t := float32(g.cfg.Pipeline.Temperature)
		in.Temperature = &t
	}
	return in
}

func (g *Generator) filterUsable(artifacts []*entity.Artifact) []*entity.Artifact {
	min := g.cfg.Pipeline.MinViableChars
	if min <= 0 {
		return artifacts
	}
	out := artifacts[:0]
	for _, a := range artifacts {
		if a.Usable(min) {
			out = append(out, a)
		}
	}
	return out
}

func calcBackoff(cfg config.BackoffConfig, retry int) time.Duration {
	if cfg.Initial <= 0 {
		cfg.Initial = time.Second
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2
	}
	if cfg.Max <= 0 {
		cfg.Max = time.Minute
	}
	backoff := cfg.Initial
	for i := 0; i < retry; i++ {
		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.Max {
			return cfg.Max
		}
	}
	return backoff
}
