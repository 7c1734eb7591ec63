// Package pipeline 实现代码生成流水线的四个阶段
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	wfnode "codeforge-ai-api/internal/workflow/node"
	apperrors "codeforge-ai-api/pkg/errors"
	"codeforge-ai-api/pkg/logger"
)

// IntentInvoker 意图分析链的最小依赖，便于测试替换
type IntentInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.IntentAnalyzeInput) (*wfmodel.IntentAnalyzeOutput, error)
}

// Preparer 准备阶段：请求校验、意图分析、技术规格推导
type Preparer struct {
	cfg       *config.Config
	intent    IntentInvoker
	heuristic *HeuristicAnalyzer
}

// NewPreparer 创建准备阶段。intent 可为 nil，此时只用规则分析。
func NewPreparer(cfg *config.Config, intent IntentInvoker) *Preparer {
	return &Preparer{
		cfg:       cfg,
		intent:    intent,
		heuristic: NewHeuristicAnalyzer(),
	}
}

// Prepare 填充 GenerationContext 的 Intent 与 Spec。
// 请求无效返回 ErrInvalidRequest，属于致命错误。
func (p *Preparer) Prepare(ctx context.Context, gc *entity.GenerationContext) ([]string, error) {
	req := gc.Request
	if !req.Valid() {
		return nil, apperrors.ErrInvalidRequest.WithDetail("prompt is empty")
	}

	var warnings []string

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = p.cfg.Pipeline.DefaultLanguage
	}
	framework := strings.TrimSpace(req.Framework)
	if framework == "" {
		framework = p.cfg.Pipeline.DefaultFramework
	}

	intent, llmComps, w := p.analyzeIntent(ctx, req, language, framework)
	warnings = append(warnings, w...)
	gc.Intent = intent

	if p.cfg.Pipeline.ComplexityCeiling > 0 && intent.Complexity > p.cfg.Pipeline.ComplexityCeiling {
		warnings = append(warnings, fmt.Sprintf(
			"request complexity %d exceeds ceiling %d, output may be incomplete",
			intent.Complexity, p.cfg.Pipeline.ComplexityCeiling))
	}

	components := p.resolveComponents(req, intent, llmComps)
	gc.Spec = &entity.TechnicalSpecification{
		Language:    language,
		Framework:   framework,
		Components:  components,
		Constraints: req.Context,
	}

	logger.Debug(ctx, "pipeline prepared",
		"components", len(components),
		"complexity", intent.Complexity,
		"intent_source", intent.Source,
	)
	return warnings, nil
}

func (p *Preparer) analyzeIntent(ctx context.Context, req *entity.GenerationRequest, language, framework string) (*entity.IntentAnalysis, []entity.ComponentSpec, []string) {
	if p.intent == nil {
		return p.heuristic.Analyze(req), nil, nil
	}

	out, err := p.intent.Invoke(ctx, &wfmodel.IntentAnalyzeInput{
		Prompt:    req.Prompt,
		Framework: framework,
		Language:  language,
		Context:   req.Context,
		Provider:  req.Provider,
	})
	if err != nil {
		logger.Warn(ctx, "llm intent analysis failed, using heuristic",
			"error", err.Error(),
		)
		return p.heuristic.Analyze(req), nil,
			[]string{"intent analysis degraded to heuristic: " + err.Error()}
	}

	intent := &entity.IntentAnalysis{
		Purpose:    strings.TrimSpace(out.Purpose),
		Complexity: EstimateTextComplexity(req.Prompt),
		Keywords:   out.Keywords,
		Source:     "llm",
	}
	for _, k := range out.Kinds {
		intent.ArtifactKinds = append(intent.ArtifactKinds, normalizeKind(k, entity.ArtifactKindComponent))
	}
	if intent.Purpose == "" {
		intent.Purpose = normalizePurpose(req.Prompt)
	}
	if len(intent.ArtifactKinds) == 0 {
		intent.ArtifactKinds = []entity.ArtifactKind{entity.ArtifactKindComponent}
	}

	var llmComps []entity.ComponentSpec
	for _, c := range out.Components {
		name := wfnode.ToPascalCase(c.Name)
		if name == "" {
			continue
		}
		llmComps = append(llmComps, entity.ComponentSpec{
			Name:    name,
			Kind:    normalizeKind(c.Kind, entity.ArtifactKindComponent),
			Purpose: strings.TrimSpace(c.Purpose),
			Path:    strings.TrimSpace(c.Path),
			Methods: c.Methods,
		})
	}
	return intent, llmComps, nil
}

func (p *Preparer) resolveComponents(req *entity.GenerationRequest, intent *entity.IntentAnalysis, llmComps []entity.ComponentSpec) []entity.ComponentSpec {
	// 调用方显式指定的组件优先
	if len(req.Components) > 0 {
		out := make([]entity.ComponentSpec, 0, len(req.Components))
		for _, c := range req.Components {
			name := wfnode.ToPascalCase(c.Name)
			if name == "" {
				continue
			}
			c.Name = name
			if c.Kind == "" {
				c.Kind = entity.ArtifactKindComponent
			}
			out = append(out, c)
		}
		if len(out) > 0 {
			return out
		}
	}

	if len(llmComps) > 0 {
		return llmComps
	}

	return p.heuristic.DeriveComponents(req, intent)
}
