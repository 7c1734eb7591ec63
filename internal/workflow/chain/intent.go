package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	llmctx "codeforge-ai-api/internal/domain/service"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	wfnode "codeforge-ai-api/internal/workflow/node"
	workflowport "codeforge-ai-api/internal/workflow/port"
	workflowprompt "codeforge-ai-api/internal/workflow/prompt"
	"codeforge-ai-api/pkg/logger"
)

// IntentChain 意图分析链：把自然语言请求解析为结构化构建计划
type IntentChain struct {
	factory workflowport.ChatModelFactory
}

func NewIntentChain(factory workflowport.ChatModelFactory) *IntentChain {
	return &IntentChain{factory: factory}
}

func (c *IntentChain) Invoke(ctx context.Context, in *wfmodel.IntentAnalyzeInput) (*wfmodel.IntentAnalyzeOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, fmt.Errorf("prompt is empty")
	}

	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptIntentAnalyzeV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"prompt":        wfnode.TruncateByRunes(strings.TrimSpace(in.Prompt), 8000),
		"language":      strings.TrimSpace(in.Language),
		"framework":     strings.TrimSpace(in.Framework),
		"context_block": buildConstraintsBlock(in.Context),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, err
	}

	ctx = llmctx.WithStageProvider(ctx, "intent_analyze", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildIntentModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"provider", strings.TrimSpace(in.Provider),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildIntentModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	raw := wfnode.ExtractJSONObject(outMsg.Content)
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty intent analysis output")
	}

	var out wfmodel.IntentAnalyzeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse intent analysis json: %w", err)
	}

	out.Meta = wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(in.Provider),
		Model:       strings.TrimSpace(in.Model),
		GeneratedAt: time.Now().UTC(),
	}
	if in.Temperature != nil {
		out.Meta.Temperature = float64(*in.Temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.Meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.Meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return &out, nil
}

func buildIntentModelOptions(in *wfmodel.IntentAnalyzeInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "intent_analysis",
					"strict": false,
					"schema": intentJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func intentJSONSchema() map[string]any {
	// 说明：schema 以“最小可用”为目标，避免过度约束导致模型输出失败。
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"purpose", "artifact_kinds", "components"},
		"properties": map[string]any{
			"purpose":        map[string]any{"type": "string"},
			"artifact_kinds": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"keywords":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"components": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"name", "kind", "purpose"},
					"properties": map[string]any{
						"name":    map[string]any{"type": "string"},
						"kind":    map[string]any{"type": "string"},
						"purpose": map[string]any{"type": "string"},
						"path":    map[string]any{"type": "string"},
						"methods": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
			},
		},
	}
}
