// Package chain 基于 Eino 编排 LLM 调用链
package chain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "codeforge-ai-api/internal/domain/service"
	wfmodel "codeforge-ai-api/internal/workflow/model"
	wfnode "codeforge-ai-api/internal/workflow/node"
	workflowport "codeforge-ai-api/internal/workflow/port"
	workflowprompt "codeforge-ai-api/internal/workflow/prompt"
	"codeforge-ai-api/pkg/logger"
)

// ComponentChain 单组件代码生成链：模板渲染 -> LLM 调用 -> 输出封装
type ComponentChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.ComponentGenerateInput, *wfmodel.ComponentGenerateOutput]
	chainErr  error
}

func NewComponentChain(factory workflowport.ChatModelFactory) *ComponentChain {
	return &ComponentChain{factory: factory}
}

func (c *ComponentChain) Invoke(ctx context.Context, in *wfmodel.ComponentGenerateInput) (*wfmodel.ComponentGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type componentChainState struct {
	In       *wfmodel.ComponentGenerateInput
	Messages []*schema.Message
	Out      *wfmodel.ComponentGenerateOutput
}

func (c *ComponentChain) getChain() (compose.Runnable[*wfmodel.ComponentGenerateInput, *wfmodel.ComponentGenerateOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *ComponentChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.ComponentGenerateInput, *wfmodel.ComponentGenerateOutput], error) {
	chain := compose.NewChain[*wfmodel.ComponentGenerateInput, *wfmodel.ComponentGenerateOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.ComponentGenerateInput) (*componentChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &componentChainState{In: in}, nil
		}),
		compose.WithNodeName("component.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *componentChainState) (*componentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatComponentMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("component.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *componentChainState) (*componentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithStageProvider(ctx, "component_generate", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildComponentModelOptions(st.In)...)
			if err != nil {
				logger.Warn(ctx, "llm call failed",
					"stage", llmctx.StageFromContext(ctx),
					"provider", llmctx.ProviderFromContext(ctx),
					"error", err.Error(),
				)
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}

			meta := wfmodel.LLMUsageMeta{
				Provider:    strings.TrimSpace(st.In.Provider),
				Model:       strings.TrimSpace(st.In.Model),
				GeneratedAt: time.Now().UTC(),
			}
			if st.In.Temperature != nil {
				meta.Temperature = float64(*st.In.Temperature)
			}
			if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
				meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
				meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
			}
			st.Out = &wfmodel.ComponentGenerateOutput{Raw: outMsg.Content, Meta: meta}
			return st, nil
		}),
		compose.WithNodeName("component.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *componentChainState) (*wfmodel.ComponentGenerateOutput, error) {
			if st == nil || st.Out == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.Out, nil
		}),
		compose.WithNodeName("component.finalize"),
	)

	return chain.Compile(ctx)
}

var defaultPromptRegistry = workflowprompt.NewRegistry()

func formatComponentMessages(ctx context.Context, in *wfmodel.ComponentGenerateInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptComponentGenV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"component_name":    strings.TrimSpace(in.ComponentName),
		"kind":              strings.TrimSpace(in.Kind),
		"purpose":           strings.TrimSpace(in.Purpose),
		"path":              strings.TrimSpace(in.Path),
		"language":          strings.TrimSpace(in.Language),
		"framework":         strings.TrimSpace(in.Framework),
		"methods_block":     buildMethodsBlock(in.Methods),
		"constraints_block": buildConstraintsBlock(in.Constraints),
	}
	return tpl.Format(ctx, vars)
}

func buildComponentModelOptions(in *wfmodel.ComponentGenerateInput) []model.Option {
	opts := make([]model.Option, 0, 3)
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
	return opts
}

func buildMethodsBlock(methods []string) string {
	if len(methods) == 0 {
		return "(unspecified)"
	}
	return strings.Join(methods, ", ")
}

func buildConstraintsBlock(constraints map[string]string) string {
	if len(constraints) == 0 {
		return "(none)"
	}
	keys := make([]string, 0, len(constraints))
	for k := range constraints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString("- ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(wfnode.TruncateByRunes(constraints[k], 500))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
