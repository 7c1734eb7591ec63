package pipeline

import (
	"context"
	"regexp"
	"strings"

	"codeforge-ai-api/internal/domain/entity"
	wfnode "codeforge-ai-api/internal/workflow/node"
	"codeforge-ai-api/pkg/logger"
)

// Optimizer 产物后处理。全部变换满足幂等：对已优化内容再跑一遍不产生变化。
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

type optimization struct {
	name  string
	apply func(string) string
}

var blankRuns = regexp.MustCompile(`\n{3,}`)
var trailingWS = regexp.MustCompile(`(?m)[ \t]+$`)

var optimizations = []optimization{
	{"normalize_newlines", wfnode.NormalizeNewlines},
	{"trim_trailing_whitespace", func(s string) string {
		return trailingWS.ReplaceAllString(s, "")
	}},
	{"collapse_blank_lines", func(s string) string {
		return blankRuns.ReplaceAllString(s, "\n\n")
	}},
	{"ensure_final_newline", func(s string) string {
		if s == "" || strings.HasSuffix(s, "\n") {
			return strings.TrimRight(s, "\n") + "\n"
		}
		return s + "\n"
	}},
}

// Optimize 对单个产物应用全部变换，记录实际生效的变换名
func (o *Optimizer) Optimize(ctx context.Context, a *entity.Artifact) {
	if strings.TrimSpace(a.Content) == "" {
		return
	}

	var applied []string
	content := a.Content
	for _, opt := range optimizations {
		next := opt.apply(content)
		if next != content {
			applied = append(applied, opt.name)
			content = next
		}
	}

	if len(applied) == 0 {
		return
	}

	a.Content = content
	a.CountLines()
	a.Metadata.Optimized = true
	a.Metadata.Optimizations = append(a.Metadata.Optimizations, applied...)

	logger.Debug(ctx, "artifact optimized",
		"artifact", a.Name,
		"optimizations", strings.Join(applied, ","),
	)
}
