package pipeline

import (
	"regexp"
	"strings"

	"codeforge-ai-api/internal/domain/entity"
	wfnode "codeforge-ai-api/internal/workflow/node"
)

// 关键词到产物类别的映射，按优先级匹配
var kindPatterns = []struct {
	re   *regexp.Regexp
	kind entity.ArtifactKind
}{
	{regexp.MustCompile(`(?i)\b(page|screen|view|dashboard|landing)\b`), entity.ArtifactKindPage},
	{regexp.MustCompile(`(?i)\b(endpoint|api|route|handler|rest|controller)\b`), entity.ArtifactKindAPIHandler},
	{regexp.MustCompile(`(?i)\b(service|client|repository|store|manager|worker)\b`), entity.ArtifactKindService},
	{regexp.MustCompile(`(?i)\b(model|schema|entity|struct|type|interface)\b`), entity.ArtifactKindModel},
	{regexp.MustCompile(`(?i)\b(test|spec|unit test|e2e)\b`), entity.ArtifactKindTest},
	{regexp.MustCompile(`(?i)\b(config|configuration|settings|env)\b`), entity.ArtifactKindConfig},
	{regexp.MustCompile(`(?i)\b(component|button|form|card|list|table|modal|widget|input|nav)\b`), entity.ArtifactKindComponent},
}

// 复杂度信号：分支、组合、批量语义的关键词
var complexitySignals = regexp.MustCompile(`(?i)\b(if|when|unless|otherwise|each|every|multiple|all|both|and|or|with|filter|sort|paginate|validate|auth)\b`)

// 提取候选组件名的名词短语
var nounPhrase = regexp.MustCompile(`(?i)\b([a-z]+(?:\s[a-z]+)?)\s+(component|page|form|service|handler|model|list|table|card|view)\b`)

// HeuristicAnalyzer 基于规则的意图分析，LLM 分析不可用时的兜底
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Analyze 从请求文本推导意图，总是成功
func (h *HeuristicAnalyzer) Analyze(req *entity.GenerationRequest) *entity.IntentAnalysis {
	prompt := strings.TrimSpace(req.Prompt)

	var kinds []entity.ArtifactKind
	var keywords []string
	seen := make(map[entity.ArtifactKind]bool)
	for _, p := range kindPatterns {
		if m := p.re.FindString(prompt); m != "" && !seen[p.kind] {
			seen[p.kind] = true
			kinds = append(kinds, p.kind)
			keywords = append(keywords, strings.ToLower(m))
		}
	}
	if len(kinds) == 0 {
		kinds = []entity.ArtifactKind{entity.ArtifactKindComponent}
	}

	return &entity.IntentAnalysis{
		Purpose:       normalizePurpose(prompt),
		ArtifactKinds: kinds,
		Complexity:    EstimateTextComplexity(prompt),
		Keywords:      keywords,
		Source:        "heuristic",
	}
}

// DeriveComponents 从意图推导组件列表，每个类别一个组件
func (h *HeuristicAnalyzer) DeriveComponents(req *entity.GenerationRequest, intent *entity.IntentAnalysis) []entity.ComponentSpec {
	var comps []entity.ComponentSpec

	// 优先使用文本中的名词短语作为组件名
	matches := nounPhrase.FindAllStringSubmatch(req.Prompt, 4)
	usedNames := make(map[string]bool)
	for _, m := range matches {
		name := wfnode.ToPascalCase(strings.ToLower(m[1] + " " + m[2]))
		if name == "" || usedNames[name] {
			continue
		}
		usedNames[name] = true
		comps = append(comps, entity.ComponentSpec{
			Name:    name,
			Kind:    normalizeKind(m[2], entity.ArtifactKindComponent),
			Purpose: strings.TrimSpace(m[0]),
		})
	}

	if len(comps) > 0 {
		return comps
	}

	// 没有可识别的名词短语时，按主类别放一个占位组件
	kind := entity.ArtifactKindComponent
	if len(intent.ArtifactKinds) > 0 {
		kind = intent.ArtifactKinds[0]
	}
	name := wfnode.ToPascalCase(firstWords(req.Prompt, 3))
	if name == "" {
		name = "Generated" + wfnode.ToPascalCase(string(kind))
	}
	return []entity.ComponentSpec{{
		Name:    name,
		Kind:    kind,
		Purpose: normalizePurpose(req.Prompt),
	}}
}

// EstimateTextComplexity 请求文本复杂度：1 起步，每个分支信号加一
func EstimateTextComplexity(text string) int {
	return 1 + len(complexitySignals.FindAllString(text, -1))
}

// 代码分支关键词，用于产物复杂度估算
var codeBranchSignals = regexp.MustCompile(`\bif\b|\belse\b|\bfor\b|\bwhile\b|\bswitch\b|\bcase\b|\bcatch\b|&&|\|\|`)

// EstimateComplexity 产物代码复杂度：1 起步，每个分支关键词加一
func EstimateComplexity(code string) int {
	return 1 + len(codeBranchSignals.FindAllString(code, -1))
}

func normalizePurpose(prompt string) string {
	p := strings.Join(strings.Fields(prompt), " ")
	return wfnode.TruncateByRunes(p, 200)
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	var kept []string
	for _, f := range fields {
		f = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, f)
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
