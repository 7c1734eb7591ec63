package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"codeforge-ai-api/internal/domain/entity"
	"codeforge-ai-api/pkg/metrics"
)

// 严重级别及其扣分权重
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

var severityWeights = map[string]float64{
	SeverityCritical: 10,
	SeverityError:    7,
	SeverityWarning:  3,
	SeverityInfo:     1,
}

var (
	conflictMarker  = regexp.MustCompile(`(?m)^(<{7}|={7}|>{7})`)
	todoMarker      = regexp.MustCompile(`(?i)\b(TODO|FIXME|XXX)\b`)
	placeholderText = regexp.MustCompile(`\.\.\.|<placeholder>|YOUR_CODE_HERE`)
	secretLiteral   = regexp.MustCompile(`(?i)(api[_-]?key|secret|password)\s*[:=]\s*['"][^'"]{8,}['"]`)
)

// Validator 结构校验器。只标注问题和打分，从不修改产物内容。
type Validator struct {
	// complexityCeiling 产物复杂度上限，0 表示不设限
	complexityCeiling int
}

func NewValidator(complexityCeiling int) *Validator {
	return &Validator{complexityCeiling: complexityCeiling}
}

// Validate 校验单个产物，写回 Issues/QualityScore/Validated。
// Validated 仅在没有 critical 问题时为 true。
func (v *Validator) Validate(a *entity.Artifact) {
	var issues []entity.ValidationIssue

	content := a.Content
	trimmed := strings.TrimSpace(content)

	if trimmed == "" {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityCritical,
			Check:    "non_empty",
			Message:  "artifact content is empty",
		})
	}

	if d, open := bracketImbalance(content); d != 0 {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityError,
			Check:    "balanced_brackets",
			Message:  fmt.Sprintf("unbalanced %q: delta %d", open, d),
		})
	}

	if loc := conflictMarker.FindStringIndex(content); loc != nil {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityCritical,
			Check:    "conflict_markers",
			Message:  "content contains merge conflict markers",
			Line:     lineOf(content, loc[0]),
		})
	}

	if loc := todoMarker.FindStringIndex(content); loc != nil {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityWarning,
			Check:    "todo_markers",
			Message:  "content contains TODO/FIXME markers",
			Line:     lineOf(content, loc[0]),
		})
	}

	if loc := placeholderText.FindStringIndex(content); loc != nil {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityWarning,
			Check:    "placeholder_text",
			Message:  "content contains placeholder text",
			Line:     lineOf(content, loc[0]),
		})
	}

	if loc := secretLiteral.FindStringIndex(content); loc != nil {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityError,
			Check:    "hardcoded_secret",
			Message:  "content appears to contain a hardcoded credential",
			Line:     lineOf(content, loc[0]),
		})
	}

	if trimmed != "" && a.Metadata.Lines < 3 {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityInfo,
			Check:    "minimum_size",
			Message:  "artifact is unusually short",
		})
	}

	if a.Source == entity.ArtifactSourceFallback {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityInfo,
			Check:    "fallback_stub",
			Message:  "artifact was produced by the fallback generator",
		})
	}

	if v.complexityCeiling > 0 && a.Metadata.Complexity > v.complexityCeiling {
		issues = append(issues, entity.ValidationIssue{
			Severity: SeverityWarning,
			Check:    "complexity_ceiling",
			Message:  fmt.Sprintf("complexity %d exceeds ceiling %d", a.Metadata.Complexity, v.complexityCeiling),
		})
	}

	score := 100.0
	blocking := false
	for _, issue := range issues {
		score -= severityWeights[issue.Severity]
		if issue.Severity == SeverityCritical {
			blocking = true
		}
		metrics.ValidationTotal.WithLabelValues(issue.Severity).Inc()
	}
	if score < 0 {
		score = 0
	}

	a.Issues = issues
	a.Metadata.QualityScore = score
	a.Metadata.Validated = !blocking
	metrics.ArtifactQualityScore.WithLabelValues(string(a.Kind)).Observe(score)
}

// bracketImbalance 统计括号配平，忽略字符串和行注释里的括号
func bracketImbalance(s string) (int, rune) {
	type state int
	const (
		code state = iota
		inString
		inChar
		inBacktick
		inLineComment
	)

	counts := map[rune]int{'{': 0, '(': 0, '[': 0}
	st := code
	var prev rune
	for _, r := range s {
		switch st {
		case code:
			switch r {
			case '"':
				st = inString
			case '\'':
				st = inChar
			case '`':
				st = inBacktick
			case '/':
				if prev == '/' {
					st = inLineComment
				}
			case '{':
				counts['{']++
			case '}':
				counts['{']--
			case '(':
				counts['(']++
			case ')':
				counts['(']--
			case '[':
				counts['[']++
			case ']':
				counts['[']--
			}
		case inString:
			if r == '"' && prev != '\\' {
				st = code
			}
		case inChar:
			if r == '\'' && prev != '\\' {
				st = code
			}
		case inBacktick:
			if r == '`' {
				st = code
			}
		case inLineComment:
			if r == '\n' {
				st = code
			}
		}
		prev = r
	}

	for _, open := range []rune{'{', '(', '['} {
		if counts[open] != 0 {
			return counts[open], open
		}
	}
	return 0, 0
}

func lineOf(s string, offset int) int {
	return 1 + strings.Count(s[:offset], "\n")
}
