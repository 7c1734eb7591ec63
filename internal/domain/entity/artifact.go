package entity

import "strings"

// ArtifactKind 产物类别
type ArtifactKind string

const (
	ArtifactKindComponent  ArtifactKind = "component"
	ArtifactKindPage       ArtifactKind = "page"
	ArtifactKindService    ArtifactKind = "service"
	ArtifactKindAPIHandler ArtifactKind = "api-handler"
	ArtifactKindModel      ArtifactKind = "model"
	ArtifactKindTest       ArtifactKind = "test"
	ArtifactKindConfig     ArtifactKind = "config"
)

// ArtifactSource 产物来源
type ArtifactSource string

const (
	// ArtifactSourceProvider 由 LLM 提供商生成
	ArtifactSourceProvider ArtifactSource = "provider"
	// ArtifactSourceFallback 由回退生成器产出
	ArtifactSourceFallback ArtifactSource = "fallback"
)

// ValidationIssue 校验发现的单条问题
type ValidationIssue struct {
	// Severity critical/error/warning/info
	Severity string `json:"severity"`
	// Check 触发的检查项标识
	Check string `json:"check"`
	// Message 人类可读的说明
	Message string `json:"message"`
	// Line 相关行号，0 表示整体问题
	Line int `json:"line,omitempty"`
}

// ArtifactMetadata 产物元数据，随各阶段逐步填充
type ArtifactMetadata struct {
	Lines         int      `json:"lines"`
	Complexity    int      `json:"complexity"`
	QualityScore  float64  `json:"quality_score"`
	Validated     bool     `json:"validated"`
	Optimized     bool     `json:"optimized"`
	Optimizations []string `json:"optimizations,omitempty"`
}

// Artifact 一段可独立落盘的生成代码
type Artifact struct {
	Name         string            `json:"name"`
	Kind         ArtifactKind      `json:"kind"`
	Path         string            `json:"path"`
	Content      string            `json:"content"`
	Language     string            `json:"language"`
	Source       ArtifactSource    `json:"source"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Issues       []ValidationIssue `json:"issues,omitempty"`
	Metadata     ArtifactMetadata  `json:"metadata"`
}

// CountLines 统计非空内容行数并写回元数据
func (a *Artifact) CountLines() int {
	if a.Content == "" {
		a.Metadata.Lines = 0
		return 0
	}
	n := len(strings.Split(strings.TrimRight(a.Content, "\n"), "\n"))
	a.Metadata.Lines = n
	return n
}

// Usable 判断产物内容是否达到最小可用长度
// 仅统计非空白字符，避免大段空行凑数
func (a *Artifact) Usable(minChars int) bool {
	count := 0
	for _, r := range a.Content {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			count++
		}
		if count >= minChars {
			return true
		}
	}
	return count >= minChars
}
