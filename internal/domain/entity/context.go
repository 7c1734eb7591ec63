package entity

import "time"

// IntentAnalysis 意图分析结果，由准备阶段产出
type IntentAnalysis struct {
	// Purpose 归一化后的目标描述
	Purpose string `json:"purpose"`
	// ArtifactKinds 推断出的产物类别
	ArtifactKinds []ArtifactKind `json:"artifact_kinds"`
	// Complexity 量化复杂度 (1 起步，随分支关键词累加)
	Complexity int `json:"complexity"`
	// Keywords 命中的领域关键词
	Keywords []string `json:"keywords,omitempty"`
	// Source 分析来源 (llm/heuristic)
	Source string `json:"source"`
}

// ComponentSpec 单个待生成组件的规格
type ComponentSpec struct {
	Name    string       `json:"name"`
	Kind    ArtifactKind `json:"kind"`
	Purpose string       `json:"purpose"`
	// Path 期望的产物路径，空值时由生成阶段推导
	Path string `json:"path,omitempty"`
	// Methods 组件应暴露的方法/行为，供回退生成器使用
	Methods []string `json:"methods,omitempty"`
}

// TechnicalSpecification 技术规格，生成阶段的输入
type TechnicalSpecification struct {
	Language   string          `json:"language"`
	Framework  string          `json:"framework,omitempty"`
	Components []ComponentSpec `json:"components"`
	// Constraints 从请求上下文提取的额外约束
	Constraints map[string]string `json:"constraints,omitempty"`
}

// GenerationContext 流水线运行期上下文，贯穿四个阶段
type GenerationContext struct {
	RequestID   string                  `json:"request_id"`
	Fingerprint string                  `json:"fingerprint"`
	Request     *GenerationRequest      `json:"request"`
	Intent      *IntentAnalysis         `json:"intent,omitempty"`
	Spec        *TechnicalSpecification `json:"spec,omitempty"`
	StartedAt   time.Time               `json:"started_at"`
}
