// Package model 定义工作流层的输入输出模型
package model

import "time"

// LLMUsageMeta 单次 LLM 调用的元信息
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}

// ComponentGenerateInput 单个组件生成任务的输入
type ComponentGenerateInput struct {
	// ComponentName 组件名，用于 marker 标注
	ComponentName string
	// Kind 期望的产物类别 (component/page/service/...)
	Kind string
	// Purpose 组件职责描述
	Purpose string
	// Path 期望的落盘路径，可为空
	Path string
	// Language / Framework 目标技术栈
	Language  string
	Framework string
	// Constraints 额外约束 (style/domain 等)
	Constraints map[string]string
	// Methods 期望暴露的方法列表
	Methods []string

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// ComponentGenerateOutput 单个组件生成的原始输出
type ComponentGenerateOutput struct {
	// Raw 模型原始回复全文，交给切分器处理
	Raw  string
	Meta LLMUsageMeta
}

// IntentAnalyzeInput 意图分析的输入
type IntentAnalyzeInput struct {
	Prompt    string
	Framework string
	Language  string
	Context   map[string]string

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// IntentAnalyzeOutput 意图分析的结构化输出
type IntentAnalyzeOutput struct {
	Purpose    string            `json:"purpose"`
	Kinds      []string          `json:"artifact_kinds"`
	Components []IntentComponent `json:"components"`
	Keywords   []string          `json:"keywords"`
	Meta       LLMUsageMeta      `json:"-"`
}

// IntentComponent 意图分析推导出的组件
type IntentComponent struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Purpose string   `json:"purpose"`
	Path    string   `json:"path,omitempty"`
	Methods []string `json:"methods,omitempty"`
}
