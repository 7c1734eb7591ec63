package entity

import "time"

// PipelineStage 流水线阶段标识
type PipelineStage string

const (
	StagePrepare  PipelineStage = "prepare"
	StageGenerate PipelineStage = "generate"
	StageValidate PipelineStage = "validate"
	StageOptimize PipelineStage = "optimize"
)

// Stages 按执行顺序列出全部阶段
func Stages() []PipelineStage {
	return []PipelineStage{StagePrepare, StageGenerate, StageValidate, StageOptimize}
}

// PipelineStatus 整体运行状态
type PipelineStatus string

const (
	// PipelineStatusSuccess 全部阶段正常完成
	PipelineStatusSuccess PipelineStatus = "success"
	// PipelineStatusDegraded 非致命阶段被跳过或部分产物走了回退
	PipelineStatusDegraded PipelineStatus = "degraded"
	// PipelineStatusFailed 致命阶段失败
	PipelineStatusFailed PipelineStatus = "failed"
	// PipelineStatusCancelled 调用方取消
	PipelineStatusCancelled PipelineStatus = "cancelled"
)

// StageOutcome 单个阶段的执行记录
type StageOutcome struct {
	Stage    PipelineStage `json:"stage"`
	Ran      bool          `json:"ran"`
	Skipped  bool          `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// PipelineResult 一次流水线运行的完整产出
type PipelineResult struct {
	RequestID   string         `json:"request_id"`
	Fingerprint string         `json:"fingerprint"`
	Status      PipelineStatus `json:"status"`
	Artifacts   []*Artifact    `json:"artifacts"`
	Stages      []StageOutcome `json:"stages"`
	// Warnings 非致命问题的汇总说明
	Warnings []string `json:"warnings,omitempty"`
	// Dependencies 全部产物依赖的并集 (name -> version)
	Dependencies map[string]string `json:"dependencies,omitempty"`
	// Summary 面向人的运行摘要文档
	Summary string `json:"summary,omitempty"`
	// QualityScore 产物质量分均值 (0-100)，未校验时为 0
	QualityScore float64 `json:"quality_score"`
	// Usage 各提供商 token 消耗
	Usage *UsageTotals `json:"usage,omitempty"`
	// Shared 标记结果来自并发去重/缓存复用
	Shared   bool          `json:"shared,omitempty"`
	Duration time.Duration `json:"duration"`
}

// UsageTotals LLM token 消耗汇总
type UsageTotals struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add 累加一次调用的消耗
func (u *UsageTotals) Add(prompt, completion int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += prompt + completion
}

// FallbackCount 统计走回退生成器的产物数
func (r *PipelineResult) FallbackCount() int {
	n := 0
	for _, a := range r.Artifacts {
		if a.Source == ArtifactSourceFallback {
			n++
		}
	}
	return n
}

// Outcome 返回指定阶段的执行记录，不存在时返回 nil
func (r *PipelineResult) Outcome(stage PipelineStage) *StageOutcome {
	for i := range r.Stages {
		if r.Stages[i].Stage == stage {
			return &r.Stages[i]
		}
	}
	return nil
}
