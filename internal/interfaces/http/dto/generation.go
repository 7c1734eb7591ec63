// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"codeforge-ai-api/internal/domain/entity"
)

// ComponentSpecRequest 请求中预先指定的组件
type ComponentSpecRequest struct {
	Name    string   `json:"name" binding:"required"`
	Kind    string   `json:"kind,omitempty"`
	Purpose string   `json:"purpose,omitempty"`
	Path    string   `json:"path,omitempty"`
	Methods []string `json:"methods,omitempty"`
}

// GenerateRequest 代码生成请求
type GenerateRequest struct {
	Prompt     string                 `json:"prompt" binding:"required"`
	Framework  string                 `json:"framework,omitempty"`
	Language   string                 `json:"language,omitempty"`
	Context    map[string]string      `json:"context,omitempty"`
	Components []ComponentSpecRequest `json:"components,omitempty"`
	Provider   string                 `json:"provider,omitempty"`
}

// ToEntity 转换为领域请求
func (r *GenerateRequest) ToEntity() *entity.GenerationRequest {
	if r == nil {
		return nil
	}
	req := &entity.GenerationRequest{
		Prompt:    r.Prompt,
		Framework: r.Framework,
		Language:  r.Language,
		Context:   r.Context,
		Provider:  r.Provider,
	}
	for _, c := range r.Components {
		req.Components = append(req.Components, entity.ComponentSpec{
			Name:    c.Name,
			Kind:    entity.ArtifactKind(c.Kind),
			Purpose: c.Purpose,
			Path:    c.Path,
			Methods: c.Methods,
		})
	}
	return req
}

// ArtifactResponse 单个产物
type ArtifactResponse struct {
	Name         string                   `json:"name"`
	Kind         string                   `json:"kind"`
	Path         string                   `json:"path"`
	Content      string                   `json:"content"`
	Language     string                   `json:"language"`
	Source       string                   `json:"source"`
	Dependencies map[string]string        `json:"dependencies,omitempty"`
	Issues       []entity.ValidationIssue `json:"issues,omitempty"`
	Metadata     entity.ArtifactMetadata  `json:"metadata"`
}

// StageOutcomeResponse 阶段执行记录
type StageOutcomeResponse struct {
	Stage      string `json:"stage"`
	Ran        bool   `json:"ran"`
	Skipped    bool   `json:"skipped"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// GenerateResponse 代码生成响应
type GenerateResponse struct {
	RequestID    string                 `json:"request_id"`
	Fingerprint  string                 `json:"fingerprint"`
	Status       string                 `json:"status"`
	Artifacts    []*ArtifactResponse    `json:"artifacts"`
	Stages       []StageOutcomeResponse `json:"stages"`
	Warnings     []string               `json:"warnings,omitempty"`
	Dependencies map[string]string      `json:"dependencies,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
	QualityScore float64                `json:"quality_score"`
	Usage        *entity.UsageTotals    `json:"usage,omitempty"`
	Shared       bool                   `json:"shared,omitempty"`
	DurationMs   int64                  `json:"duration_ms"`
}

// ToGenerateResponse 将流水线结果转换为响应 DTO
func ToGenerateResponse(r *entity.PipelineResult) *GenerateResponse {
	if r == nil {
		return nil
	}
	resp := &GenerateResponse{
		RequestID:    r.RequestID,
		Fingerprint:  r.Fingerprint,
		Status:       string(r.Status),
		Artifacts:    make([]*ArtifactResponse, 0, len(r.Artifacts)),
		Stages:       make([]StageOutcomeResponse, 0, len(r.Stages)),
		Warnings:     r.Warnings,
		Dependencies: r.Dependencies,
		Summary:      r.Summary,
		QualityScore: r.QualityScore,
		Usage:        r.Usage,
		Shared:       r.Shared,
		DurationMs:   r.Duration.Milliseconds(),
	}
	for _, a := range r.Artifacts {
		resp.Artifacts = append(resp.Artifacts, &ArtifactResponse{
			Name:         a.Name,
			Kind:         string(a.Kind),
			Path:         a.Path,
			Content:      a.Content,
			Language:     a.Language,
			Source:       string(a.Source),
			Dependencies: a.Dependencies,
			Issues:       a.Issues,
			Metadata:     a.Metadata,
		})
	}
	for _, s := range r.Stages {
		resp.Stages = append(resp.Stages, StageOutcomeResponse{
			Stage:      string(s.Stage),
			Ran:        s.Ran,
			Skipped:    s.Skipped,
			Error:      s.Error,
			DurationMs: s.Duration.Milliseconds(),
		})
	}
	return resp
}
