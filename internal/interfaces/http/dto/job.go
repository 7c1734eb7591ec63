// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"codeforge-ai-api/internal/domain/entity"
)

// JobResponse 异步任务响应
type JobResponse struct {
	ID           string            `json:"id"`
	Fingerprint  string            `json:"fingerprint"`
	Status       string            `json:"status"`
	Result       *GenerateResponse `json:"result,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	LLMProvider  string            `json:"llm_provider,omitempty"`
	RetryCount   int               `json:"retry_count"`
	Progress     int               `json:"progress"`
	DurationMs   int               `json:"duration_ms,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// SubmitJobResponse 任务提交响应
type SubmitJobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	if j == nil {
		return nil
	}

	resp := &JobResponse{
		ID:           j.ID,
		Fingerprint:  j.Fingerprint,
		Status:       string(j.Status),
		ErrorMessage: j.ErrorMessage,
		LLMProvider:  j.LLMProvider,
		RetryCount:   j.RetryCount,
		Progress:     j.Progress,
		DurationMs:   j.DurationMs,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
	}

	if len(j.Result) > 0 {
		var result entity.PipelineResult
		if err := json.Unmarshal(j.Result, &result); err == nil {
			resp.Result = ToGenerateResponse(&result)
		}
	}

	return resp
}

// BindJobID 提取并清理路径中的任务 ID
func BindJobID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("jid"))
}
