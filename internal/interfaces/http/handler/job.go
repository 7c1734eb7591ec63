// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"codeforge-ai-api/internal/application/pipeline"
	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/interfaces/http/dto"
	apperrors "codeforge-ai-api/pkg/errors"
	"codeforge-ai-api/pkg/logger"
)

// JobHandler 异步任务处理器
type JobHandler struct {
	cfg     *config.Config
	service *pipeline.Service
}

// NewJobHandler 创建异步任务处理器
func NewJobHandler(cfg *config.Config, service *pipeline.Service) *JobHandler {
	return &JobHandler{
		cfg:     cfg,
		service: service,
	}
}

// SubmitJob 提交异步生成任务
// @Summary 提交异步生成任务
// @Description 将生成请求入队，立即返回任务 ID
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "生成请求"
// @Success 202 {object} dto.Response[dto.SubmitJobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/generations/jobs [post]
func (h *JobHandler) SubmitJob(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, err := resolveProvider(h.cfg, req.Provider)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	req.Provider = provider

	job, err := h.service.SubmitJob(ctx, req.ToEntity())
	if err != nil {
		logger.Error(ctx, "failed to submit job", err)
		respondAppError(c, err)
		return
	}

	dto.Accepted(c, &dto.SubmitJobResponse{
		ID:     job.ID,
		Status: string(job.Status),
	})
}

// GetJob 查询任务详情
// @Summary 查询任务详情
// @Description 查询异步任务的状态和结果
// @Tags Jobs
// @Accept json
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/generations/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.service.GetJob(ctx, jobID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeJobNotFound) {
			dto.NotFound(c, "job not found")
			return
		}
		logger.Error(ctx, "failed to get job", err, "job_id", jobID)
		respondAppError(c, err)
		return
	}

	dto.Success(c, dto.ToJobResponse(job))
}
