// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"codeforge-ai-api/internal/application/pipeline"
	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/interfaces/http/dto"
	"codeforge-ai-api/pkg/logger"
)

// GenerationHandler 代码生成处理器
type GenerationHandler struct {
	cfg     *config.Config
	service *pipeline.Service
}

// NewGenerationHandler 创建代码生成处理器
func NewGenerationHandler(cfg *config.Config, service *pipeline.Service) *GenerationHandler {
	return &GenerationHandler{
		cfg:     cfg,
		service: service,
	}
}

// Generate 同步生成代码
// @Summary 同步生成代码
// @Description 执行完整的生成流水线并返回全部产物
// @Tags Generations
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/generations [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
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

	result, err := h.service.Generate(ctx, req.ToEntity())
	if err != nil {
		logger.Error(ctx, "pipeline execution failed", err, "provider", provider)
		respondAppError(c, err)
		return
	}

	dto.Success(c, dto.ToGenerateResponse(result))
}
