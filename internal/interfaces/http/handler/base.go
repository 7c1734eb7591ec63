// Package handler 提供 HTTP 请求处理器
package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/interfaces/http/dto"
	apperrors "codeforge-ai-api/pkg/errors"
)

// resolveProvider 解析 LLM Provider，空值取配置默认
func resolveProvider(cfg *config.Config, provider string) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("server config not configured")
	}

	p := strings.TrimSpace(provider)
	if p == "" {
		p = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	if p == "" {
		return "", fmt.Errorf("llm provider not specified")
	}
	if len(p) > 32 {
		return "", fmt.Errorf("llm provider too long")
	}

	if _, ok := cfg.LLM.Providers[p]; !ok {
		return "", fmt.Errorf("llm provider not found: %s", p)
	}
	return p, nil
}

// respondAppError 将应用错误写入响应
func respondAppError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	detail := &dto.ErrorDetail{ErrorCode: string(appErr.Code)}
	if appErr.Detail != "" {
		detail.Details = appErr.Detail
	}
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, detail)
}
