// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"codeforge-ai-api/internal/interfaces/http/dto"
	"codeforge-ai-api/pkg/errors"
	"codeforge-ai-api/pkg/logger"
)

// Recovery Panic 恢复中间件，panic 以统一错误包裹返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", r),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", c.GetString("request_id"),
				)

				dto.ErrorWithDetail(c, http.StatusInternalServerError, "internal server error",
					&dto.ErrorDetail{ErrorCode: string(errors.CodeInternalError)})
				c.Abort()
			}
		}()

		c.Next()
	}
}
