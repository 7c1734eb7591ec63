// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"codeforge-ai-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	generationHandler *handler.GenerationHandler,
	jobHandler *handler.JobHandler,
) {
	// 代码生成
	generations := v1.Group("/generations")
	{
		generations.POST("", generationHandler.Generate)

		// 异步任务
		generations.POST("/jobs", jobHandler.SubmitJob)
		generations.GET("/jobs/:jid", jobHandler.GetJob)
	}
}
