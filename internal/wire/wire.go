//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"codeforge-ai-api/internal/application/pipeline"
	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/repository"
	"codeforge-ai-api/internal/infrastructure/llm"
	"codeforge-ai-api/internal/infrastructure/messaging"
	"codeforge-ai-api/internal/infrastructure/persistence/redis"
	"codeforge-ai-api/internal/interfaces/http/handler"
	"codeforge-ai-api/internal/interfaces/http/router"
	"codeforge-ai-api/internal/workflow/chain"
	workflowport "codeforge-ai-api/internal/workflow/port"
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideJobStore,
	wire.Bind(new(repository.JobRepository), new(*redis.JobStore)),
	wire.Bind(new(pipeline.ResultCache), new(*redis.Cache)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	wire.Bind(new(pipeline.LearningPublisher), new(*messaging.Producer)),
	wire.Bind(new(pipeline.JobQueue), new(*messaging.Producer)),
)

// PipelineSet 流水线提供者集合
var PipelineSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewIntentChain,
	chain.NewComponentChain,
	wire.Bind(new(pipeline.IntentInvoker), new(*chain.IntentChain)),
	wire.Bind(new(pipeline.ComponentInvoker), new(*chain.ComponentChain)),
	pipeline.NewPreparer,
	pipeline.NewGenerator,
	pipeline.NewOrchestrator,
	pipeline.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewGenerationHandler,
	handler.NewJobHandler,
	router.New,
)

// InitializeApp 初始化 API 网关应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		MessagingSet,
		PipelineSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化流水线工作者
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		RedisSet,
		MessagingSet,
		PipelineSet,
		ProvidePipelineConsumer,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}
