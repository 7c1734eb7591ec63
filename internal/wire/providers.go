// Package wire 提供依赖注入配置
package wire

import (
	"os"

	"github.com/google/uuid"

	"codeforge-ai-api/internal/application/pipeline"
	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/infrastructure/messaging"
	"codeforge-ai-api/internal/infrastructure/persistence/redis"
)

// Worker 异步任务工作者的依赖容器
type Worker struct {
	Service  *pipeline.Service
	Consumer *messaging.Consumer
	Redis    *redis.Client
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideJobStore 提供任务仓储
func ProvideJobStore(cfg *config.Config, client *redis.Client) *redis.JobStore {
	return redis.NewJobStore(client, cfg.Messaging.JobTTL)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(cfg *config.Config, client *redis.Client) *messaging.Producer {
	return messaging.NewProducer(client.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvidePipelineConsumer 提供流水线任务消费者
func ProvidePipelineConsumer(cfg *config.Config, client *redis.Client) *messaging.Consumer {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return messaging.NewConsumer(client.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamPipelineJobs,
		Group:         messaging.ConsumerGroupPipelineWorker,
		ConsumerName:  host + "-" + uuid.New().String()[:8],
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})
}
