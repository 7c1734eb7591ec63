// Package main 流水线异步任务执行器入口（pipeline-worker）
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	"codeforge-ai-api/internal/infrastructure/messaging"
	"codeforge-ai-api/internal/wire"
	"codeforge-ai-api/pkg/logger"
	"codeforge-ai-api/pkg/tracer"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "pipeline-worker",
		Version:     cfg.App.Version,
		Env:         cfg.App.Env,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	worker, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	worker.Consumer.RegisterHandler("pipeline_generate", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.PipelineJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}

		var req entity.GenerationRequest
		if err := json.Unmarshal(payload.Request, &req); err != nil {
			return err
		}

		return worker.Service.RunJob(msgCtx, payload.JobID, &req)
	})

	if err := worker.Consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	logger.Info(ctx, "pipeline-worker started",
		"stream", string(messaging.StreamPipelineJobs),
		"group", string(messaging.ConsumerGroupPipelineWorker),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down worker...")
	worker.Consumer.Stop()
	logger.Info(ctx, "worker exited")
}
