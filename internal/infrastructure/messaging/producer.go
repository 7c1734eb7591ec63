package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishPipelineJob 发布流水线生成任务
func (p *Producer) PublishPipelineJob(ctx context.Context, job *PipelineJobMessage) (string, error) {
	msg, err := NewMessage(job.JobID, "pipeline_generate", job.JobID, job.Fingerprint, job)
	if err != nil {
		return "", err
	}
	if job.RequestID != "" {
		msg.SetMetadata("request_id", job.RequestID)
	}

	return p.Publish(ctx, StreamPipelineJobs, msg)
}

// PublishLearningEvent 发布学习事件，失败只记录不阻塞主流程
func (p *Producer) PublishLearningEvent(ctx context.Context, event *LearningEventMessage) (string, error) {
	msg, err := NewMessage(event.RequestID, "learning_event", "", event.Fingerprint, event)
	if err != nil {
		return "", err
	}
	msg.SetMetadata("status", event.Status)

	return p.Publish(ctx, StreamLearningEvents, msg)
}

// PipelineJobMessage 流水线任务消息
type PipelineJobMessage struct {
	JobID       string          `json:"job_id"`
	RequestID   string          `json:"request_id"`
	Fingerprint string          `json:"fingerprint"`
	Request     json.RawMessage `json:"request"`
}

// LearningEventMessage 学习事件，记录每次运行的结构化结果摘要
type LearningEventMessage struct {
	RequestID     string  `json:"request_id"`
	Fingerprint   string  `json:"fingerprint"`
	Status        string  `json:"status"`
	ArtifactCount int     `json:"artifact_count"`
	FallbackCount int     `json:"fallback_count"`
	QualityScore  float64 `json:"quality_score"`
	DurationMs    int64   `json:"duration_ms"`
	Provider      string  `json:"provider,omitempty"`
	Framework     string  `json:"framework,omitempty"`
	Language      string  `json:"language,omitempty"`
}
