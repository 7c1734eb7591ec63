package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"codeforge-ai-api/internal/config"
	"codeforge-ai-api/internal/domain/entity"
	apperrors "codeforge-ai-api/pkg/errors"
	"codeforge-ai-api/pkg/logger"
	"codeforge-ai-api/pkg/metrics"
)

var pipelineTracer = otel.Tracer("pipeline")

// Orchestrator 流水线编排器。阶段顺序固定：prepare -> generate -> validate -> optimize。
// prepare 和 generate 致命，validate 和 optimize 失败只降级。
type Orchestrator struct {
	cfg       *config.Config
	preparer  *Preparer
	generator *Generator
	validator *Validator
	optimizer *Optimizer
}

func NewOrchestrator(cfg *config.Config, preparer *Preparer, generator *Generator) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		preparer:  preparer,
		generator: generator,
		validator: NewValidator(cfg.Pipeline.ComplexityCeiling),
		optimizer: NewOptimizer(),
	}
}

// Execute 执行一次完整的流水线运行。
// 返回错误时 result 仍然携带已执行阶段的记录，供调用方观测。
func (o *Orchestrator) Execute(ctx context.Context, requestID string, req *entity.GenerationRequest) (*entity.PipelineResult, error) {
	start := time.Now()

	gc := &entity.GenerationContext{
		RequestID:   requestID,
		Fingerprint: req.Fingerprint(),
		Request:     req,
		StartedAt:   start,
	}

	ctx, span := pipelineTracer.Start(ctx, "pipeline.Execute",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("request.fingerprint", gc.Fingerprint),
		))
	defer span.End()

	ctx = logger.WithContext(ctx, logger.RequestIDKey, requestID)
	ctx = logger.WithContext(ctx, logger.FingerprintKey, gc.Fingerprint)

	result := &entity.PipelineResult{
		RequestID:   requestID,
		Fingerprint: gc.Fingerprint,
		Status:      entity.PipelineStatusSuccess,
	}

	// prepare（致命）
	warnings, err := o.runStage(ctx, result, entity.StagePrepare, func(ctx context.Context) ([]string, error) {
		return o.preparer.Prepare(ctx, gc)
	})
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return o.finish(ctx, result, start, err)
	}

	// generate（致命）
	warnings, err = o.runStage(ctx, result, entity.StageGenerate, func(ctx context.Context) ([]string, error) {
		artifacts, usage, w, err := o.generator.Generate(ctx, gc)
		if err != nil {
			return w, err
		}
		if len(artifacts) == 0 {
			return w, apperrors.ErrGenerationFailed.WithDetail("no artifacts produced")
		}
		result.Artifacts = artifacts
		if usage != nil && usage.TotalTokens > 0 {
			result.Usage = usage
		}
		return w, nil
	})
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return o.finish(ctx, result, start, err)
	}

	// validate（非致命，整体失败只跳过）
	if o.cfg.Features.Validation.Enabled {
		warnings, err = o.runStage(ctx, result, entity.StageValidate, func(ctx context.Context) ([]string, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			total := 0.0
			for _, a := range result.Artifacts {
				o.validator.Validate(a)
				total += a.Metadata.QualityScore
			}
			result.QualityScore = total / float64(len(result.Artifacts))
			return nil, nil
		})
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			if ctx.Err() != nil {
				return o.finish(ctx, result, start, err)
			}
			result.Status = entity.PipelineStatusDegraded
			result.Warnings = append(result.Warnings, "validation skipped: "+err.Error())
		}
	} else {
		o.markSkipped(result, entity.StageValidate)
	}

	// optimize（非致命）
	if o.cfg.Features.Optimization.Enabled {
		warnings, err = o.runStage(ctx, result, entity.StageOptimize, func(ctx context.Context) ([]string, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			for _, a := range result.Artifacts {
				o.optimizer.Optimize(ctx, a)
			}
			return nil, nil
		})
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			if ctx.Err() != nil {
				return o.finish(ctx, result, start, err)
			}
			result.Status = entity.PipelineStatusDegraded
			result.Warnings = append(result.Warnings, "optimization skipped: "+err.Error())
		}
	} else {
		o.markSkipped(result, entity.StageOptimize)
	}

	// 汇总
	deps, depWarnings := BuildDependencyManifest(result.Artifacts)
	result.Dependencies = deps
	result.Warnings = append(result.Warnings, depWarnings...)
	if result.Status == entity.PipelineStatusSuccess && result.FallbackCount() > 0 {
		result.Status = entity.PipelineStatusDegraded
	}
	result.Summary = BuildSummary(result)

	return o.finish(ctx, result, start, nil)
}

func (o *Orchestrator) runStage(ctx context.Context, result *entity.PipelineResult, stage entity.PipelineStage, fn func(ctx context.Context) ([]string, error)) ([]string, error) {
	ctx, span := pipelineTracer.Start(ctx, "pipeline.stage."+string(stage))
	defer span.End()

	start := time.Now()
	warnings, err := fn(ctx)
	duration := time.Since(start)

	outcome := entity.StageOutcome{
		Stage:    stage,
		Ran:      true,
		Duration: duration,
	}
	if err != nil {
		outcome.Error = err.Error()
		span.RecordError(err)
	}
	result.Stages = append(result.Stages, outcome)

	metrics.PipelineStageDuration.WithLabelValues(string(stage)).Observe(duration.Seconds())
	if err != nil {
		fatal := "false"
		if stage == entity.StagePrepare || stage == entity.StageGenerate {
			fatal = "true"
		}
		metrics.PipelineStageFailures.WithLabelValues(string(stage), fatal).Inc()
	}
	return warnings, err
}

func (o *Orchestrator) markSkipped(result *entity.PipelineResult, stage entity.PipelineStage) {
	result.Stages = append(result.Stages, entity.StageOutcome{
		Stage:   stage,
		Skipped: true,
	})
}

func (o *Orchestrator) finish(ctx context.Context, result *entity.PipelineResult, start time.Time, err error) (*entity.PipelineResult, error) {
	result.Duration = time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			result.Status = entity.PipelineStatusCancelled
			err = apperrors.ErrCancelled.WithError(err)
		} else {
			result.Status = entity.PipelineStatusFailed
		}
	}

	metrics.PipelineRunsTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.PipelineRunDuration.WithLabelValues(string(result.Status)).Observe(result.Duration.Seconds())

	if err != nil {
		logger.Warn(ctx, "pipeline run finished with error",
			"status", result.Status,
			"duration_ms", result.Duration.Milliseconds(),
			"error", err.Error(),
		)
		return result, err
	}

	logger.Info(ctx, "pipeline run finished",
		"status", result.Status,
		"artifacts", len(result.Artifacts),
		"fallbacks", result.FallbackCount(),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
