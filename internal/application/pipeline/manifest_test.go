package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeforge-ai-api/internal/domain/entity"
)

func TestBuildDependencyManifestMerges(t *testing.T) {
	artifacts := []*entity.Artifact{
		{Name: "A", Dependencies: map[string]string{"react": "^18.2.0", "clsx": "^2.0.0"}},
		{Name: "B", Dependencies: map[string]string{"axios": "^1.6.0"}},
	}

	deps, warnings := BuildDependencyManifest(artifacts)

	assert.Empty(t, warnings)
	assert.Equal(t, map[string]string{
		"react": "^18.2.0",
		"clsx":  "^2.0.0",
		"axios": "^1.6.0",
	}, deps)
}

func TestBuildDependencyManifestConflictKeepsFirst(t *testing.T) {
	artifacts := []*entity.Artifact{
		{Name: "A", Dependencies: map[string]string{"react": "^18.2.0"}},
		{Name: "B", Dependencies: map[string]string{"react": "^17.0.0"}},
		{Name: "C", Dependencies: map[string]string{"react": "^18.2.0"}},
	}

	deps, warnings := BuildDependencyManifest(artifacts)

	assert.Equal(t, "^18.2.0", deps["react"])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "keeping ^18.2.0")
}

func TestBuildDependencyManifestEmpty(t *testing.T) {
	deps, warnings := BuildDependencyManifest([]*entity.Artifact{{Name: "A"}})

	assert.Nil(t, deps)
	assert.Empty(t, warnings)
}

func TestBuildSummary(t *testing.T) {
	result := &entity.PipelineResult{
		Status:       entity.PipelineStatusDegraded,
		QualityScore: 87.5,
		Artifacts: []*entity.Artifact{
			{
				Name:   "UserCard",
				Kind:   entity.ArtifactKindComponent,
				Path:   "src/components/user-card.tsx",
				Source: entity.ArtifactSourceProvider,
				Metadata: entity.ArtifactMetadata{
					Validated:    true,
					QualityScore: 90,
				},
			},
			{
				Name:   "OrderService",
				Kind:   entity.ArtifactKindService,
				Path:   "src/services/order-service.ts",
				Source: entity.ArtifactSourceFallback,
			},
		},
		Dependencies: map[string]string{"react": "^18.2.0", "axios": "^1.6.0"},
		Warnings:     []string{"provider timed out, fallback used for OrderService"},
	}

	summary := BuildSummary(result)

	assert.Contains(t, summary, "Status: degraded")
	assert.Contains(t, summary, "Artifacts: 2 (fallback: 1)")
	assert.Contains(t, summary, "Quality score: 87.5")
	assert.Contains(t, summary, "- UserCard (component) -> src/components/user-card.tsx score=90")
	assert.Contains(t, summary, "- OrderService (service) -> src/services/order-service.ts [fallback stub]")
	// 依赖按名称排序
	assert.Less(t,
		strings.Index(summary, "axios@^1.6.0"),
		strings.Index(summary, "react@^18.2.0"),
	)
	assert.Contains(t, summary, "- provider timed out, fallback used for OrderService")
}
