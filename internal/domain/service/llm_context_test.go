package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageProviderRoundTrip(t *testing.T) {
	ctx := WithStageProvider(context.Background(), "component_generate", "openai")

	assert.Equal(t, "component_generate", StageFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))
}

func TestStageProviderDefaults(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "unknown", StageFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))

	// 空值不写入
	ctx = WithStageProvider(ctx, "  ", "")
	assert.Equal(t, "unknown", StageFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))

	assert.Equal(t, "unknown", StageFromContext(nil))
	assert.Equal(t, "unknown", ProviderFromContext(nil))
}
