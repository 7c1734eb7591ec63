package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 24*time.Hour, cfg.Messaging.JobTTL)
	assert.Equal(t, 3, cfg.Messaging.RedisStream.RetryLimit)
	assert.Equal(t, 25, cfg.Pipeline.ComplexityCeiling)
	assert.Equal(t, 10*time.Minute, cfg.Features.ResultCache.TTL)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("CFG_TEST_HOST", "redis.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${CFG_TEST_HOST}", "host: redis.internal"},
		{"set variable ignores default", "host: ${CFG_TEST_HOST:localhost}", "host: redis.internal"},
		{"unset with default", "port: ${CFG_TEST_PORT:6379}", "port: 6379"},
		{"unset with empty default", "password: ${CFG_TEST_PASSWORD:}", "password: "},
		{"unset without default stays", "key: ${CFG_TEST_MISSING}", "key: ${CFG_TEST_MISSING}"},
		{"multiple placeholders", "${CFG_TEST_HOST}:${CFG_TEST_PORT:6379}", "redis.internal:6379"},
		{"no placeholder", "plain value", "plain value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}
