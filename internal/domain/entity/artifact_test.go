package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactUsable(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		minChars int
		want     bool
	}{
		{"empty content", "", 50, false},
		{"whitespace only", "  \n\t\r\n   ", 50, false},
		{"padded short content", "x\n\n\n\n\n\n\n\n\n\n" + strings.Repeat(" ", 200), 50, false},
		{"exactly at threshold", strings.Repeat("a", 50), 50, true},
		{"one below threshold", strings.Repeat("a", 49), 50, false},
		{"dense content", "export function LoginForm() { return <form>login</form>; }", 50, true},
		{"zero threshold", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Artifact{Content: tt.content}
			assert.Equal(t, tt.want, a.Usable(tt.minChars))
		})
	}
}

func TestArtifactCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single line", "package main", 1},
		{"trailing newline not counted", "a\nb\n", 2},
		{"multi line", "a\nb\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Artifact{Content: tt.content}
			assert.Equal(t, tt.want, a.CountLines())
			assert.Equal(t, tt.want, a.Metadata.Lines)
		})
	}
}

func TestPipelineResultFallbackCount(t *testing.T) {
	r := &PipelineResult{Artifacts: []*Artifact{
		{Name: "A", Source: ArtifactSourceProvider},
		{Name: "B", Source: ArtifactSourceFallback},
		{Name: "C", Source: ArtifactSourceFallback},
	}}
	assert.Equal(t, 2, r.FallbackCount())
}

func TestPipelineResultOutcome(t *testing.T) {
	r := &PipelineResult{Stages: []StageOutcome{
		{Stage: StagePrepare, Ran: true},
		{Stage: StageValidate, Skipped: true},
	}}

	assert.NotNil(t, r.Outcome(StagePrepare))
	assert.True(t, r.Outcome(StageValidate).Skipped)
	assert.Nil(t, r.Outcome(StageOptimize))
}
