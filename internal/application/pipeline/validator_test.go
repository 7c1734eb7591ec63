package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeforge-ai-api/internal/domain/entity"
)

func validate(t *testing.T, content string) *entity.Artifact {
	t.Helper()
	a := &entity.Artifact{
		Name:     "Test",
		Kind:     entity.ArtifactKindComponent,
		Content:  content,
		Source:   entity.ArtifactSourceProvider,
		Language: "typescript",
	}
	a.CountLines()
	NewValidator(0).Validate(a)
	return a
}

func findIssue(a *entity.Artifact, check string) *entity.ValidationIssue {
	for i := range a.Issues {
		if a.Issues[i].Check == check {
			return &a.Issues[i]
		}
	}
	return nil
}

func TestValidateCleanArtifact(t *testing.T) {
	a := validate(t, "export function Card() {\n  return null;\n}\n")

	assert.Empty(t, a.Issues)
	assert.Equal(t, 100.0, a.Metadata.QualityScore)
	assert.True(t, a.Metadata.Validated)
}

func TestValidateEmptyContent(t *testing.T) {
	a := validate(t, "")

	require.NotNil(t, findIssue(a, "non_empty"))
	assert.Equal(t, SeverityCritical, findIssue(a, "non_empty").Severity)
	assert.Equal(t, 90.0, a.Metadata.QualityScore)
}

func TestValidateUnbalancedBrackets(t *testing.T) {
	a := validate(t, "function f() {\n  if (x) {\n    return 1;\n}\n")

	issue := findIssue(a, "balanced_brackets")
	require.NotNil(t, issue)
	assert.Equal(t, SeverityError, issue.Severity)
}

func TestValidateBracketsIgnoreStringsAndComments(t *testing.T) {
	content := "const a = \"{{{\";\n// comment with }}}\nconst b = `{ unclosed`;\nconst c = '}';\n"
	a := validate(t, content)

	assert.Nil(t, findIssue(a, "balanced_brackets"))
}

func TestValidateConflictMarkers(t *testing.T) {
	a := validate(t, "line one\n<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n")

	issue := findIssue(a, "conflict_markers")
	require.NotNil(t, issue)
	assert.Equal(t, SeverityCritical, issue.Severity)
	assert.Equal(t, 2, issue.Line)
}

func TestValidateTodoMarkers(t *testing.T) {
	a := validate(t, "function f() {\n  // TODO handle errors\n  return 1;\n}\n")

	issue := findIssue(a, "todo_markers")
	require.NotNil(t, issue)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, 2, issue.Line)
}

func TestValidateHardcodedSecret(t *testing.T) {
	a := validate(t, "const config = {\n  apiKey: \"sk-1234567890abcdef\",\n  region: 'us',\n};\n")

	issue := findIssue(a, "hardcoded_secret")
	require.NotNil(t, issue)
	assert.Equal(t, SeverityError, issue.Severity)
}

func TestValidateFallbackStubInfo(t *testing.T) {
	a := &entity.Artifact{
		Name:    "Stub",
		Kind:    entity.ArtifactKindComponent,
		Content: "export function Stub() {\n  return null;\n}\n",
		Source:  entity.ArtifactSourceFallback,
	}
	a.CountLines()
	NewValidator(0).Validate(a)

	issue := findIssue(a, "fallback_stub")
	require.NotNil(t, issue)
	assert.Equal(t, SeverityInfo, issue.Severity)
	assert.Equal(t, 99.0, a.Metadata.QualityScore)
}

func TestValidateBlockingIssueClearsValidated(t *testing.T) {
	a := validate(t, "line one\n<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n")

	require.NotNil(t, findIssue(a, "conflict_markers"))
	assert.False(t, a.Metadata.Validated)

	// 非 critical 问题不影响 Validated
	b := validate(t, "function f() {\n  // TODO handle errors\n  return 1;\n}\n")
	require.NotNil(t, findIssue(b, "todo_markers"))
	assert.True(t, b.Metadata.Validated)
}

func TestValidateComplexityCeiling(t *testing.T) {
	a := &entity.Artifact{
		Name:    "Busy",
		Kind:    entity.ArtifactKindService,
		Content: "export function busy() {\n  return 1;\n}\n",
		Source:  entity.ArtifactSourceProvider,
	}
	a.CountLines()
	a.Metadata.Complexity = 8

	NewValidator(5).Validate(a)

	issue := findIssue(a, "complexity_ceiling")
	require.NotNil(t, issue)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.True(t, a.Metadata.Validated)

	// 上限为 0 时不检查
	b := &entity.Artifact{
		Name:    "Busy",
		Kind:    entity.ArtifactKindService,
		Content: "export function busy() {\n  return 1;\n}\n",
		Source:  entity.ArtifactSourceProvider,
	}
	b.CountLines()
	b.Metadata.Complexity = 8
	NewValidator(0).Validate(b)
	assert.Nil(t, findIssue(b, "complexity_ceiling"))
}

func TestValidateScoreFloor(t *testing.T) {
	// 堆叠足够多问题，分数不应为负
	content := "<<<<<<< HEAD\nTODO ... {\npassword = \"hunter2secret\"\n"
	a := validate(t, content)

	assert.GreaterOrEqual(t, a.Metadata.QualityScore, 0.0)
	assert.NotEmpty(t, a.Issues)
}
