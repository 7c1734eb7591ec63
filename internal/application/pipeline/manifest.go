package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"codeforge-ai-api/internal/domain/entity"
)

// BuildDependencyManifest 合并全部产物的依赖。版本冲突保留先出现的并返回警告。
func BuildDependencyManifest(artifacts []*entity.Artifact) (map[string]string, []string) {
	deps := make(map[string]string)
	var warnings []string
	for _, a := range artifacts {
		for name, version := range a.Dependencies {
			if existing, ok := deps[name]; ok {
				if existing != version {
					warnings = append(warnings, fmt.Sprintf(
						"dependency %s requested at both %s and %s, keeping %s",
						name, existing, version, existing))
				}
				continue
			}
			deps[name] = version
		}
	}
	if len(deps) == 0 {
		return nil, warnings
	}
	return deps, warnings
}

// BuildSummary 生成面向人的运行摘要
func BuildSummary(result *entity.PipelineResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generation Summary\n\n")
	fmt.Fprintf(&b, "Status: %s\n", result.Status)
	fmt.Fprintf(&b, "Artifacts: %d (fallback: %d)\n", len(result.Artifacts), result.FallbackCount())
	if result.QualityScore > 0 {
		fmt.Fprintf(&b, "Quality score: %.1f\n", result.QualityScore)
	}
	fmt.Fprintf(&b, "\n## Artifacts\n\n")
	for _, a := range result.Artifacts {
		fmt.Fprintf(&b, "- %s (%s) -> %s", a.Name, a.Kind, a.Path)
		if a.Source == entity.ArtifactSourceFallback {
			b.WriteString(" [fallback stub]")
		}
		if a.Metadata.Validated {
			fmt.Fprintf(&b, " score=%.0f", a.Metadata.QualityScore)
		}
		b.WriteString("\n")
	}

	if len(result.Dependencies) > 0 {
		fmt.Fprintf(&b, "\n## Dependencies\n\n")
		names := make([]string, 0, len(result.Dependencies))
		for name := range result.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s@%s\n", name, result.Dependencies[name])
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## Warnings\n\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
