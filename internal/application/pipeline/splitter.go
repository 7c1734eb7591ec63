package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"codeforge-ai-api/internal/domain/entity"
	wfnode "codeforge-ai-api/internal/workflow/node"
)

// Splitter 把模型原始输出切分为独立产物。
// 按优先级依次尝试：marker 标注块、多个普通围栏块、顶层声明边界、整体兜底。
// 刻意做成结构化的 best-effort 解析，不是语言级 parser，残缺输出不 panic。
type Splitter struct{}

func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split 保证至少返回一个产物（输入全空白时返回空切片，由调用方走回退）。
func (s *Splitter) Split(raw string, comp entity.ComponentSpec, language string) []*entity.Artifact {
	raw = wfnode.NormalizeNewlines(raw)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	blocks := wfnode.ExtractCodeBlocks(raw)

	// 策略一：识别 marker 标注
	artifacts := s.splitByMarkers(blocks, comp, language)
	if len(artifacts) > 0 {
		return dedupeNames(artifacts)
	}

	// 策略二：多个普通围栏块，名称从组件规格推导
	if len(blocks) >= 2 {
		return dedupeNames(s.splitByFences(blocks, comp, language))
	}

	// 单个围栏块只取其内容，避免把围栏语法带进产物
	content := strings.TrimSpace(raw)
	if len(blocks) == 1 {
		content = blocks[0].Content
		if blocks[0].Lang != "" {
			language = blocks[0].Lang
		}
	}

	// 策略三：顶层声明边界切分
	artifacts = s.splitByDeclarations(content, comp, language)
	if len(artifacts) > 0 {
		return dedupeNames(artifacts)
	}

	// 策略四：整体作为单一产物
	return []*entity.Artifact{s.newArtifact(comp.Name, comp.Kind, comp.Path, content, language, comp)}
}

func (s *Splitter) splitByMarkers(blocks []wfnode.CodeBlock, comp entity.ComponentSpec, language string) []*entity.Artifact {
	var out []*entity.Artifact
	for _, b := range blocks {
		if b.Marker == "" {
			continue
		}
		name, kindStr, path, ok := wfnode.ParseMarker(b.Marker)
		if !ok {
			continue
		}
		kind := normalizeKind(kindStr, comp.Kind)
		lang := b.Lang
		if lang == "" {
			lang = language
		}
		out = append(out, s.newArtifact(name, kind, path, b.Content, lang, comp))
	}
	return out
}

func (s *Splitter) splitByFences(blocks []wfnode.CodeBlock, comp entity.ComponentSpec, language string) []*entity.Artifact {
	var out []*entity.Artifact
	for i, b := range blocks {
		name := comp.Name
		if i > 0 {
			name = fmt.Sprintf("%s-%d", comp.Name, i+1)
		}
		lang := b.Lang
		if lang == "" {
			lang = language
		}
		path := ""
		if i == 0 {
			path = comp.Path
		}
		out = append(out, s.newArtifact(name, comp.Kind, path, b.Content, lang, comp))
	}
	return out
}

// 顶层声明边界。识别行首的导出函数/类/常量等声明并捕获标识符。
var declBoundary = regexp.MustCompile(`(?m)^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?(?:async\s+)?(?:function|class|interface|enum|const|def|func|type)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

// splitByDeclarations 没有围栏结构时按顶层声明切分。
// 少于两个声明边界返回 nil，交给整体兜底。
func (s *Splitter) splitByDeclarations(content string, comp entity.ComponentSpec, language string) []*entity.Artifact {
	locs := declBoundary.FindAllStringSubmatchIndex(content, -1)
	if len(locs) < 2 {
		return nil
	}

	var out []*entity.Artifact
	for i, loc := range locs {
		start := loc[0]
		if i == 0 {
			// 首段带上前置的 import 等内容
			start = 0
		}
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		name := content[loc[2]:loc[3]]
		segment := strings.TrimSpace(content[start:end])
		if segment == "" {
			continue
		}
		out = append(out, s.newArtifact(name, comp.Kind, "", segment, language, comp))
	}
	return out
}

func (s *Splitter) newArtifact(name string, kind entity.ArtifactKind, path, content, language string, comp entity.ComponentSpec) *entity.Artifact {
	if name == "" {
		name = comp.Name
	}
	if kind == "" {
		kind = entity.ArtifactKindComponent
	}
	if path == "" {
		path = InferPath(name, kind, language)
	}
	a := &entity.Artifact{
		Name:     name,
		Kind:     kind,
		Path:     path,
		Content:  content,
		Language: language,
		Source:   entity.ArtifactSourceProvider,
	}
	a.CountLines()
	a.Metadata.Complexity = EstimateComplexity(content)
	if deps := wfnode.ExtractDependencies(content, language); len(deps) > 0 {
		a.Dependencies = make(map[string]string, len(deps))
		for _, dep := range deps {
			a.Dependencies[dep] = "*"
		}
	}
	return a
}

// dedupeNames 保证产物名唯一，重名追加序号
func dedupeNames(artifacts []*entity.Artifact) []*entity.Artifact {
	seen := make(map[string]int, len(artifacts))
	for _, a := range artifacts {
		n := seen[a.Name]
		seen[a.Name] = n + 1
		if n > 0 {
			a.Name = fmt.Sprintf("%s-%d", a.Name, n+1)
		}
	}
	return artifacts
}

func normalizeKind(s string, fallback entity.ArtifactKind) entity.ArtifactKind {
	switch entity.ArtifactKind(strings.ToLower(strings.TrimSpace(s))) {
	case entity.ArtifactKindComponent:
		return entity.ArtifactKindComponent
	case entity.ArtifactKindPage:
		return entity.ArtifactKindPage
	case entity.ArtifactKindService:
		return entity.ArtifactKindService
	case entity.ArtifactKindAPIHandler:
		return entity.ArtifactKindAPIHandler
	case entity.ArtifactKindModel:
		return entity.ArtifactKindModel
	case entity.ArtifactKindTest:
		return entity.ArtifactKindTest
	case entity.ArtifactKindConfig:
		return entity.ArtifactKindConfig
	default:
		if fallback != "" {
			return fallback
		}
		return entity.ArtifactKindComponent
	}
}

// InferPath 根据产物类别和语言推导默认落盘路径
func InferPath(name string, kind entity.ArtifactKind, language string) string {
	ext := extensionFor(language)
	base := wfnode.ToKebabCase(name)
	switch kind {
	case entity.ArtifactKindPage:
		return fmt.Sprintf("src/pages/%s%s", base, ext)
	case entity.ArtifactKindService:
		return fmt.Sprintf("src/services/%s%s", base, ext)
	case entity.ArtifactKindAPIHandler:
		return fmt.Sprintf("src/api/%s%s", base, ext)
	case entity.ArtifactKindModel:
		return fmt.Sprintf("src/models/%s%s", base, ext)
	case entity.ArtifactKindTest:
		return fmt.Sprintf("tests/%s.test%s", base, ext)
	case entity.ArtifactKindConfig:
		return fmt.Sprintf("config/%s%s", base, ext)
	default:
		return fmt.Sprintf("src/components/%s%s", base, ext)
	}
}

func extensionFor(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "typescript", "ts":
		return ".ts"
	case "tsx":
		return ".tsx"
	case "javascript", "js":
		return ".js"
	case "jsx":
		return ".jsx"
	case "go", "golang":
		return ".go"
	case "python", "py":
		return ".py"
	case "rust", "rs":
		return ".rs"
	case "java":
		return ".java"
	case "vue":
		return ".vue"
	case "yaml", "yml":
		return ".yaml"
	case "json":
		return ".json"
	default:
		return ".txt"
	}
}
