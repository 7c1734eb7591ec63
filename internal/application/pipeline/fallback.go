package pipeline

import (
	"fmt"
	"strings"
	"text/template"

	"codeforge-ai-api/internal/domain/entity"
	wfnode "codeforge-ai-api/internal/workflow/node"
)

// FallbackGenerator 提供商不可用或输出不可用时的确定性骨架生成。
// 产物保证语法自洽，单元可编译，方法体留待人工补全。
type FallbackGenerator struct {
	templates map[string]*template.Template
}

type fallbackVars struct {
	Name      string
	CamelName string
	KebabName string
	Purpose   string
	Framework string
	Methods   []fallbackMethod
}

type fallbackMethod struct {
	Name       string
	PascalName string
}

var fallbackTemplates = map[string]string{
	"react": `import React from 'react';

// {{.Name}}: {{.Purpose}}
export interface {{.Name}}Props {
  className?: string;
}

export function {{.Name}}({ className }: {{.Name}}Props) {
  return (
    <div className={className} data-component="{{.KebabName}}">
      <span>{{.Name}} is not implemented yet</span>
    </div>
  );
}

export default {{.Name}};
`,
	"vue": `<template>
  <div class="{{.KebabName}}">
    <span>{{"{{"}} message {{"}}"}}</span>
  </div>
</template>

<script setup lang="ts">
// {{.Name}}: {{.Purpose}}
import { ref } from 'vue';

const message = ref('{{.Name}} is not implemented yet');
</script>
`,
	"class": `// {{.Name}}: {{.Purpose}}
export class {{.Name}} {
{{- if .Methods}}
{{- range .Methods}}
  {{.Name}}(): void {
    throw new Error('{{.Name}} is not implemented');
  }
{{- end}}
{{- else}}
  render(): string {
    return '{{.Name}} is not implemented yet';
  }
{{- end}}
}

export default {{.Name}};
`,
	"go": `package {{.KebabName | pkgname}}

import "errors"

// {{.Name}}: {{.Purpose}}
type {{.Name}} struct{}

func New{{.Name}}() *{{.Name}} {
	return &{{.Name}}{}
}
{{range .Methods}}
func (s *{{$.Name}}) {{.PascalName}}() error {
	return errors.New("{{.Name}} is not implemented")
}
{{end}}`,
	"python": `"""{{.Name}}: {{.Purpose}}"""


class {{.Name}}:
{{- if .Methods}}
{{- range .Methods}}
    def {{.Name}}(self):
        raise NotImplementedError("{{.Name}} is not implemented")
{{end}}
{{- else}}
    pass
{{- end}}
`,
}

func NewFallbackGenerator() *FallbackGenerator {
	funcs := template.FuncMap{
		"pkgname": func(s string) string {
			return strings.ReplaceAll(strings.ToLower(s), "-", "")
		},
	}
	compiled := make(map[string]*template.Template, len(fallbackTemplates))
	for name, text := range fallbackTemplates {
		compiled[name] = template.Must(template.New(name).Funcs(funcs).Parse(text))
	}
	return &FallbackGenerator{templates: compiled}
}

// Generate 为一个组件产出骨架产物，永不失败
func (g *FallbackGenerator) Generate(comp entity.ComponentSpec, language, framework string) *entity.Artifact {
	name := wfnode.ToPascalCase(comp.Name)
	if name == "" {
		name = "GeneratedComponent"
	}

	methods := make([]fallbackMethod, 0, len(comp.Methods))
	for _, m := range comp.Methods {
		methods = append(methods, fallbackMethod{
			Name:       wfnode.ToCamelCase(m),
			PascalName: wfnode.ToPascalCase(m),
		})
	}
	if len(methods) == 0 && comp.Kind != entity.ArtifactKindComponent && comp.Kind != entity.ArtifactKindPage {
		methods = []fallbackMethod{{Name: "execute", PascalName: "Execute"}}
	}

	vars := fallbackVars{
		Name:      name,
		CamelName: wfnode.ToCamelCase(comp.Name),
		KebabName: wfnode.ToKebabCase(comp.Name),
		Purpose:   strings.TrimSpace(comp.Purpose),
		Framework: framework,
		Methods:   methods,
	}
	if vars.Purpose == "" {
		vars.Purpose = "generated placeholder"
	}

	tplName := g.pickTemplate(comp.Kind, language, framework)
	var b strings.Builder
	if err := g.templates[tplName].Execute(&b, vars); err != nil {
		// 模板在初始化时已编译通过，执行失败只能是数据问题
		b.Reset()
		fmt.Fprintf(&b, "// %s: %s\n// not implemented\n", name, vars.Purpose)
	}

	a := &entity.Artifact{
		Name:     name,
		Kind:     comp.Kind,
		Path:     comp.Path,
		Content:  b.String(),
		Language: language,
		Source:   entity.ArtifactSourceFallback,
	}
	if a.Kind == "" {
		a.Kind = entity.ArtifactKindComponent
	}
	if a.Path == "" {
		a.Path = InferPath(a.Name, a.Kind, language)
	}
	a.CountLines()
	a.Metadata.Complexity = 1
	if deps := wfnode.ExtractDependencies(a.Content, language); len(deps) > 0 {
		a.Dependencies = make(map[string]string, len(deps))
		for _, dep := range deps {
			a.Dependencies[dep] = "*"
		}
	}
	return a
}

func (g *FallbackGenerator) pickTemplate(kind entity.ArtifactKind, language, framework string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	fw := strings.ToLower(strings.TrimSpace(framework))

	isUI := kind == entity.ArtifactKindComponent || kind == entity.ArtifactKindPage
	if isUI {
		switch {
		case fw == "vue" || lang == "vue":
			return "vue"
		case fw == "react" || lang == "tsx" || lang == "jsx":
			return "react"
		}
	}

	switch lang {
	case "go", "golang":
		return "go"
	case "python", "py":
		return "python"
	case "vue":
		return "vue"
	case "tsx", "jsx":
		if isUI {
			return "react"
		}
		return "class"
	default:
		if isUI && fw == "react" {
			return "react"
		}
		return "class"
	}
}
