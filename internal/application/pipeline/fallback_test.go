package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeforge-ai-api/internal/domain/entity"
)

func TestFallbackReactComponent(t *testing.T) {
	g := NewFallbackGenerator()
	a := g.Generate(entity.ComponentSpec{
		Name:    "user card",
		Kind:    entity.ArtifactKindComponent,
		Purpose: "renders a user summary",
	}, "typescript", "react")

	assert.Equal(t, "UserCard", a.Name)
	assert.Equal(t, entity.ArtifactSourceFallback, a.Source)
	assert.Contains(t, a.Content, "export function UserCard(")
	assert.Contains(t, a.Content, `data-component="user-card"`)
	assert.Contains(t, a.Content, "renders a user summary")
	assert.Equal(t, 1, a.Metadata.Complexity)
	assert.NotEmpty(t, a.Path)
	assert.Equal(t, map[string]string{"react": "*"}, a.Dependencies)
}

func TestFallbackVueComponent(t *testing.T) {
	g := NewFallbackGenerator()
	a := g.Generate(entity.ComponentSpec{
		Name: "NavBar",
		Kind: entity.ArtifactKindComponent,
	}, "typescript", "vue")

	assert.Contains(t, a.Content, "<template>")
	assert.Contains(t, a.Content, `class="nav-bar"`)
	assert.Contains(t, a.Content, "{{ message }}")
	assert.Contains(t, a.Content, "generated placeholder")
}

func TestFallbackServiceClassGetsExecuteMethod(t *testing.T) {
	g := NewFallbackGenerator()
	a := g.Generate(entity.ComponentSpec{
		Name: "payment service",
		Kind: entity.ArtifactKindService,
	}, "typescript", "react")

	assert.Contains(t, a.Content, "export class PaymentService")
	assert.Contains(t, a.Content, "execute(): void")
}

func TestFallbackClassComponentUnknownFramework(t *testing.T) {
	g := NewFallbackGenerator()
	a := g.Generate(entity.ComponentSpec{
		Name: "user card",
		Kind: entity.ArtifactKindComponent,
	}, "typescript", "svelte")

	assert.Contains(t, a.Content, "export class UserCard")
	assert.Contains(t, a.Content, "not implemented")
	assert.NotContains(t, a.Content, "{\n}")
}

func TestFallbackGoTemplate(t *testing.T) {
	g := NewFallbackGenerator()
	a := g.Generate(entity.ComponentSpec{
		Name:    "order store",
		Kind:    entity.ArtifactKindService,
		Methods: []string{"save order", "find by id"},
	}, "go", "")

	assert.True(t, strings.HasPrefix(a.Content, "package orderstore"))
	assert.Contains(t, a.Content, "func NewOrderStore() *OrderStore")
	assert.Contains(t, a.Content, "func (s *OrderStore) SaveOrder() error")
	assert.Contains(t, a.Content, "func (s *OrderStore) FindById() error")
}

func TestFallbackPythonTemplate(t *testing.T) {
	g := NewFallbackGenerator()

	withMethods := g.Generate(entity.ComponentSpec{
		Name:    "report builder",
		Kind:    entity.ArtifactKindModel,
		Methods: []string{"build"},
	}, "python", "")
	assert.Contains(t, withMethods.Content, "class ReportBuilder:")
	assert.Contains(t, withMethods.Content, "def build(self):")
	assert.Contains(t, withMethods.Content, "raise NotImplementedError")

	component := g.Generate(entity.ComponentSpec{
		Name: "banner",
		Kind: entity.ArtifactKindComponent,
	}, "python", "")
	assert.Contains(t, component.Content, "pass")
}

func TestFallbackDefaultName(t *testing.T) {
	g := NewFallbackGenerator()
	a := g.Generate(entity.ComponentSpec{Kind: entity.ArtifactKindComponent}, "typescript", "react")

	assert.Equal(t, "GeneratedComponent", a.Name)
	assert.True(t, a.Usable(50))
}

func TestFallbackPickTemplate(t *testing.T) {
	g := NewFallbackGenerator()

	tests := []struct {
		name      string
		kind      entity.ArtifactKind
		language  string
		framework string
		want      string
	}{
		{"vue framework wins for ui", entity.ArtifactKindPage, "typescript", "vue", "vue"},
		{"tsx implies react for ui", entity.ArtifactKindComponent, "tsx", "", "react"},
		{"tsx service is a class", entity.ArtifactKindService, "tsx", "", "class"},
		{"golang alias", entity.ArtifactKindService, "golang", "", "go"},
		{"py alias", entity.ArtifactKindModel, "py", "", "python"},
		{"unknown lang defaults to class", entity.ArtifactKindService, "typescript", "", "class"},
		{"react framework for ui default lang", entity.ArtifactKindComponent, "typescript", "react", "react"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.pickTemplate(tt.kind, tt.language, tt.framework))
		})
	}
}
