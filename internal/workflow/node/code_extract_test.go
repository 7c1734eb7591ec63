package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeBlocks(t *testing.T) {
	raw := "Here is the component:\n" +
		"```tsx component:UserCard:component:src/components/UserCard.tsx\n" +
		"export function UserCard() {}\n" +
		"```\n" +
		"And the test:\n" +
		"```tsx\n" +
		"describe('UserCard', () => {});\n" +
		"```\n"

	blocks := ExtractCodeBlocks(raw)
	require.Len(t, blocks, 2)

	assert.Equal(t, "tsx", blocks[0].Lang)
	assert.Equal(t, "component:UserCard:component:src/components/UserCard.tsx", blocks[0].Marker)
	assert.Equal(t, "export function UserCard() {}", blocks[0].Content)

	assert.Equal(t, "tsx", blocks[1].Lang)
	assert.Empty(t, blocks[1].Marker)
}

func TestExtractCodeBlocksMissingClosingFence(t *testing.T) {
	raw := "```go\npackage main\n\nfunc main() {}"

	blocks := ExtractCodeBlocks(raw)
	require.Len(t, blocks, 1)
	assert.Equal(t, "go", blocks[0].Lang)
	assert.Equal(t, "package main\n\nfunc main() {}", blocks[0].Content)
}

func TestExtractCodeBlocksSkipsEmpty(t *testing.T) {
	raw := "```\n\n```\n```js\nconsole.log(1);\n```"

	blocks := ExtractCodeBlocks(raw)
	require.Len(t, blocks, 1)
	assert.Equal(t, "js", blocks[0].Lang)
}

func TestExtractFirstCode(t *testing.T) {
	assert.Equal(t, "a = 1", ExtractFirstCode("```python\na = 1\n```"))
	// 没有围栏时返回全文
	assert.Equal(t, "plain text", ExtractFirstCode("  plain text \n"))
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		name     string
		marker   string
		wantName string
		wantKind string
		wantPath string
		wantOK   bool
	}{
		{"full marker", "component:UserCard:component:src/components/UserCard.tsx", "UserCard", "component", "src/components/UserCard.tsx", true},
		{"no path", "component:AuthService:service", "AuthService", "service", "", true},
		{"path with colons", "component:Page:page:C:/src/page.tsx", "Page", "page", "C:/src/page.tsx", true},
		{"missing kind", "component:OnlyName", "", "", "", false},
		{"empty name", "component::service", "", "", "", false},
		{"wrong prefix", "artifact:X:service", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, kind, path, ok := ParseMarker(tt.marker)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}
