package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user card", "UserCard"},
		{"user-card", "UserCard"},
		{"user_card", "UserCard"},
		{"userCard", "UserCard"},
		{"UserCard", "UserCard"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToPascalCase(tt.in), "input %q", tt.in)
	}
}

func TestToCamelCase(t *testing.T) {
	assert.Equal(t, "userCard", ToCamelCase("user card"))
	assert.Equal(t, "fetchData", ToCamelCase("fetch_data"))
	assert.Equal(t, "", ToCamelCase(""))
}

func TestToKebabCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"UserCard", "user-card"},
		{"userCard", "user-card"},
		{"user card", "user-card"},
		{"user_card", "user-card"},
		{"API", "api"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToKebabCase(tt.in), "input %q", tt.in)
	}
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "ab", TruncateByRunes("abcd", 2))
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "你好", TruncateByRunes("你好世界", 2))
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", NormalizeNewlines("a\r\nb\rc\n"))
}
