package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"purpose":"user card","kinds":["component"]}`,
			want: `{"purpose":"user card","kinds":["component"]}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the analysis:\n{\"purpose\":\"x\"}\nHope this helps!",
			want: `{"purpose":"x"}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"purpose\":\"x\"}\n```",
			want: `{"purpose":"x"}`,
		},
		{
			name: "trailing brace in prose",
			in:   "{\"a\":1} and then } some noise",
			want: `{"a":1}`,
		},
		{
			name: "array value",
			in:   "result: [1, 2, 3]",
			want: "[1, 2, 3]",
		},
		{
			name: "no json returns input",
			in:   "no structured data here",
			want: "no structured data here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}
