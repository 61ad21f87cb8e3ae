package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		source   string
		contains string
		excludes string
	}{
		{
			name:     "heading and emphasis",
			source:   "# Title\n\nsome *emphasis*",
			contains: "<h1>Title</h1>",
		},
		{
			name:     "fenced code block",
			source:   "```\nfmt.Println(\"hi\")\n```",
			contains: "<code>",
		},
		{
			name:     "strikethrough extension",
			source:   "~~gone~~",
			contains: "<del>gone</del>",
		},
		{
			name:     "script tags stripped",
			source:   "hello <script>alert(1)</script> world",
			contains: "hello",
			excludes: "<script>",
		},
		{
			name:     "event handlers stripped",
			source:   `<img src="x" onerror="alert(1)">`,
			excludes: "onerror",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.source)
			require.NoError(t, err)
			if tt.contains != "" {
				assert.Contains(t, out, tt.contains)
			}
			if tt.excludes != "" {
				assert.NotContains(t, out, tt.excludes)
			}
		})
	}
}
