package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPlainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "simple markup",
			html:     "<p>Hello <b>world</b></p>",
			expected: "Hello world",
		},
		{
			name:     "nested lists",
			html:     "<ul><li>Coffee</li><li>Oat milk</li></ul>",
			expected: "Coffee Oat milk",
		},
		{
			name:     "adjacent paragraphs stay separated",
			html:     "<h1>Groceries</h1><p>eggs</p><p>bread</p>",
			expected: "Groceries eggs bread",
		},
		{
			name:     "line breaks separate runs",
			html:     "first line<br>second line<br/>third line",
			expected: "first line second line third line",
		},
		{
			name:     "script content dropped",
			html:     "<p>visible</p><script>alert('nope')</script>",
			expected: "visible",
		},
		{
			name:     "style content dropped",
			html:     "<style>p { color: red }</style><p>text</p>",
			expected: "text",
		},
		{
			name:     "collapses whitespace",
			html:     "<p>  a\n\n  b\t c  </p>",
			expected: "a b c",
		},
		{
			name:     "plain text passthrough",
			html:     "no markup here",
			expected: "no markup here",
		},
		{
			name:     "empty input",
			html:     "",
			expected: "",
		},
		{
			name:     "malformed markup does not panic",
			html:     "<p>unclosed <b>bold",
			expected: "unclosed bold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToPlainText(tt.html))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "abcde...", Truncate("abcdefghij", 5))
	assert.Equal(t, "", Truncate("", 5))
}
