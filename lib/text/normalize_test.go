package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		name             string
		input            Token
		expected         Token
		expectedBoundary bool
	}{
		{
			name:     "nothing to trim",
			input:    Token{"hello", 3, 8},
			expected: Token{"hello", 3, 8},
		},
		{
			name:     "start with enclosing character",
			input:    Token{"(hello", 0, 6},
			expected: Token{"hello", 1, 6},
		},
		{
			name:             "end with enclosing character",
			input:            Token{"hello)", 0, 6},
			expected:         Token{"hello", 0, 5},
			expectedBoundary: true,
		},
		{
			name:             "quoted with trailing full stop",
			input:            Token{`"Smith".`, 10, 18},
			expected:         Token{"Smith", 11, 16},
			expectedBoundary: true,
		},
		{
			name:             "only punctuation",
			input:            Token{"...", 4, 7},
			expected:         Token{"", 4, 4},
			expectedBoundary: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, boundary := Trim(tt.input)
			assert.Equal(t, tt.expected, token)
			assert.Equal(t, tt.expectedBoundary, boundary)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello", Normalize("Hello"))
	assert.Equal(t, "x2", Normalize("x²"))
	assert.Equal(t, "fine", Normalize("ﬁne"))
	assert.Equal(t, "", Normalize(""))
}
