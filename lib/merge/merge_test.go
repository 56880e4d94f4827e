package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

// rawSpans turns merged spans back into raw spans so they can be merged again.
func rawSpans(merged []entity.MergedSpan) []entity.RawSpan {
	spans := make([]entity.RawSpan, len(merged))
	for i, m := range merged {
		spans[i] = entity.RawSpan{Label: string(m.Label), Start: m.Start, End: m.End}
	}
	return spans
}

func TestMerge(t *testing.T) {
	text := strings.Repeat("abcdefghij", 3)

	tests := []struct {
		name     string
		spans    []entity.RawSpan
		expected []entity.MergedSpan
	}{
		{
			name:     "no spans",
			spans:    nil,
			expected: []entity.MergedSpan{},
		},
		{
			name: "overlapping spans are unioned",
			spans: []entity.RawSpan{
				{Label: "PER", Start: 0, End: 10},
				{Label: "ORG", Start: 5, End: 15},
			},
			expected: []entity.MergedSpan{
				{Label: entity.PER, Start: 0, End: 15, Text: text[0:15]},
			},
		},
		{
			name: "touching spans merge",
			spans: []entity.RawSpan{
				{Label: "LOC", Start: 0, End: 4},
				{Label: "LOC", Start: 4, End: 8},
			},
			expected: []entity.MergedSpan{
				{Label: entity.LOC, Start: 0, End: 8, Text: text[0:8]},
			},
		},
		{
			name: "merging is transitive across a chain",
			spans: []entity.RawSpan{
				{Label: "ORG", Start: 10, End: 14},
				{Label: "PER", Start: 2, End: 6},
				{Label: "PER", Start: 5, End: 11},
			},
			expected: []entity.MergedSpan{
				{Label: entity.PER, Start: 2, End: 14, Text: text[2:14]},
			},
		},
		{
			name: "longest span sharing a start seeds the label",
			spans: []entity.RawSpan{
				{Label: "PHONE", Start: 3, End: 6},
				{Label: "ORG", Start: 3, End: 12},
			},
			expected: []entity.MergedSpan{
				{Label: entity.ORG, Start: 3, End: 12, Text: text[3:12]},
			},
		},
		{
			name: "disjoint spans stay apart and are sorted",
			spans: []entity.RawSpan{
				{Label: "EMAIL", Start: 20, End: 25},
				{Label: "PER", Start: 0, End: 3},
			},
			expected: []entity.MergedSpan{
				{Label: entity.PER, Start: 0, End: 3, Text: text[0:3]},
				{Label: entity.EMAIL, Start: 20, End: 25, Text: text[20:25]},
			},
		},
		{
			name: "unknown labels become MISC",
			spans: []entity.RawSpan{
				{Label: "DATE", Start: 1, End: 2},
			},
			expected: []entity.MergedSpan{
				{Label: entity.MISC, Start: 1, End: 2, Text: text[1:2]},
			},
		},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		assert.Equal(t, tt.expected, Merge(tt.spans, text), tt.name)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	text := "Jane Roe from Acme Ltd called 555-123-4567 twice."
	spans := []entity.RawSpan{
		{Label: "PER", Start: 0, End: 8},
		{Label: "PER", Start: 5, End: 8},
		{Label: "ORG", Start: 14, End: 22},
		{Label: "PHONE", Start: 30, End: 42},
		{Label: "B-MISC", Start: 33, End: 36},
	}

	once := Merge(spans, text)
	twice := Merge(rawSpans(once), text)

	assert.Equal(t, once, twice)
	for i := 1; i < len(once); i++ {
		assert.Less(t, once[i-1].End, once[i].Start)
	}
}

func TestMergeDoesNotReorderInput(t *testing.T) {
	spans := []entity.RawSpan{
		{Label: "ORG", Start: 4, End: 6},
		{Label: "PER", Start: 0, End: 2},
	}
	Merge(spans, "abcdefg")
	assert.Equal(t, "ORG", spans[0].Label)
}
