package restore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

func TestRestore(t *testing.T) {
	tests := []struct {
		name       string
		anonymized string
		mapping    []entity.Occurrence
		expected   string
	}{
		{
			name:       "empty mapping",
			anonymized: "hello world",
			mapping:    []entity.Occurrence{},
			expected:   "hello world",
		},
		{
			name:       "repeated placeholder",
			anonymized: "[PER_1] met [PER_1] at the office.",
			mapping: []entity.Occurrence{
				{Placeholder: "[PER_1]", Text: "John Doe", Start: 0, End: 8, Label: entity.PER},
				{Placeholder: "[PER_1]", Text: "John Doe", Start: 13, End: 21, Label: entity.PER},
			},
			expected: "John Doe met John Doe at the office.",
		},
		{
			name:       "original text looks like another placeholder",
			anonymized: "[MISC_1] and [PER_1]",
			mapping: []entity.Occurrence{
				{Placeholder: "[MISC_1]", Text: "[PER_1]", Start: 0, End: 7, Label: entity.MISC},
				{Placeholder: "[PER_1]", Text: "Ann", Start: 12, End: 15, Label: entity.PER},
			},
			expected: "[PER_1] and Ann",
		},
		{
			name:       "mapping order does not matter",
			anonymized: "[EMAIL_1] / [PHONE_1]",
			mapping: []entity.Occurrence{
				{Placeholder: "[PHONE_1]", Text: "555-123-4567", Start: 9, End: 21, Label: entity.PHONE},
				{Placeholder: "[EMAIL_1]", Text: "a@b.io", Start: 0, End: 6, Label: entity.EMAIL},
			},
			expected: "a@b.io / 555-123-4567",
		},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		assert.Equal(t, tt.expected, Restore(tt.anonymized, tt.mapping), tt.name)
	}
}

func TestRestoreFallsBackToTextualSubstitution(t *testing.T) {
	mapping := []entity.Occurrence{
		{Placeholder: "[PER_1]", Text: "Ann", Start: 0, End: 3, Label: entity.PER},
		{Placeholder: "[PER_11]", Text: "Bob", Start: 8, End: 11, Label: entity.PER},
	}

	// the text was edited after anonymisation, so positions no longer hold
	edited := "Summary: [PER_11] wrote to [PER_1], then [PER_11] replied."

	assert.Equal(t, "Summary: Bob wrote to Ann, then Bob replied.", Restore(edited, mapping))
}

func TestRestoreTextualDoesNotRescanRestoredContent(t *testing.T) {
	mapping := []entity.Occurrence{
		{Placeholder: "[MISC_1]", Text: "[PER_1]", Start: 0, End: 7, Label: entity.MISC},
		{Placeholder: "[PER_1]", Text: "Ann", Start: 20, End: 23, Label: entity.PER},
	}

	assert.Equal(t, "edited: [PER_1] / Ann", Restore("edited: [MISC_1] / [PER_1]", mapping))
}
