package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

type PlaceholderSuite struct {
	suite.Suite
	text   string
	merged []entity.MergedSpan
}

func TestPlaceholderSuite(t *testing.T) {
	suite.Run(t, new(PlaceholderSuite))
}

func (s *PlaceholderSuite) SetupTest() {
	s.text = "John Doe met John Doe and Acme at jd@acme.com."
	s.merged = []entity.MergedSpan{
		{Label: entity.PER, Start: 0, End: 8, Text: "John Doe"},
		{Label: entity.PER, Start: 13, End: 21, Text: "John Doe"},
		{Label: entity.ORG, Start: 26, End: 30, Text: "Acme"},
		{Label: entity.EMAIL, Start: 34, End: 45, Text: "jd@acme.com"},
	}
}

func (s *PlaceholderSuite) TestAssignReusesPlaceholders() {
	a := NewAssigner()
	occurrences := a.Assign(s.merged)

	s.Require().Len(occurrences, 4)
	s.Equal("[PER_1]", occurrences[0].Placeholder)
	s.Equal("[PER_1]", occurrences[1].Placeholder)
	s.Equal(13, occurrences[1].Start, "each occurrence keeps its own offsets")
	s.Equal("[ORG_1]", occurrences[2].Placeholder)
	s.Equal("[EMAIL_1]", occurrences[3].Placeholder)
}

func (s *PlaceholderSuite) TestSameTextDifferentLabel() {
	a := NewAssigner()
	occurrences := a.Assign([]entity.MergedSpan{
		{Label: entity.PER, Start: 0, End: 5, Text: "Paris"},
		{Label: entity.LOC, Start: 10, End: 15, Text: "Paris"},
		{Label: entity.PER, Start: 20, End: 25, Text: "Hilda"},
	})

	s.Equal("[PER_1]", occurrences[0].Placeholder)
	s.Equal("[LOC_1]", occurrences[1].Placeholder)
	s.Equal("[PER_2]", occurrences[2].Placeholder)
}

func (s *PlaceholderSuite) TestStatistics() {
	a := NewAssigner()
	a.Assign(s.merged)
	stats := a.Statistics()

	s.Equal(3, stats.TotalEntities)
	s.Equal(1, stats.ByCategory[entity.PER])
	s.Equal(1, stats.ByCategory[entity.ORG])
	s.Equal(1, stats.ByCategory[entity.EMAIL])
	s.Equal(0, stats.ByCategory[entity.LOC])
	s.Len(stats.ByCategory, len(entity.Labels))

	sum := 0
	for _, n := range stats.ByCategory {
		sum += n
	}
	s.Equal(stats.TotalEntities, sum)
}

func (s *PlaceholderSuite) TestRebuild() {
	a := NewAssigner()
	occurrences := a.Assign(s.merged)

	// order of the occurrences must not matter
	occurrences[0], occurrences[3] = occurrences[3], occurrences[0]

	s.Equal("[PER_1] met [PER_1] and [ORG_1] at [EMAIL_1].", Rebuild(s.text, occurrences))
}

func TestRebuildWithoutOccurrences(t *testing.T) {
	assert.Equal(t, "", Rebuild("", nil))
	assert.Equal(t, "nothing to see", Rebuild("nothing to see", []entity.Occurrence{}))
}

func TestRebuildKeepsMultibyteText(t *testing.T) {
	text := "Grüße an Zoë Müller!"
	start := len("Grüße an ")
	end := start + len("Zoë Müller")
	out := Rebuild(text, []entity.Occurrence{{Placeholder: "[PER_1]", Start: start, End: end}})
	assert.Equal(t, "Grüße an [PER_1]!", out)
}
