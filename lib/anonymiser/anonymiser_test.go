package anonymiser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/detect"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/testhelpers"
)

type AnonymiserSuite struct {
	suite.Suite
	anonymiser *Anonymiser
}

func TestAnonymiserSuite(t *testing.T) {
	suite.Run(t, new(AnonymiserSuite))
}

func (s *AnonymiserSuite) SetupTest() {
	gazetteer := testhelpers.Gazetteer{
		"John Doe":   "PER",
		"John Smith": "PER",
		"Smithers":   "PER",
		"Acme Corp":  "ORG",
		"Acme":       "ORG",
		"London":     "LOC",
		"Paris":      "GPE",
	}
	s.anonymiser = New(detect.NewCollector(gazetteer), WithLogger(zerolog.Nop()))
}

func (s *AnonymiserSuite) TestEmptyText() {
	res, err := s.anonymiser.Anonymize(context.Background(), "")
	s.Require().NoError(err)

	s.Equal("", res.AnonymizedText)
	s.Equal(0, res.Statistics.TotalEntities)
	s.NotNil(res.EntityMapping)
	s.Empty(res.EntityMapping)
}

func (s *AnonymiserSuite) TestNoEntities() {
	text := "hello world! this is a test without names or numbers."
	res, err := s.anonymiser.Anonymize(context.Background(), text)
	s.Require().NoError(err)

	s.Equal(text, res.AnonymizedText)
	s.Equal(0, res.Statistics.TotalEntities)
}

func (s *AnonymiserSuite) TestDuplicateEntityReusesPlaceholder() {
	res, err := s.anonymiser.Anonymize(context.Background(), "John Doe met John Doe at the office.")
	s.Require().NoError(err)

	s.Equal("[PER_1] met [PER_1] at the office.", res.AnonymizedText)
	s.Equal(1, res.Statistics.TotalEntities)
	s.Equal(1, res.Statistics.ByCategory[entity.PER])
	s.Require().Len(res.EntityMapping, 2)
	s.Equal(0, res.EntityMapping[0].Start)
	s.Equal(13, res.EntityMapping[1].Start)
}

func (s *AnonymiserSuite) TestDistinctAdjacentEntities() {
	res, err := s.anonymiser.Anonymize(context.Background(), "John Smith and Smithers attended the meeting.")
	s.Require().NoError(err)

	s.Regexp(`\[PER_\d+\]\s+and\s+\[PER_\d+\]\s+attended the meeting\.`, res.AnonymizedText)
	s.NotContains(res.AnonymizedText, "John Smith")
	s.NotContains(res.AnonymizedText, "Smithers")
	s.Equal(2, res.Statistics.ByCategory[entity.PER])
}

func (s *AnonymiserSuite) TestUnknownLabelBecomesMisc() {
	res, err := s.anonymiser.Anonymize(context.Background(), "We flew to Paris.")
	s.Require().NoError(err)

	s.Equal("We flew to [MISC_1].", res.AnonymizedText)
	s.Equal(1, res.Statistics.ByCategory[entity.MISC])
}

func (s *AnonymiserSuite) TestRoundTripAcrossFragments() {
	text := strings.Repeat("Smithers of Acme wrote to john.doe@example.com from London. ", 4) +
		"\n\nCall Smithers on +44 20 7946 0958 before Friday.\n\n" +
		strings.Repeat("Nothing to see in this paragraph at all. ", 5)

	res, err := s.anonymiser.Anonymize(context.Background(), text)
	s.Require().NoError(err)

	for _, name := range []string{"Acme", "john.doe@example.com", "London", "Smithers", "7946"} {
		s.NotContains(res.AnonymizedText, name)
	}
	for _, o := range res.EntityMapping {
		s.Equal(text[o.Start:o.End], o.Text)
		s.Regexp(entity.PlaceholderPattern, o.Placeholder)
	}
	for i := 1; i < len(res.EntityMapping); i++ {
		s.GreaterOrEqual(res.EntityMapping[i].Start, res.EntityMapping[i-1].End)
	}

	total := 0
	for _, n := range res.Statistics.ByCategory {
		total += n
	}
	s.Equal(res.Statistics.TotalEntities, total)

	s.Equal(text, s.anonymiser.Deanonymize(context.Background(), res.AnonymizedText, res.EntityMapping))
}

func (s *AnonymiserSuite) TestExtract() {
	inventory, err := s.anonymiser.Extract(context.Background(), "John Doe from Acme Corp, mail john@acme.io.")
	s.Require().NoError(err)

	for _, l := range entity.Labels {
		s.Contains(inventory, l)
		s.NotNil(inventory[l])
	}
	s.Equal([]entity.Entity{{Text: "John Doe", Start: 0, End: 8}}, inventory[entity.PER])
	s.Equal([]entity.Entity{{Text: "Acme Corp", Start: 14, End: 23}}, inventory[entity.ORG])
	s.Equal([]entity.Entity{{Text: "john@acme.io.", Start: 30, End: 43}}, inventory[entity.EMAIL])
	s.Empty(inventory[entity.LOC])
}

func TestBlocklistedSpansAreKept(t *testing.T) {
	a := New(
		detect.NewCollector(testhelpers.Gazetteer{"Acme Corp": "ORG", "Jane": "PER"}),
		WithLogger(zerolog.Nop()),
		WithBlocklist(blocklist.Blocklist{CaseInsensitive: map[string]bool{"acme corp": true}}),
	)

	res, err := a.Anonymize(context.Background(), "Jane works at ACME CORP and Acme Corp.")
	require.NoError(t, err)
	assert.Equal(t, "[PER_1] works at ACME CORP and Acme Corp.", res.AnonymizedText)
}

func TestRecogniserFailurePropagates(t *testing.T) {
	failure := errors.New("recogniser unavailable")
	r := &testhelpers.Recogniser{}
	r.On("Recognise", mock.Anything, mock.Anything).Return(nil, failure)

	a := New(detect.NewCollector(r), WithLogger(zerolog.Nop()))

	res, err := a.Anonymize(context.Background(), "John Doe")
	assert.Same(t, failure, err)
	assert.Nil(t, res)

	inventory, err := a.Extract(context.Background(), "John Doe")
	assert.Same(t, failure, err)
	assert.Nil(t, inventory)
}

func TestOutOfRangeSpansAreDropped(t *testing.T) {
	r := &testhelpers.Recogniser{}
	r.On("Recognise", mock.Anything, "short").Return([]entity.RawSpan{
		{Label: "PER", Start: 2, End: 40},
		{Label: "PER", Start: 3, End: 3},
		{Label: "PER", Start: 0, End: 5},
	}, nil)

	a := New(detect.NewCollector(r), WithLogger(zerolog.Nop()))
	inventory, err := a.Extract(context.Background(), "short")

	require.NoError(t, err)
	assert.Equal(t, []entity.Entity{{Text: "short", Start: 0, End: 5}}, inventory[entity.PER])
}
