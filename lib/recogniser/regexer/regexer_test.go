package regexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

type RecogniserSuite struct {
	suite.Suite
}

func TestRecogniserSuite(t *testing.T) {
	suite.Run(t, new(RecogniserSuite))
}

func (s *RecogniserSuite) TestRecognise() {
	r, err := New(map[string]string{
		"LOC": `\b[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}\b`,
		"ID":  `\bNI[0-9]{6}\b`,
	})
	s.Require().NoError(err)

	spans, err := r.Recognise(context.Background(), "Post to SW1A 1AA, ref NI123456 or NI12.")
	s.Require().NoError(err)
	s.Equal([]entity.RawSpan{
		{Label: "ID", Start: 22, End: 30},
		{Label: "LOC", Start: 8, End: 16},
	}, spans)
}

func (s *RecogniserSuite) TestEmptyMatchesAreSkipped() {
	r, err := New(map[string]string{"MISC": `x*`})
	s.Require().NoError(err)

	spans, err := r.Recognise(context.Background(), "abc")
	s.Require().NoError(err)
	s.Empty(spans)
}

func (s *RecogniserSuite) TestInvalidRegexp() {
	_, err := New(map[string]string{"PER": `(`})
	s.ErrorContains(err, "regexp for PER")
}

func (s *RecogniserSuite) TestLoad() {
	path := filepath.Join(s.T().TempDir(), "regexps.yml")
	s.Require().NoError(os.WriteFile(path, []byte("PHONE: '\\bext\\. ?\\d{3,5}\\b'\n"), 0600))

	r, err := Load(path)
	s.Require().NoError(err)

	spans, err := r.Recognise(context.Background(), "call ext. 4411")
	s.Require().NoError(err)
	s.Equal([]entity.RawSpan{{Label: "PHONE", Start: 5, End: 14}}, spans)
}

func (s *RecogniserSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "missing.yml"))
	s.Error(err)
}
