package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

// slowPipeline ignores cancellation and answers after delay.
type slowPipeline struct {
	delay time.Duration
}

func (s slowPipeline) Anonymize(context.Context, string) (*entity.Result, error) {
	time.Sleep(s.delay)
	return &entity.Result{AnonymizedText: "[PER_1]"}, nil
}

func (s slowPipeline) Extract(context.Context, string) (entity.Inventory, error) {
	time.Sleep(s.delay)
	return entity.NewInventory(), nil
}

func (s slowPipeline) Deanonymize(context.Context, string, []entity.Occurrence) string {
	time.Sleep(s.delay)
	return "John Doe"
}

type ControllerSuite struct {
	suite.Suite
	controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.controller = newController(slowPipeline{delay: 50 * time.Millisecond}, 1, 5*time.Millisecond)
}

// waitForWorker blocks until the abandoned worker has returned its slot.
func (s *ControllerSuite) waitForWorker() {
	s.Require().NoError(s.gate.Acquire(context.Background(), 1))
	s.gate.Release(1)
}

func (s *ControllerSuite) Test_controller_AnonymizeText_timeout() {
	res, err := s.AnonymizeText(context.Background(), "John Doe")
	s.ErrorIs(err, errTimeout)
	s.Nil(res)
	s.waitForWorker()
}

func (s *ControllerSuite) Test_controller_AnonymizeFile_timeout() {
	path := filepath.Join(s.T().TempDir(), "notes.txt")
	s.Require().NoError(os.WriteFile(path, []byte("John Doe"), 0600))

	res, err := s.AnonymizeFile(context.Background(), path)
	s.ErrorIs(err, errTimeout)
	s.Nil(res)
	s.waitForWorker()
}

func (s *ControllerSuite) Test_controller_ExtractText_timeout() {
	inventory, err := s.ExtractText(context.Background(), "John Doe")
	s.ErrorIs(err, errTimeout)
	s.Nil(inventory)
	s.waitForWorker()
}

func (s *ControllerSuite) Test_controller_Deanonymize_timeout() {
	restored, err := s.Deanonymize(context.Background(), `{"anonymized_text":"[PER_1]","entity_mapping":[]}`)
	s.ErrorIs(err, errTimeout)
	s.Empty(restored)
	s.waitForWorker()
}

func (s *ControllerSuite) Test_controller_AnonymizeText_within_timeout() {
	c := newController(slowPipeline{delay: time.Millisecond}, 1, time.Second)

	res, err := c.AnonymizeText(context.Background(), "John Doe")
	s.Require().NoError(err)
	s.Equal("[PER_1]", res.AnonymizedText)
}
