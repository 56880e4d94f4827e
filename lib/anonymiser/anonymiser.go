/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package anonymiser ties span collection, merging, placeholder assignment and restoration
// together into the public operations.
package anonymiser

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/chunk"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/detect"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/merge"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/placeholder"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/restore"
)

// Anonymiser is immutable once built and safe for concurrent use. Each call keeps its own
// counters and placeholder map.
type Anonymiser struct {
	collector   *detect.Collector
	coordinator *chunk.Coordinator
	blocklist   blocklist.Blocklist
	logger      zerolog.Logger
}

type Option func(*Anonymiser)

func WithSplitter(splitter chunk.Splitter) Option {
	return func(a *Anonymiser) {
		a.coordinator = chunk.NewCoordinator(splitter)
	}
}

func WithBlocklist(bl blocklist.Blocklist) Option {
	return func(a *Anonymiser) {
		a.blocklist = bl
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Anonymiser) {
		a.logger = logger
	}
}

func New(collector *detect.Collector, opts ...Option) *Anonymiser {
	a := &Anonymiser{
		collector:   collector,
		coordinator: chunk.NewCoordinator(nil),
		logger:      log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Extract returns the entities found in text grouped by label, without placeholders.
// The whole text is given to the detectors in one piece.
func (a *Anonymiser) Extract(ctx context.Context, text string) (entity.Inventory, error) {
	return lib.Instrument(a.logger, "extract_sensitive_info", func() (entity.Inventory, error) {
		spans, err := a.collector.Collect(ctx, text)
		if err != nil {
			return nil, err
		}

		inventory := entity.NewInventory()
		for _, m := range merge.Merge(a.filter(spans, text), text) {
			inventory[m.Label] = append(inventory[m.Label], entity.Entity{
				Text:  m.Text,
				Start: m.Start,
				End:   m.End,
			})
		}
		return inventory, nil
	})
}

// Anonymize replaces every detected entity in text with a placeholder. Text is split into
// fragments for the detectors and the spans are merged across fragment boundaries.
func (a *Anonymiser) Anonymize(ctx context.Context, text string) (*entity.Result, error) {
	return lib.Instrument(a.logger, "anonymize_text", func() (*entity.Result, error) {
		spans, err := a.coordinator.Collect(ctx, text, a.collector.Collect)
		if err != nil {
			return nil, err
		}

		assigner := placeholder.NewAssigner()
		occurrences := assigner.Assign(merge.Merge(a.filter(spans, text), text))

		return &entity.Result{
			AnonymizedText: placeholder.Rebuild(text, occurrences),
			Statistics:     assigner.Statistics(),
			EntityMapping:  occurrences,
		}, nil
	})
}

// Deanonymize restores the original text from an anonymised text and its mapping.
func (a *Anonymiser) Deanonymize(_ context.Context, anonymized string, mapping []entity.Occurrence) string {
	restored, _ := lib.Instrument(a.logger, "deanonymize_text", func() (string, error) {
		return restore.Restore(anonymized, mapping), nil
	})
	return restored
}

// filter drops spans which fall outside text or cover blocklisted terms.
func (a *Anonymiser) filter(spans []entity.RawSpan, text string) []entity.RawSpan {
	valid := spans[:0:0]
	for _, s := range spans {
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
			a.logger.Debug().Str("label", s.Label).Int("start", s.Start).Int("end", s.End).Msg("dropping span outside text")
			continue
		}
		valid = append(valid, s)
	}
	return a.blocklist.FilterSpans(valid, text)
}
