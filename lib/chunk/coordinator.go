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

// Package chunk splits long text into bounded fragments and maps fragment offsets back onto it.
package chunk

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

// CollectFunc returns the spans found in a fragment, in fragment coordinates.
type CollectFunc func(ctx context.Context, fragment string) ([]entity.RawSpan, error)

type Coordinator struct {
	Splitter Splitter
}

func NewCoordinator(splitter Splitter) *Coordinator {
	if splitter == nil {
		splitter = NewMarkdownSplitter(DefaultChunkSize)
	}
	return &Coordinator{Splitter: splitter}
}

/**
	Collect runs collect over every fragment of text, in order, and returns the spans in the
	coordinates of text.

	Each fragment is searched for from the end of the previous one, never before it, so text
	that repeats is attributed to the right place. A fragment that cannot be found is assumed
	to start at the current position. Spans that do not fit inside text after projection are
	dropped.
**/
func (c *Coordinator) Collect(ctx context.Context, text string, collect CollectFunc) ([]entity.RawSpan, error) {
	var spans []entity.RawSpan
	pointer := 0
	for _, fragment := range c.Splitter.Split(text) {
		offset := pointer
		if i := strings.Index(text[pointer:], fragment); i >= 0 {
			offset = pointer + i
		} else {
			log.Debug().Int("pointer", pointer).Msg("fragment not found in text, using current position")
		}

		found, err := collect(ctx, fragment)
		if err != nil {
			return nil, err
		}
		for _, s := range found {
			s.Start += offset
			s.End += offset
			if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
				log.Debug().Str("label", s.Label).Int("start", s.Start).Int("end", s.End).Msg("dropping span outside text")
				continue
			}
			spans = append(spans, s)
		}

		pointer = offset + len(fragment)
		if pointer > len(text) {
			pointer = len(text)
		}
	}
	return spans, nil
}
