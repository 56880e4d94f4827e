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

// Package dictionary recognises entities by looking up the words of a text, and runs of
// consecutive words, in a gazetteer.
package dictionary

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/text"
)

const DefaultCompoundTokenLength = 5

type Recogniser struct {
	client              remote.Client
	tokenCache          local.Client
	compoundTokenLength int
}

type Option func(*Recogniser)

// WithCompoundTokenLength sets the longest run of words looked up as a single term.
func WithCompoundTokenLength(n int) Option {
	return func(r *Recogniser) {
		if n > 0 {
			r.compoundTokenLength = n
		}
	}
}

// WithTokenCache remembers every lookup, hit or miss, in c. The cache is never evicted.
func WithTokenCache(c local.Client) Option {
	return func(r *Recogniser) {
		r.tokenCache = c
	}
}

func New(client remote.Client, opts ...Option) *Recogniser {
	r := &Recogniser{
		client:              client,
		compoundTokenLength: DefaultCompoundTokenLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// candidate is a word or run of words, keyed by its normalised form.
type candidate struct {
	key   string
	start int
	end   int
}

func (r *Recogniser) Recognise(ctx context.Context, fragment string) ([]entity.RawSpan, error) {
	candidates, err := r.compoundTokens(fragment)
	if err != nil {
		return nil, err
	}

	var spans []entity.RawSpan
	byKey := make(map[string][]candidate, len(candidates))
	pipe := r.client.NewGetPipeline(len(candidates))

	for _, c := range candidates {
		if r.tokenCache != nil {
			if lookup, ok := r.tokenCache.Get(c.key); ok {
				if lookup != nil {
					spans = append(spans, entity.RawSpan{Label: lookup.Dictionary, Start: c.start, End: c.end})
				}
				continue
			}
		}
		if _, queued := byKey[c.key]; !queued {
			pipe.Get(c.key)
		}
		byKey[c.key] = append(byKey[c.key], c)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = pipe.ExecGet(func(key string, lookup *cache.Lookup) error {
		if r.tokenCache != nil {
			r.tokenCache.Set(key, lookup)
		}
		if lookup == nil {
			return nil
		}
		for _, c := range byKey[key] {
			spans = append(spans, entity.RawSpan{Label: lookup.Dictionary, Start: c.start, End: c.end})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
	log.Debug().Int("candidates", len(candidates)).Int("hits", len(spans)).Msg("dictionary lookup")
	return spans, nil
}

/**
	compoundTokens returns every word of fragment plus every run of up to compoundTokenLength
	consecutive words. A run never crosses punctuation: a word ending in a delimiter closes
	the run, and a word starting with one opens a new run.
**/
func (r *Recogniser) compoundTokens(fragment string) ([]candidate, error) {
	var candidates []candidate
	var history []text.Token
	var keys []string

	err := text.Tokenize(fragment, func(token text.Token) error {
		trimmed, boundary := text.Trim(token)
		if trimmed.Text == "" {
			history, keys = nil, nil
			return nil
		}
		if trimmed.Start != token.Start {
			history, keys = nil, nil
		}

		if len(history) == r.compoundTokenLength {
			history, keys = history[1:], keys[1:]
		}
		history = append(history, trimmed)
		keys = append(keys, text.Normalize(trimmed.Text))

		for i, first := range history {
			candidates = append(candidates, candidate{
				key:   strings.Join(keys[i:], " "),
				start: first.Start,
				end:   trimmed.End,
			})
		}

		if boundary {
			history, keys = nil, nil
		}
		return nil
	}, true)

	return candidates, err
}
