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

// Package http_recogniser calls a named entity recognition service over HTTP.
package http_recogniser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

type OffsetUnit string

const (
	Runes OffsetUnit = "runes"
	Bytes OffsetUnit = "bytes"
)

type Config struct {
	Url        string
	OffsetUnit OffsetUnit `mapstructure:"offset_unit"`
	MinScore   float64    `mapstructure:"min_score"`
}

func New(conf Config, httpClient lib.HttpClient) *Recogniser {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if conf.OffsetUnit == "" {
		conf.OffsetUnit = Runes
	}
	return &Recogniser{
		Config:     conf,
		httpClient: httpClient,
	}
}

type Recogniser struct {
	Config
	httpClient lib.HttpClient
}

type request struct {
	Text string `json:"text"`
}

// response accepts both the "entities" and the "spans" shape of NER services.
type response struct {
	Entities []nerEntity `json:"entities"`
	Spans    []nerEntity `json:"spans"`
}

type nerEntity struct {
	EntityGroup string   `json:"entity_group"`
	Entity      string   `json:"entity"`
	Label       string   `json:"label"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Score       *float64 `json:"score"`
}

func (e nerEntity) label() string {
	label := e.EntityGroup
	if label == "" {
		label = e.Label
	}
	if label == "" {
		label = e.Entity
	}
	// token level tags such as B-PER and I-PER carry the label after the prefix
	if len(label) > 2 && (label[:2] == "B-" || label[:2] == "I-") {
		label = label[2:]
	}
	return strings.ToUpper(label)
}

// Recognise posts the fragment to the service. Any transport failure, unexpected status or
// undecodable body is an error: a fragment the service could not process must not be
// reported as free of entities.
func (r *Recogniser) Recognise(ctx context.Context, fragment string) ([]entity.RawSpan, error) {
	body, err := json.Marshal(request{Text: fragment})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recogniser request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recogniser response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recogniser returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var nerResponse response
	if err := json.Unmarshal(b, &nerResponse); err != nil {
		return nil, fmt.Errorf("recogniser response: %w", err)
	}

	toBytes := func(i int) int { return i }
	if r.OffsetUnit == Runes {
		toBytes = runeOffsets(fragment)
	}

	var spans []entity.RawSpan
	for _, e := range append(nerResponse.Entities, nerResponse.Spans...) {
		if e.Score != nil && *e.Score < r.MinScore {
			continue
		}
		spans = append(spans, entity.RawSpan{
			Label: e.label(),
			Start: toBytes(e.Start),
			End:   toBytes(e.End),
		})
	}
	return spans, nil
}

// runeOffsets maps rune offsets into text onto byte offsets. Offsets beyond the end of text
// are left beyond it, so they are dropped later like any other span outside the text.
func runeOffsets(text string) func(int) int {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	return func(r int) int {
		if r < 0 {
			return r
		}
		if r >= len(offsets) {
			return len(text) + r - (len(offsets) - 1)
		}
		return offsets[r]
	}
}
