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

// Package detect collects raw entity spans from a piece of text.
package detect

import (
	"context"
	"regexp"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser"
)

var (
	emailRegexp = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)
	phoneRegexp = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\(?\d{1,4}\)?[-.\s]?){1,4}\d{1,4}`)
)

// minPhoneDigits rejects short runs of numbers such as years or house numbers.
const minPhoneDigits = 6

// Collector runs the pattern matchers and the recogniser over a fragment of text.
// Spans may overlap and may carry labels outside the fixed set.
type Collector struct {
	Recogniser recogniser.Client
}

func NewCollector(r recogniser.Client) *Collector {
	return &Collector{Recogniser: r}
}

// Collect returns the raw spans in fragment coordinates. Recogniser errors are returned unchanged.
func (c *Collector) Collect(ctx context.Context, fragment string) ([]entity.RawSpan, error) {
	spans := append(Emails(fragment), Phones(fragment)...)
	if c == nil || c.Recogniser == nil {
		return spans, nil
	}

	recognised, err := c.Recogniser.Recognise(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return append(spans, recognised...), nil
}

func Emails(text string) []entity.RawSpan {
	var spans []entity.RawSpan
	for _, m := range emailRegexp.FindAllStringIndex(text, -1) {
		spans = append(spans, entity.RawSpan{Label: string(entity.EMAIL), Start: m[0], End: m[1]})
	}
	return spans
}

func Phones(text string) []entity.RawSpan {
	var spans []entity.RawSpan
	for _, m := range phoneRegexp.FindAllStringIndex(text, -1) {
		if countDigits(strings.TrimSpace(text[m[0]:m[1]])) < minPhoneDigits {
			continue
		}
		spans = append(spans, entity.RawSpan{Label: string(entity.PHONE), Start: m[0], End: m[1]})
	}
	return spans
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
