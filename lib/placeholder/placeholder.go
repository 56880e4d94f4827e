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

// Package placeholder assigns placeholder tokens to merged spans and rebuilds the text around them.
package placeholder

import (
	"sort"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

type identity struct {
	text  string
	label entity.Label
}

// Assigner issues placeholders for a single anonymisation call. It must not be reused
// across calls: the counters and identity map are the call's state.
type Assigner struct {
	counters     map[entity.Label]int
	placeholders map[identity]string
}

func NewAssigner() *Assigner {
	counters := make(map[entity.Label]int, len(entity.Labels))
	for _, l := range entity.Labels {
		counters[l] = 1
	}
	return &Assigner{
		counters:     counters,
		placeholders: make(map[identity]string),
	}
}

// Assign returns one occurrence per merged span. Spans with the same text and label share a
// placeholder; each occurrence keeps its own offsets.
func (a *Assigner) Assign(merged []entity.MergedSpan) []entity.Occurrence {
	occurrences := make([]entity.Occurrence, 0, len(merged))
	for _, span := range merged {
		key := identity{text: span.Text, label: span.Label}
		ph, ok := a.placeholders[key]
		if !ok {
			ph = entity.FormatPlaceholder(span.Label, a.counters[span.Label])
			a.placeholders[key] = ph
			a.counters[span.Label]++
		}
		occurrences = append(occurrences, entity.Occurrence{
			Placeholder: ph,
			Text:        span.Text,
			Start:       span.Start,
			End:         span.End,
			Label:       span.Label,
		})
	}
	return occurrences
}

// Statistics counts distinct placeholders per label.
func (a *Assigner) Statistics() entity.Statistics {
	stats := entity.Statistics{ByCategory: make(map[entity.Label]int, len(entity.Labels))}
	for _, l := range entity.Labels {
		n := a.counters[l] - 1
		stats.ByCategory[l] = n
		stats.TotalEntities += n
	}
	return stats
}

// Rebuild substitutes every occurrence's placeholder into text. Characters outside the
// occurrences are copied unchanged. Occurrences must be disjoint and lie within text.
func Rebuild(text string, occurrences []entity.Occurrence) string {
	sorted := make([]entity.Occurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, o := range sorted {
		b.WriteString(text[last:o.Start])
		b.WriteString(o.Placeholder)
		last = o.End
	}
	b.WriteString(text[last:])
	return b.String()
}
