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

// Package restore reverses an anonymisation given the anonymised text and its entity mapping.
package restore

import (
	"sort"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

// Restore replaces placeholders in anonymized with the original text from mapping.
//
// When anonymized is exactly what the mapping produced, every placeholder sits at a location
// derived from the original offsets and the text is rebuilt by position, so original content
// that happens to look like a placeholder is never touched. Otherwise the placeholders are
// substituted textually, longest first, in a single pass.
func Restore(anonymized string, mapping []entity.Occurrence) string {
	if len(mapping) == 0 {
		return anonymized
	}
	if restored, ok := restorePositional(anonymized, mapping); ok {
		return restored
	}
	return restoreTextual(anonymized, mapping)
}

func restorePositional(anonymized string, mapping []entity.Occurrence) (string, bool) {
	sorted := make([]entity.Occurrence, len(mapping))
	copy(sorted, mapping)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	b.Grow(len(anonymized))
	// shift is how far the anonymised text has drifted from the original at this point.
	shift := 0
	last := 0
	prevEnd := 0
	for _, o := range sorted {
		if o.Start < prevEnd || o.End < o.Start || len(o.Text) != o.End-o.Start {
			return "", false
		}
		pos := o.Start + shift
		end := pos + len(o.Placeholder)
		if pos < last || end > len(anonymized) || anonymized[pos:end] != o.Placeholder {
			return "", false
		}
		b.WriteString(anonymized[last:pos])
		b.WriteString(o.Text)
		last = end
		prevEnd = o.End
		shift += len(o.Placeholder) - (o.End - o.Start)
	}
	b.WriteString(anonymized[last:])
	return b.String(), true
}

func restoreTextual(anonymized string, mapping []entity.Occurrence) string {
	originals := make(map[string]string, len(mapping))
	for _, o := range mapping {
		if _, ok := originals[o.Placeholder]; !ok {
			originals[o.Placeholder] = o.Text
		}
	}

	placeholders := make([]string, 0, len(originals))
	for ph := range originals {
		placeholders = append(placeholders, ph)
	}
	sort.Slice(placeholders, func(i, j int) bool {
		if len(placeholders[i]) != len(placeholders[j]) {
			return len(placeholders[i]) > len(placeholders[j])
		}
		return placeholders[i] < placeholders[j]
	})

	pairs := make([]string, 0, 2*len(placeholders))
	for _, ph := range placeholders {
		if ph == "" {
			continue
		}
		pairs = append(pairs, ph, originals[ph])
	}
	return strings.NewReplacer(pairs...).Replace(anonymized)
}
