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

package merge

import (
	"sort"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

/**
	Merge resolves overlapping and touching spans into disjoint spans over text.

	Spans are ordered by start, longest first on a tie, so the longest span starting at a
	position seeds the merged region and its label wins. Any span starting at or before the
	end of the current region extends it (a union, so chains of overlaps collapse into one).
	Offsets must lie within text.
**/
func Merge(spans []entity.RawSpan, text string) []entity.MergedSpan {
	if len(spans) == 0 {
		return []entity.MergedSpan{}
	}

	sorted := make([]entity.RawSpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	merged := make([]entity.MergedSpan, 0, len(sorted))
	current := sorted[0]
	for _, span := range sorted[1:] {
		if span.Start <= current.End {
			if span.End > current.End {
				current.End = span.End
			}
			continue
		}
		merged = append(merged, finalize(current, text))
		current = span
	}
	merged = append(merged, finalize(current, text))

	return merged
}

func finalize(span entity.RawSpan, text string) entity.MergedSpan {
	return entity.MergedSpan{
		Label: entity.NormalizeLabel(span.Label),
		Start: span.Start,
		End:   span.End,
		Text:  text[span.Start:span.End],
	}
}
