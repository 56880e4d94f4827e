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

// Package regexer recognises entities with labelled regular expressions.
package regexer

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gopkg.in/yaml.v2"
)

type pattern struct {
	label  string
	regexp *regexp.Regexp
}

type Recogniser struct {
	patterns []pattern
}

// New compiles the label to expression map. Labels are matched in alphabetical order.
func New(regexps map[string]string) (*Recogniser, error) {
	labels := make([]string, 0, len(regexps))
	for label := range regexps {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	r := &Recogniser{patterns: make([]pattern, 0, len(labels))}
	for _, label := range labels {
		re, err := regexp.Compile(regexps[label])
		if err != nil {
			return nil, fmt.Errorf("regexp for %s: %w", label, err)
		}
		r.patterns = append(r.patterns, pattern{label: label, regexp: re})
	}
	return r, nil
}

// Load reads a yaml map of label to regular expression, e.g.
//
//	LOC: '\b[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}\b'
func Load(path string) (*Recogniser, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var regexpStringMap map[string]string
	if err := yaml.Unmarshal(b, &regexpStringMap); err != nil {
		return nil, err
	}
	return New(regexpStringMap)
}

// Recognise returns a span for every non-empty match of every expression.
func (r *Recogniser) Recognise(_ context.Context, fragment string) ([]entity.RawSpan, error) {
	var spans []entity.RawSpan
	for _, p := range r.patterns {
		for _, m := range p.regexp.FindAllStringIndex(fragment, -1) {
			if m[0] == m[1] {
				continue
			}
			spans = append(spans, entity.RawSpan{Label: p.label, Start: m[0], End: m[1]})
		}
	}
	return spans, nil
}
