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

// Package entity holds the types that flow through the anonymisation pipeline.
package entity

import (
	"fmt"
	"regexp"
)

type Label string

const (
	PER   Label = "PER"
	ORG   Label = "ORG"
	LOC   Label = "LOC"
	EMAIL Label = "EMAIL"
	PHONE Label = "PHONE"
	MISC  Label = "MISC"
)

// Labels is the fixed set of categories, in reporting order.
var Labels = []Label{PER, ORG, LOC, EMAIL, PHONE, MISC}

var knownLabels = map[Label]struct{}{
	PER:   {},
	ORG:   {},
	LOC:   {},
	EMAIL: {},
	PHONE: {},
	MISC:  {},
}

// NormalizeLabel maps a detector label onto the fixed set. Anything unknown becomes MISC.
func NormalizeLabel(label string) Label {
	if _, ok := knownLabels[Label(label)]; ok {
		return Label(label)
	}
	return MISC
}

// PlaceholderPattern matches a single placeholder token, e.g. [PER_1].
var PlaceholderPattern = regexp.MustCompile(`^\[[A-Z]+_\d+\]$`)

func FormatPlaceholder(label Label, index int) string {
	return fmt.Sprintf("[%s_%d]", label, index)
}

// RawSpan is a detector hit. Offsets are byte offsets into the text the detector was given.
type RawSpan struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// MergedSpan is a disjoint span in the coordinates of the full text.
type MergedSpan struct {
	Label Label  `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Occurrence is one substitution of a placeholder at a specific position.
type Occurrence struct {
	Placeholder string `json:"placeholder"`
	Text        string `json:"text"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Label       Label  `json:"label"`
}

type Statistics struct {
	TotalEntities int           `json:"total_entities"`
	ByCategory    map[Label]int `json:"by_category"`
}

type Result struct {
	AnonymizedText string       `json:"anonymized_text"`
	Statistics     Statistics   `json:"statistics"`
	EntityMapping  []Occurrence `json:"entity_mapping"`
}

// Entity is an item of the plain extraction inventory.
type Entity struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Inventory groups extracted entities by label. Every label is present.
type Inventory map[Label][]Entity

func NewInventory() Inventory {
	inv := make(Inventory, len(Labels))
	for _, l := range Labels {
		inv[l] = []Entity{}
	}
	return inv
}
