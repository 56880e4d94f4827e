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

package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the target fragment size in characters.
const DefaultChunkSize = 150

// Splitter cuts text into an ordered sequence of bounded fragments. Every fragment must be a
// substring of the text, and fragments must appear in text order.
type Splitter interface {
	Split(text string) []string
}

// markdownSeparators are tried in order; the first one present in the text is used and the
// rest are kept for pieces that are still too long. The empty pattern splits into characters.
var markdownSeparators = []*regexp.Regexp{
	regexp.MustCompile(`\n#{1,6} `),
	regexp.MustCompile("```\n"),
	regexp.MustCompile(`\n\*\*\*+\n`),
	regexp.MustCompile(`\n---+\n`),
	regexp.MustCompile(`\n___+\n`),
	regexp.MustCompile(`\n\n`),
	regexp.MustCompile(`\n`),
	regexp.MustCompile(` `),
	nil,
}

/**
	RecursiveSplitter splits on the coarsest separator present (markdown headings and blocks,
	then paragraphs, lines, words and finally characters), recursing into pieces that are
	still larger than ChunkSize, and greedily packs neighbouring pieces back together up to
	ChunkSize characters. Separators stay attached to the piece that follows them and every
	fragment is trimmed of surrounding whitespace, so fragments are substrings of the input.
**/
type RecursiveSplitter struct {
	ChunkSize int
	Overlap   int
}

func NewMarkdownSplitter(chunkSize int) RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return RecursiveSplitter{ChunkSize: chunkSize}
}

func (s RecursiveSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, markdownSeparators)
}

func (s RecursiveSplitter) split(text string, separators []*regexp.Regexp) []string {
	separator := separators[len(separators)-1]
	var remaining []*regexp.Regexp
	for i, sep := range separators {
		if sep == nil {
			separator = nil
			break
		}
		if sep.MatchString(text) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var fragments []string
	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			fragments = append(fragments, s.pack(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			fragments = append(fragments, piece)
		} else {
			fragments = append(fragments, s.split(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		fragments = append(fragments, s.pack(good)...)
	}
	return fragments
}

// pack concatenates consecutive pieces while they fit in ChunkSize.
func (s RecursiveSplitter) pack(pieces []string) []string {
	var fragments []string
	var current []string
	total := 0
	for _, piece := range pieces {
		n := length(piece)
		if total+n > s.ChunkSize && len(current) > 0 {
			if f := strings.TrimSpace(strings.Join(current, "")); f != "" {
				fragments = append(fragments, f)
			}
			for len(current) > 0 && (total > s.Overlap || total+n > s.ChunkSize) {
				total -= length(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if f := strings.TrimSpace(strings.Join(current, "")); f != "" {
		fragments = append(fragments, f)
	}
	return fragments
}

// splitKeepingSeparator splits text on sep, attaching each separator to the following piece.
// A nil separator splits text into characters. Empty pieces are dropped.
func splitKeepingSeparator(text string, sep *regexp.Regexp) []string {
	if sep == nil {
		pieces := make([]string, 0, len(text))
		for len(text) > 0 {
			_, size := utf8.DecodeRuneInString(text)
			pieces = append(pieces, text[:size])
			text = text[size:]
		}
		return pieces
	}

	var pieces []string
	last := 0
	for _, m := range sep.FindAllStringIndex(text, -1) {
		if m[0] > last {
			pieces = append(pieces, text[last:m[0]])
		}
		last = m[0]
	}
	if last < len(text) {
		pieces = append(pieces, text[last:])
	}
	return pieces
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
