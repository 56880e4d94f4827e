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

package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var TokenDelimiters = map[byte]struct{}{
	'(':  {},
	')':  {},
	'{':  {},
	'}':  {},
	'[':  {},
	']':  {},
	'"':  {},
	'\'': {},
	':':  {},
	';':  {},
	',':  {},
	'.':  {},
	'?':  {},
	'!':  {},
}

func IsTokenDelimiter(b byte) bool {
	_, ok := TokenDelimiters[b]
	return ok
}

// Trim removes quotes, brackets and punctuation from both ends of token and moves its
// offsets to match. boundary is true when something was removed from the end, which marks
// the end of a clause: compound terms never run across it.
func Trim(token Token) (trimmed Token, boundary bool) {
	for len(token.Text) > 0 && IsTokenDelimiter(token.Text[len(token.Text)-1]) {
		token.Text = token.Text[:len(token.Text)-1]
		token.End--
		boundary = true
	}
	for len(token.Text) > 0 && IsTokenDelimiter(token.Text[0]) {
		token.Text = token.Text[1:]
		token.Start++
	}
	if token.Text == "" {
		token.End = token.Start
	}
	return token, boundary
}

// Normalize folds a term to its lookup key: NFKC normalised and lower-cased.
func Normalize(term string) string {
	return strings.ToLower(norm.NFKC.String(term))
}
