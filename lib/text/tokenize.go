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
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/segment"
)

const NonAlphaNumericChar = segment.None

// Token is a piece of text with byte offsets into the text it was cut from.
type Token struct {
	Text  string
	Start int
	End   int
}

/**
	Tokenize splits text into tokens and calls onToken for each token found, in order.

	exactMatch controls whether the tokens are split only on whitespace or not.
	E.g. with exactMatch, "some-text" is a single token. Without exact match, it is
	three tokens: "some", "-", "text".
**/
func Tokenize(text string, onToken func(Token) error, exactMatch bool) error {
	segmenter := segment.NewWordSegmenterDirect([]byte(text))
	buffer := bytes.NewBuffer([]byte{})

	position := 0
	tokenStart := 0

	flush := func() error {
		if buffer.Len() == 0 {
			return nil
		}
		token := Token{Text: buffer.String(), Start: tokenStart, End: tokenStart + buffer.Len()}
		buffer.Reset()
		return onToken(token)
	}

	for segmenter.Segment() {
		segmentBytes := segmenter.Bytes()

		if segmenter.Type() == NonAlphaNumericChar && isWhitespace(segmentBytes) {
			if err := flush(); err != nil {
				return err
			}
		} else {
			if buffer.Len() == 0 {
				tokenStart = position
			}
			buffer.Write(segmentBytes)

			if !exactMatch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		position += len(segmentBytes)
	}
	if err := segmenter.Err(); err != nil {
		return err
	}

	// if we have something in the buffer once the segmenter has finished, emit it
	return flush()
}

func isWhitespace(b []byte) bool {
	r, _ := utf8.DecodeRune(b)
	return unicode.IsSpace(r) || r < ' '
}
