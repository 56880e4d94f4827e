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

// Package dict reads gazetteers: tab separated files of known entity names and their labels.
package dict

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

/**
	Entry is one line of a gazetteer. The label is the last column and every other column is a
	synonym for the same entity, e.g.

		Acme Corp	Acme Corporation	ORG

	Empty lines and lines starting with '#' are skipped.
**/
type Entry struct {
	Synonyms []string
	Label    string
}

// Read streams the entries of the gazetteer. The error channel receives nil once the input
// is exhausted, or the first error found.
func Read(r io.Reader) (chan Entry, chan error) {
	entries := make(chan Entry)
	errors := make(chan error)
	go read(r, entries, errors)
	return entries, errors
}

func read(r io.Reader, entries chan Entry, errors chan error) {
	scn := bufio.NewScanner(r)
	lineNumber := 0

	for scn.Scan() {
		lineNumber++
		line := strings.TrimRight(scn.Text(), "\r")

		// skip empty lines and commented out lines.
		if len(strings.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}

		row := strings.Split(line, "\t")
		if len(row) < 2 {
			errors <- fmt.Errorf("line %d: expected a term and a label separated by a tab", lineNumber)
			return
		}

		label := strings.ToUpper(strings.TrimSpace(row[len(row)-1]))
		if label == "" {
			errors <- fmt.Errorf("line %d: empty label", lineNumber)
			return
		}

		synonyms := make([]string, 0, len(row)-1)
		for _, synonym := range row[:len(row)-1] {
			if synonym = strings.TrimSpace(synonym); synonym != "" {
				synonyms = append(synonyms, synonym)
			}
		}

		entries <- Entry{
			Synonyms: synonyms,
			Label:    label,
		}
	}
	errors <- scn.Err()
}

// ReadWithCallback reads the gazetteer and executes the onEntry callback for each Entry.
// The onEOF callback is executed when there are no more entries.
func ReadWithCallback(r io.Reader, onEntry func(entry Entry) error, onEOF func() error) error {
	entries, errors := Read(r)

Listen:
	for {
		select {
		case err := <-errors:
			if err != nil {
				return err
			}
			break Listen
		case entry := <-entries:
			if err := onEntry(entry); err != nil {
				return err
			}
		}
	}

	if onEOF != nil {
		return onEOF()
	}

	return nil
}
