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

package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// extractDocx returns the non-blank paragraphs of the document body, one per line.
func extractDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	part, err := openPart(&zr.Reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	defer part.Close()

	paragraphs, err := readParagraphs(part, "")
	if err != nil {
		return "", err
	}
	return strings.Join(nonBlank(paragraphs), "\n"), nil
}

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx returns the text of every non-blank shape, slide by slide, one shape per line.
// The paragraphs of a shape are separated by newlines.
func extractPptx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	type slide struct {
		number int
		file   *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slideName.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{number: n, file: f})
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var shapes []string
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", err
		}
		slideShapes, err := readShapes(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.number, err)
		}
		shapes = append(shapes, nonBlank(slideShapes)...)
	}
	return strings.Join(shapes, "\n"), nil
}

func openPart(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%s not found", name)
}

/**
	readParagraphs walks WordprocessingML or DrawingML and returns the text of every "p"
	element. Text comes from "t" elements; "tab" and "br" elements inside a run become a tab
	and a newline. A paragraph nested in another, as in a text box, is returned on its own.

	If within is set, only paragraphs inside elements of that name are read and each such
	element is returned as one entry, its paragraphs joined by newlines.
**/
func readParagraphs(r io.Reader, within string) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		results    []string
		paragraphs []string
		open       []*strings.Builder
		depth      int // of the enclosing "within" element
		inRun      int
		inText     bool
	)

	write := func(s string) {
		if len(open) > 0 {
			open[len(open)-1].WriteString(s)
		}
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if within != "" && t.Name.Local == within {
				depth++
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "r":
				inRun++
			case "t":
				inText = inRun > 0 || within != ""
			case "tab":
				if inRun > 0 {
					write("\t")
				}
			case "br", "cr":
				if inRun > 0 || within != "" {
					write("\n")
				}
			}
		case xml.EndElement:
			if within != "" && t.Name.Local == within {
				depth--
				if depth == 0 {
					results = append(results, strings.Join(paragraphs, "\n"))
					paragraphs = nil
				}
				continue
			}
			switch t.Name.Local {
			case "p":
				if len(open) == 0 {
					continue
				}
				paragraph := open[len(open)-1].String()
				open = open[:len(open)-1]
				if within == "" || depth > 0 {
					paragraphs = append(paragraphs, paragraph)
				}
			case "r":
				inRun--
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}

	if within == "" {
		return paragraphs, nil
	}
	return results, nil
}

func readShapes(r io.Reader) ([]string, error) {
	return readParagraphs(r, "sp")
}

func nonBlank(items []string) []string {
	res := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			res = append(res, item)
		}
	}
	return res
}
