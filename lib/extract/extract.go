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

// Package extract pulls the plain text out of the document formats the anonymiser accepts.
package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
)

type extractor func(path string) (string, error)

var extractors = map[string]extractor{
	".txt":  extractTxt,
	".pdf":  extractPdf,
	".docx": extractDocx,
	".pptx": extractPptx,
	".xlsx": extractXlsx,
}

// SupportedExtensions returns the accepted file extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supported reports whether the extension of path, in any case, is accepted.
func Supported(path string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract returns the text of the file at path, chosen by its extension. Unsupported
// extensions and files which cannot be read or parsed give a *lib.InputFormatError.
func Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extract, ok := extractors[ext]
	if !ok {
		log.Error().Str("path", path).Str("extension", ext).Msg("unsupported file extension")
		return "", lib.NewInputFormatError(fmt.Sprintf("unsupported file extension %q", ext), nil)
	}

	text, err := extract(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("file reading error")
		return "", lib.NewInputFormatError("file reading error", err)
	}

	log.Info().Str("path", path).Int("bytes", len(text)).Msg("completed extraction")
	return text, nil
}
