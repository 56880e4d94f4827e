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

package blocklist

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gopkg.in/yaml.v2"
)

// Blocklist holds terms which must never be anonymised, such as the organisation's own name.
type Blocklist struct {
	CaseSensitive   map[string]bool
	CaseInsensitive map[string]bool
}

// Allowed returns true if the term is not blocklisted.
func (blocklist Blocklist) Allowed(term string) bool {
	if _, ok := blocklist.CaseSensitive[term]; ok {
		return false
	}

	if _, ok := blocklist.CaseInsensitive[strings.ToLower(term)]; ok {
		return false
	}

	return true
}

// FilterSpans drops spans whose text in source is blocklisted. Offsets must lie within source.
func (blocklist Blocklist) FilterSpans(spans []entity.RawSpan, source string) []entity.RawSpan {
	if len(blocklist.CaseSensitive) == 0 && len(blocklist.CaseInsensitive) == 0 {
		return spans
	}
	res := make([]entity.RawSpan, 0, len(spans))
	for _, span := range spans {
		if blocklist.Allowed(source[span.Start:span.End]) {
			res = append(res, span)
		}
	}
	return res
}

// Load returns an unmarshalled blocklist from a YAML file at the given path.
func Load(path string) (*Blocklist, error) {

	bytes, err := os.ReadFile(path)
	if err != nil {
		log.Error().Str("path", path).Msg("could not find blocklist")
		return nil, err
	}

	type yamlBlocklist struct {
		CaseSensitive   []string `yaml:"case_sensitive"`
		CaseInsensitive []string `yaml:"case_insensitive"`
	}

	yamlBl := yamlBlocklist{}
	if err := yaml.Unmarshal(bytes, &yamlBl); err != nil {
		log.Error().Str("path", path).Msg("could not load blocklist")
		return nil, err
	}

	res := Blocklist{
		CaseSensitive:   map[string]bool{},
		CaseInsensitive: map[string]bool{},
	}

	for _, v := range yamlBl.CaseSensitive {
		res.CaseSensitive[v] = true
	}
	for _, v := range yamlBl.CaseInsensitive {
		res.CaseInsensitive[strings.ToLower(v)] = true
	}

	log.Info().Str("path", path).Msg("blocklist set")

	return &res, nil
}
