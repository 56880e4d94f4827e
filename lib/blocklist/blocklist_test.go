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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

var testBlocklist = Blocklist{
	CaseSensitive: map[string]bool{
		"caseSensitive": true,
	},
	CaseInsensitive: map[string]bool{
		"caseinsensitive": true,
	},
}

func TestBlocklist(t *testing.T) {
	assert.False(t, testBlocklist.Allowed("caseInsensitive"))
	assert.False(t, testBlocklist.Allowed("CASEINSENSITIVE"))

	assert.False(t, testBlocklist.Allowed("caseSensitive"))
	assert.True(t, testBlocklist.Allowed("CASESENSITIVE"))

	assert.True(t, testBlocklist.Allowed("non-blocklisted-term"))
}

func TestFilterSpans(t *testing.T) {
	source := "caseSensitive met CASEINSENSITIVE and Jane"
	spans := []entity.RawSpan{
		{Label: "PER", Start: 0, End: 13},
		{Label: "ORG", Start: 18, End: 33},
		{Label: "PER", Start: 38, End: 42},
	}

	assert.Equal(t, []entity.RawSpan{{Label: "PER", Start: 38, End: 42}}, testBlocklist.FilterSpans(spans, source))
	assert.Equal(t, spans, Blocklist{}.FilterSpans(spans, source))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.yml")
	require.NoError(t, os.WriteFile(path, []byte("case_sensitive:\n  - Acme\ncase_insensitive:\n  - Medicines Discovery Catapult\n"), 0600))

	bl, err := Load(path)
	require.NoError(t, err)
	assert.False(t, bl.Allowed("Acme"))
	assert.True(t, bl.Allowed("ACME"))
	assert.False(t, bl.Allowed("MEDICINES DISCOVERY CATAPULT"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
