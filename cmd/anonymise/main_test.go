package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

func writeConfig(t *testing.T) string {
	dir := t.TempDir()
	gazetteer := filepath.Join(dir, "gazetteer.tsv")
	require.NoError(t, os.WriteFile(gazetteer, []byte("John Doe\tPER\nLondon\tLOC\n"), 0600))

	conf := "log_level: error\nrecognisers:\n  enabled: [dictionary]\n  dictionary:\n    backend: local\n    path: " + gazetteer + "\n"
	path := filepath.Join(dir, "anonymise.yml")
	require.NoError(t, os.WriteFile(path, []byte(conf), 0600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	out, _, err := runCLI(t, stdin, args...)
	return out, err
}

func runCLI(t *testing.T, stdin string, args ...string) (string, *cli, error) {
	viper.Reset()
	out := &bytes.Buffer{}
	c := newCLI(strings.NewReader(stdin), out)
	err := c.execute(append(args, "--config", writeConfig(t)))
	return out.String(), c, err
}

func TestTextAndRestore(t *testing.T) {
	text := "John Doe met John Doe in London."

	out, err := run(t, "", "text", text)
	require.NoError(t, err)

	var res entity.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "[PER_1] met [PER_1] in [LOC_1].", res.AnonymizedText)
	assert.Equal(t, 2, res.Statistics.TotalEntities)

	restored, err := run(t, out, "restore")
	require.NoError(t, err)
	assert.Equal(t, text+"\n", restored)
}

func TestTextFromStdin(t *testing.T) {
	out, err := run(t, "Write to jane@example.com", "text")
	require.NoError(t, err)

	var res entity.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Write to [EMAIL_1]", res.AnonymizedText)
}

func TestExtract(t *testing.T) {
	out, err := run(t, "", "extract", "John Doe lives in London.")
	require.NoError(t, err)

	var inventory entity.Inventory
	require.NoError(t, json.Unmarshal([]byte(out), &inventory))
	assert.Equal(t, []entity.Entity{{Text: "John Doe", Start: 0, End: 8}}, inventory[entity.PER])
	assert.Equal(t, []entity.Entity{{Text: "London", Start: 18, End: 24}}, inventory[entity.LOC])
	assert.Empty(t, inventory[entity.ORG])
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Met John Doe."), 0600))

	out, err := run(t, "", "file", path)
	require.NoError(t, err)

	var res entity.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Met [PER_1].", res.AnonymizedText)
}

func TestFileUnsupported(t *testing.T) {
	_, err := run(t, "", "file", "scan.png")
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestRestoreInvalidInput(t *testing.T) {
	_, err := run(t, "not json", "restore")
	assert.ErrorContains(t, err, "invalid anonymisation result")
}

func TestRestoreMissingField(t *testing.T) {
	for _, payload := range []string{
		`{"anonymized_text":"[PER_1] was here"}`,
		`{"entity_mapping":[]}`,
	} {
		_, err := run(t, payload, "restore")
		assert.ErrorContains(t, err, "missing required fields", payload)
	}
}

func TestEngineClosedWhenCommandFails(t *testing.T) {
	_, c, err := runCLI(t, "", "file", "scan.png")
	require.Error(t, err)
	assert.Nil(t, c.engine)

	_, c, err = runCLI(t, "", "text", "John Doe")
	require.NoError(t, err)
	assert.Nil(t, c.engine)
}
