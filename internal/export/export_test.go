package export_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studybuddy/internal/export"
	"github.com/PabloGalante/studybuddy/internal/logstore"
)

func TestToCSV(t *testing.T) {
	rows := []logstore.Record{
		{
			Timestamp:     "2025-01-01T10:00:00.000Z",
			UserText:      "line one\n\nline \"two\"",
			AssistantText: "OFFICIAL RULE: a\nCOMMUNITY HACK: b",
			Sources:       []string{"https://a", "https://b"},
		},
		{Timestamp: "t2"},
	}

	var sb strings.Builder
	require.NoError(t, export.ToCSV(rows, &sb))

	want := strings.Join([]string{
		`timestamp,userText,assistantText,sources`,
		`"2025-01-01T10:00:00.000Z","line one line ""two""","OFFICIAL RULE: a COMMUNITY HACK: b","https://a; https://b"`,
		`"t2","","",""`,
	}, "\n")
	assert.Equal(t, want, sb.String())
}

func TestToCSVEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, export.ToCSV(nil, &sb))
	assert.Equal(t, "timestamp,userText,assistantText,sources", sb.String())
}

func TestConvertJSONL(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "logs.jsonl")
	out := filepath.Join(dir, "out", "logs.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		`{"timestamp":"t1","userText":"u","assistantText":"a","sources":["s1"],"meta":{}}`+"\n\n"+
			`{"timestamp":"t2","userText":"u2","assistantText":"a2","sources":[],"meta":{}}`+"\n"), 0o644))

	n, err := export.Convert(context.Background(), export.JSONLReader{}, in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,userText,assistantText,sources\n\"t1\",\"u\",\"a\",\"s1\"\n\"t2\",\"u2\",\"a2\",\"\"", string(raw))
}

func TestConvertMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "logs.csv")

	for _, engine := range []string{"jsonl", "duckdb"} {
		r, err := export.NewReader(engine)
		require.NoError(t, err)

		_, err = export.Convert(context.Background(), r, filepath.Join(dir, "nope.jsonl"), out)
		require.ErrorIs(t, err, export.ErrInputMissing, engine)
	}
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output is written when the input is missing")
}

func TestNewReaderUnknownEngine(t *testing.T) {
	_, err := export.NewReader("parquet")
	assert.Error(t, err)
}

func TestDuckDBMatchesJSONL(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "logs.jsonl")
	require.NoError(t, os.WriteFile(in, []byte(strings.Join([]string{
		`{"timestamp":"2025-01-01T10:00:00.000Z","userText":"How do I\n\nregister?","assistantText":"OFFICIAL RULE: \"Anmeldung\" within 14 days","sources":["https://a","https://b"],"meta":{"sessionId":"s1"}}`,
		`{"timestamp":"2025-01-02T10:00:00.000Z","userText":"Jobs?","assistantText":"COMMUNITY HACK: ask around","sources":[],"meta":{}}`,
	}, "\n")+"\n"), 0o644))

	jsonlOut := filepath.Join(dir, "jsonl.csv")
	duckOut := filepath.Join(dir, "duckdb.csv")

	n, err := export.Convert(context.Background(), export.JSONLReader{}, in, jsonlOut)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = export.Convert(context.Background(), export.DuckDBReader{}, in, duckOut)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want, err := os.ReadFile(jsonlOut)
	require.NoError(t, err)
	got, err := os.ReadFile(duckOut)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}
