package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/i18n-extract/internal/catalog"
)

func sampleCatalog() *catalog.Catalog {
	c := catalog.New()
	c.MarkParsed("a.js")
	c.MarkParsed("b.js")
	c.MarkParsed("c.js")
	c.Insert("gettext", catalog.Candidate{Text: "Hello"}, "a.js")
	c.Insert("gettext", catalog.Candidate{Text: "Hello"}, "b.js")
	c.Insert("gettext", catalog.Candidate{Text: "Bye"}, "b.js")
	c.Insert("pgettext", catalog.Candidate{Context: "menu", Text: "Open"}, "a.js")
	return c
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sampleCatalog().Stats()))

	want := "    BEGIN TO EXTRACT:\n\n" +
		"    3 messages extracted\n" +
		"  -------------------------------\n" +
		"    4 total usages\n" +
		"    ↳ 3 \"gettext\" usages\n" +
		"    ↳ 1 \"pgettext\" usage\n" +
		"\n    3 files (2 with messages)\n" +
		"    2 message contexts\n" +
		"\n    EXTRACT FINISHED\n"
	assert.Equal(t, want, buf.String())
}

func TestSummarySingular(t *testing.T) {
	c := catalog.New()
	c.MarkParsed("a.js")
	c.Insert("gettext", catalog.Candidate{Text: "x"}, "a.js")

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, c.Stats()))
	out := buf.String()
	assert.Contains(t, out, "    1 message extracted\n")
	assert.Contains(t, out, "    1 total usage\n")
	assert.Contains(t, out, "    1 file (1 with messages)\n")
	assert.Contains(t, out, "    1 message context\n")
}

func TestBreakdownOrder(t *testing.T) {
	s := catalog.Stats{UsageBreakdown: map[string]int{"b": 2, "a": 2, "c": 5}}
	assert.Equal(t, []Usage{{"c", 5}, {"a", 2}, {"b", 2}}, Breakdown(s))
}

func TestSimilar(t *testing.T) {
	c := catalog.New()
	c.MarkParsed("a.js")
	c.Insert("gettext", catalog.Candidate{Text: "Save changes"}, "a.js")
	c.Insert("gettext", catalog.Candidate{Text: "Save changes."}, "a.js")
	c.Insert("gettext", catalog.Candidate{Text: "Delete account"}, "a.js")
	c.Insert("pgettext", catalog.Candidate{Context: "x", Text: "Save change"}, "a.js")

	pairs := Similar(c, 0.95)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Save changes", pairs[0].A)
	assert.Equal(t, "Save changes.", pairs[0].B)
	assert.Empty(t, Similar(c, 0))
}

func TestWarnings(t *testing.T) {
	c := catalog.New()
	c.MarkParsed("a.js")
	c.Insert("ngettext", catalog.Candidate{Text: "file", Plural: "files", HasPlural: true}, "a.js")
	c.Insert("ngettext", catalog.Candidate{Text: "file", Plural: "filez", HasPlural: true}, "a.js")

	var buf bytes.Buffer
	err := Warnings(&buf, []error{fmt.Errorf("parse error in b.js: boom")}, c.Conflicts(),
		[]SimilarPair{{A: "x", B: "x.", Score: 0.97}})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "warning: skipped: parse error in b.js: boom", lines[0])
	assert.Equal(t, `warning: a.js: plural "filez" for "file" dropped, keeping "files"`, lines[1])
	assert.Equal(t, `warning: similar messages "x" and "x." in the default context (0.97)`, lines[2])
}

func TestWriteJSON(t *testing.T) {
	c := sampleCatalog()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "/src", c, []error{fmt.Errorf("bad")}))

	var got struct {
		Base        string `json:"base"`
		Fingerprint string `json:"fingerprint"`
		Stats       struct {
			Messages       int `json:"messages"`
			UsageBreakdown []struct {
				Function string `json:"function"`
				Count    int    `json:"count"`
			} `json:"usage_breakdown"`
		} `json:"stats"`
		Messages []struct {
			Context    string   `json:"context"`
			Text       string   `json:"text"`
			Plural     *string  `json:"plural"`
			References []string `json:"references"`
		} `json:"messages"`
		Failures []string `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/src", got.Base)
	assert.Equal(t, c.Fingerprint(), got.Fingerprint)
	assert.Equal(t, 3, got.Stats.Messages)
	assert.Equal(t, "gettext", got.Stats.UsageBreakdown[0].Function)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "Bye", got.Messages[0].Text)
	assert.Nil(t, got.Messages[0].Plural)
	assert.Equal(t, []string{"a.js", "b.js"}, got.Messages[1].References)
	assert.Equal(t, []string{"bad"}, got.Failures)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Observe(sampleCatalog().Stats(), 1, 0.5)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.Messages))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.Usages))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failures))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.UsagesByFunction.WithLabelValues("gettext")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Runs))

	path := filepath.Join(t.TempDir(), "i18n.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "i18n_extract_messages 3")
	assert.Contains(t, string(data), `i18n_extract_usages_by_function{function="pgettext"} 1`)
}
