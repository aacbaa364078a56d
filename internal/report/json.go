package report

import (
	"encoding/json"
	"io"

	"github.com/DeusData/i18n-extract/internal/catalog"
)

type jsonMessage struct {
	Context    string   `json:"context"`
	Text       string   `json:"text"`
	Plural     *string  `json:"plural,omitempty"`
	References []string `json:"references"`
}

type jsonUsage struct {
	Function string `json:"function"`
	Count    int    `json:"count"`
}

type jsonStats struct {
	Messages          int         `json:"messages"`
	Plurals           int         `json:"plurals"`
	Usages            int         `json:"usages"`
	Contexts          int         `json:"contexts"`
	FilesParsed       int         `json:"files_parsed"`
	FilesWithMessages int         `json:"files_with_messages"`
	UsageBreakdown    []jsonUsage `json:"usage_breakdown"`
}

type jsonConflict struct {
	Context string `json:"context"`
	Text    string `json:"text"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
	File    string `json:"file"`
}

type jsonReport struct {
	Base        string         `json:"base,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	Stats       jsonStats      `json:"stats"`
	Messages    []jsonMessage  `json:"messages"`
	Conflicts   []jsonConflict `json:"conflicts,omitempty"`
	Failures    []string       `json:"failures,omitempty"`
}

// StatsJSON converts statistics to their JSON shape.
func StatsJSON(s catalog.Stats) any {
	return statsJSON(s)
}

func statsJSON(s catalog.Stats) jsonStats {
	out := jsonStats{
		Messages:          s.Messages,
		Plurals:           s.Plurals,
		Usages:            s.Usages,
		Contexts:          s.Contexts,
		FilesParsed:       s.FilesParsed,
		FilesWithMessages: s.FilesWithMessages,
		UsageBreakdown:    []jsonUsage{},
	}
	for _, u := range Breakdown(s) {
		out.UsageBreakdown = append(out.UsageBreakdown, jsonUsage{Function: u.Function, Count: u.Count})
	}
	return out
}

func messagesJSON(msgs []catalog.Message) []jsonMessage {
	out := make([]jsonMessage, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		jm := jsonMessage{Context: m.Context, Text: m.Text, References: m.Files()}
		if m.HasPlural {
			p := m.Plural
			jm.Plural = &p
		}
		out = append(out, jm)
	}
	return out
}

// WriteJSON writes the catalog, statistics, conflicts and failures as one
// indented JSON document.
func WriteJSON(w io.Writer, base string, c *catalog.Catalog, failures []error) error {
	rep := jsonReport{
		Base:        base,
		Fingerprint: c.Fingerprint(),
		Stats:       statsJSON(c.Stats()),
		Messages:    messagesJSON(c.Messages()),
	}
	for _, cf := range c.Conflicts() {
		rep.Conflicts = append(rep.Conflicts, jsonConflict(cf))
	}
	for _, err := range failures {
		rep.Failures = append(rep.Failures, err.Error())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
