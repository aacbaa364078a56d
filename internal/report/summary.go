// Package report renders extraction results: the text summary, warnings,
// a JSON dump and a Prometheus textfile.
package report

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xcatalog "golang.org/x/text/message/catalog"

	"github.com/DeusData/i18n-extract/internal/catalog"
)

const (
	msgExtracted = "    %d messages extracted\n"
	msgUsages    = "    %d total usages\n"
	msgBreakdown = "    ↳ %d %q usages\n"
	msgFiles     = "\n    %d files (%d with messages)\n"
	msgContexts  = "    %d message contexts\n"
)

func newPrinter() *message.Printer {
	b := xcatalog.NewBuilder()
	en := language.English
	_ = b.Set(en, msgExtracted, plural.Selectf(1, "%d",
		"one", "    %d message extracted\n",
		"other", msgExtracted))
	_ = b.Set(en, msgUsages, plural.Selectf(1, "%d",
		"one", "    %d total usage\n",
		"other", msgUsages))
	_ = b.Set(en, msgBreakdown, plural.Selectf(1, "%d",
		"one", "    ↳ %d %q usage\n",
		"other", msgBreakdown))
	_ = b.Set(en, msgFiles, plural.Selectf(1, "%d",
		"one", "\n    %d file (%d with messages)\n",
		"other", msgFiles))
	_ = b.Set(en, msgContexts, plural.Selectf(1, "%d",
		"one", "    %d message context\n",
		"other", msgContexts))
	return message.NewPrinter(en, message.Catalog(b))
}

// Usage is one row of the usage breakdown.
type Usage struct {
	Function string
	Count    int
}

// Breakdown orders usage counts by count descending, then function name.
func Breakdown(s catalog.Stats) []Usage {
	out := make([]Usage, 0, len(s.UsageBreakdown))
	for fn, n := range s.UsageBreakdown {
		out = append(out, Usage{Function: fn, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Function < out[j].Function
	})
	return out
}

// Summary writes the extraction summary:
//
//	  BEGIN TO EXTRACT:
//
//	  3 messages extracted
//	-------------------------------
//	  4 total usages
//	  ↳ 3 "gettext" usages
//	  ↳ 1 "pgettext" usage
//
//	  2 files (2 with messages)
//	  2 message contexts
//
//	  EXTRACT FINISHED
func Summary(w io.Writer, s catalog.Stats) error {
	p := newPrinter()
	ew := &errWriter{w: w}
	ew.print("    BEGIN TO EXTRACT:\n\n")
	p.Fprintf(ew, msgExtracted, s.Messages)
	ew.print("  -------------------------------\n")
	p.Fprintf(ew, msgUsages, s.Usages)
	for _, u := range Breakdown(s) {
		p.Fprintf(ew, msgBreakdown, u.Count, u.Function)
	}
	p.Fprintf(ew, msgFiles, s.FilesParsed, s.FilesWithMessages)
	p.Fprintf(ew, msgContexts, s.Contexts)
	ew.print("\n    EXTRACT FINISHED\n")
	return ew.err
}

// errWriter keeps the first write error so rendering code can ignore it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return len(b), nil
	}
	n, err := e.w.Write(b)
	if err != nil {
		e.err = err
	}
	return n, nil
}

func (e *errWriter) print(s string) {
	_, _ = fmt.Fprint(e, s)
}
