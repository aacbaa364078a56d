package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/DeusData/i18n-extract/internal/catalog"
)

// SimilarPair is two messages of one context whose texts are nearly equal,
// usually a typo or stray punctuation splitting one translation in two.
type SimilarPair struct {
	Context string
	A       string
	B       string
	Score   float32
}

// maxSimilarTexts bounds the pairwise comparison within one context.
const maxSimilarTexts = 5000

// Similar returns message pairs within the same context whose Jaro-Winkler
// similarity is at least threshold, highest score first.
func Similar(c *catalog.Catalog, threshold float64) []SimilarPair {
	if threshold <= 0 {
		return nil
	}
	byContext := make(map[string][]string)
	for _, m := range c.Messages() {
		byContext[m.Context] = append(byContext[m.Context], m.Text)
	}

	var out []SimilarPair
	for ctx, texts := range byContext {
		if len(texts) > maxSimilarTexts {
			texts = texts[:maxSimilarTexts]
		}
		for i := 0; i < len(texts); i++ {
			for j := i + 1; j < len(texts); j++ {
				score, err := edlib.StringsSimilarity(texts[i], texts[j], edlib.JaroWinkler)
				if err != nil || float64(score) < threshold {
					continue
				}
				out = append(out, SimilarPair{Context: ctx, A: texts[i], B: texts[j], Score: score})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Context != out[j].Context {
			return out[i].Context < out[j].Context
		}
		return out[i].A < out[j].A
	})
	return out
}

// Warnings writes one line per skipped file, discarded plural form and
// near-duplicate pair.
func Warnings(w io.Writer, failures []error, conflicts []catalog.PluralConflict, similar []SimilarPair) error {
	ew := &errWriter{w: w}
	for _, err := range failures {
		fmt.Fprintf(ew, "warning: skipped: %v\n", err)
	}
	for _, c := range conflicts {
		fmt.Fprintf(ew, "warning: %s: plural %q for %s dropped, keeping %q\n",
			c.File, c.Dropped, describe(c.Context, c.Text), c.Kept)
	}
	for _, s := range similar {
		fmt.Fprintf(ew, "warning: similar messages %q and %q in %s (%.2f)\n",
			s.A, s.B, describeContext(s.Context), s.Score)
	}
	return ew.err
}

func describe(context, text string) string {
	if context == "" {
		return fmt.Sprintf("%q", text)
	}
	return fmt.Sprintf("%q (context %q)", text, context)
}

func describeContext(context string) string {
	if context == "" {
		return "the default context"
	}
	return fmt.Sprintf("context %q", context)
}
