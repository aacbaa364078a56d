// Package catalog aggregates extracted messages into a deduplicated
// (context, text) collection and keeps usage statistics in step with it.
package catalog

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/xxh3"
)

// Candidate is a message pulled from one call site, not yet merged.
type Candidate struct {
	Context   string
	Text      string
	Plural    string
	HasPlural bool
}

// Message is one unique catalog entry.
type Message struct {
	Context    string
	Text       string
	Plural     string
	HasPlural  bool
	References map[string]struct{}
}

// Files returns the referencing file paths in sorted order.
func (m *Message) Files() []string {
	files := make([]string, 0, len(m.References))
	for f := range m.References {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func (m *Message) clone() Message {
	out := *m
	out.References = make(map[string]struct{}, len(m.References))
	for f := range m.References {
		out.References[f] = struct{}{}
	}
	return out
}

// PluralConflict records a plural form that was discarded because the
// (context, text) pair already had one from an earlier call site.
type PluralConflict struct {
	Context string
	Text    string
	// Kept is the plural stored on the message; empty when the first
	// insertion had none.
	Kept    string
	Dropped string
	File    string
}

// Stats are the running counters of a Catalog.
type Stats struct {
	Messages          int
	Plurals           int
	Usages            int
	Contexts          int
	FilesParsed       int
	FilesWithMessages int
	UsageBreakdown    map[string]int
}

// Catalog maps context -> text -> Message. It is not safe for concurrent
// mutation; callers merge into it from a single goroutine.
type Catalog struct {
	contexts     map[string]map[string]*Message
	stats        Stats
	withMessages map[string]struct{}
	conflicts    []PluralConflict
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		contexts:     make(map[string]map[string]*Message),
		stats:        Stats{UsageBreakdown: make(map[string]int)},
		withMessages: make(map[string]struct{}),
	}
}

// Insert merges an accepted candidate found in file through the marker
// function fn. The first insertion of a (context, text) pair fixes its
// plural form; later differing plurals are recorded as conflicts.
func (c *Catalog) Insert(fn string, cand Candidate, file string) {
	texts, ok := c.contexts[cand.Context]
	if !ok {
		texts = make(map[string]*Message)
		c.contexts[cand.Context] = texts
		c.stats.Contexts++
	}

	msg, ok := texts[cand.Text]
	if !ok {
		msg = &Message{
			Context:    cand.Context,
			Text:       cand.Text,
			Plural:     cand.Plural,
			HasPlural:  cand.HasPlural,
			References: map[string]struct{}{file: {}},
		}
		texts[cand.Text] = msg
		c.stats.Messages++
		if cand.HasPlural {
			c.stats.Plurals++
		}
	} else {
		msg.References[file] = struct{}{}
		if cand.HasPlural && (!msg.HasPlural || msg.Plural != cand.Plural) {
			c.conflicts = append(c.conflicts, PluralConflict{
				Context: cand.Context,
				Text:    cand.Text,
				Kept:    msg.Plural,
				Dropped: cand.Plural,
				File:    file,
			})
		}
	}

	c.stats.Usages++
	c.stats.UsageBreakdown[fn]++
	c.withMessages[file] = struct{}{}
	c.stats.FilesWithMessages = len(c.withMessages)
}

// MarkParsed counts one file handed to the traversal, whatever it matched.
func (c *Catalog) MarkParsed(string) {
	c.stats.FilesParsed++
}

// Lookup returns a copy of the message stored for (context, text).
func (c *Catalog) Lookup(context, text string) (Message, bool) {
	msg, ok := c.contexts[context][text]
	if !ok {
		return Message{}, false
	}
	return msg.clone(), true
}

// Contexts returns the known contexts in sorted order. The default context
// is the empty string.
func (c *Catalog) Contexts() []string {
	out := make([]string, 0, len(c.contexts))
	for ctx := range c.contexts {
		out = append(out, ctx)
	}
	sort.Strings(out)
	return out
}

// Messages returns copies of all messages ordered by context, then text.
func (c *Catalog) Messages() []Message {
	out := make([]Message, 0, c.stats.Messages)
	for _, ctx := range c.Contexts() {
		texts := c.contexts[ctx]
		keys := make([]string, 0, len(texts))
		for t := range texts {
			keys = append(keys, t)
		}
		sort.Strings(keys)
		for _, t := range keys {
			out = append(out, texts[t].clone())
		}
	}
	return out
}

// Stats returns a snapshot of the counters.
func (c *Catalog) Stats() Stats {
	s := c.stats
	s.UsageBreakdown = make(map[string]int, len(c.stats.UsageBreakdown))
	for k, v := range c.stats.UsageBreakdown {
		s.UsageBreakdown[k] = v
	}
	return s
}

// Conflicts returns the discarded plural forms in insertion order.
func (c *Catalog) Conflicts() []PluralConflict {
	return append([]PluralConflict(nil), c.conflicts...)
}

// Verify cross-checks the running counters against the catalog contents.
func (c *Catalog) Verify() error {
	var messages, plurals, refs int
	files := make(map[string]struct{})
	for _, texts := range c.contexts {
		for key, msg := range texts {
			if key != msg.Text {
				return fmt.Errorf("message %q stored under key %q", msg.Text, key)
			}
			messages++
			if msg.HasPlural {
				plurals++
			}
			if len(msg.References) == 0 {
				return fmt.Errorf("message %q has no references", msg.Text)
			}
			refs += len(msg.References)
			for f := range msg.References {
				files[f] = struct{}{}
			}
		}
	}
	breakdown := 0
	for _, n := range c.stats.UsageBreakdown {
		breakdown += n
	}

	switch {
	case messages != c.stats.Messages:
		return fmt.Errorf("message count %d, catalog holds %d", c.stats.Messages, messages)
	case plurals != c.stats.Plurals:
		return fmt.Errorf("plural count %d, catalog holds %d", c.stats.Plurals, plurals)
	case len(c.contexts) != c.stats.Contexts:
		return fmt.Errorf("context count %d, catalog holds %d", c.stats.Contexts, len(c.contexts))
	case c.stats.Usages < c.stats.Messages:
		return fmt.Errorf("usage count %d below message count %d", c.stats.Usages, c.stats.Messages)
	case c.stats.Usages < refs:
		return fmt.Errorf("usage count %d below reference count %d", c.stats.Usages, refs)
	case breakdown != c.stats.Usages:
		return fmt.Errorf("usage breakdown sums to %d, usage count %d", breakdown, c.stats.Usages)
	case len(files) != c.stats.FilesWithMessages:
		return fmt.Errorf("files with messages %d, catalog references %d", c.stats.FilesWithMessages, len(files))
	case c.stats.FilesWithMessages > c.stats.FilesParsed:
		return fmt.Errorf("files with messages %d exceeds files parsed %d", c.stats.FilesWithMessages, c.stats.FilesParsed)
	}
	return nil
}

// Fingerprint digests contexts, texts, plurals and references. It does not
// depend on insertion order, so two runs over the same files agree.
func (c *Catalog) Fingerprint() string {
	h := xxh3.New()
	for _, msg := range c.Messages() {
		writeField(h, msg.Context)
		writeField(h, msg.Text)
		if msg.HasPlural {
			writeField(h, "1")
			writeField(h, msg.Plural)
		} else {
			writeField(h, "0")
		}
		for _, f := range msg.Files() {
			writeField(h, f)
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equal reports whether both catalogs hold the same messages and references.
func (c *Catalog) Equal(other *Catalog) bool {
	return c.stats.Messages == other.stats.Messages && c.Fingerprint() == other.Fingerprint()
}

// writeField length-prefixes s; texts may contain any byte, NUL included.
func writeField(h *xxh3.Hasher, s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	_, _ = h.Write(n[:])
	_, _ = h.WriteString(s)
}
