package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSameMessageFromTwoFiles(t *testing.T) {
	c := New()
	c.MarkParsed("a.js")
	c.Insert("pgettext", Candidate{Context: "menu", Text: "Open"}, "a.js")
	c.MarkParsed("b.js")
	c.Insert("pgettext", Candidate{Context: "menu", Text: "Open"}, "b.js")

	msg, ok := c.Lookup("menu", "Open")
	require.True(t, ok)
	assert.Equal(t, []string{"a.js", "b.js"}, msg.Files())

	s := c.Stats()
	assert.Equal(t, 1, s.Messages)
	assert.Equal(t, 2, s.Usages)
	assert.Equal(t, 1, s.Contexts)
	assert.Equal(t, 2, s.FilesParsed)
	assert.Equal(t, 2, s.FilesWithMessages)
	assert.Equal(t, map[string]int{"pgettext": 2}, s.UsageBreakdown)
	require.NoError(t, c.Verify())
}

func TestContextsSeparateMessages(t *testing.T) {
	c := New()
	c.MarkParsed("a.py")
	c.Insert("gettext", Candidate{Text: "Open"}, "a.py")
	c.Insert("pgettext", Candidate{Context: "file", Text: "Open"}, "a.py")
	c.Insert("pgettext", Candidate{Context: "door", Text: "Open"}, "a.py")

	assert.Equal(t, []string{"", "door", "file"}, c.Contexts())
	s := c.Stats()
	assert.Equal(t, 3, s.Messages)
	assert.Equal(t, 3, s.Contexts)
	assert.Equal(t, 1, s.FilesWithMessages)
	require.NoError(t, c.Verify())
}

func TestFirstPluralWins(t *testing.T) {
	c := New()
	c.MarkParsed("a.js")
	c.MarkParsed("b.js")
	c.Insert("ngettext", Candidate{Text: "1 item", Plural: "%d items", HasPlural: true}, "a.js")
	c.Insert("ngettext", Candidate{Text: "1 item", Plural: "%d things", HasPlural: true}, "b.js")
	c.Insert("gettext", Candidate{Text: "1 item"}, "b.js")

	msg, ok := c.Lookup("", "1 item")
	require.True(t, ok)
	assert.Equal(t, "%d items", msg.Plural)
	assert.Equal(t, 1, c.Stats().Plurals)

	conflicts := c.Conflicts()
	require.Len(t, conflicts, 1, "a missing plural is not a conflict")
	assert.Equal(t, PluralConflict{Text: "1 item", Kept: "%d items", Dropped: "%d things", File: "b.js"}, conflicts[0])
	require.NoError(t, c.Verify())
}

func TestPluralAddedLaterIsDropped(t *testing.T) {
	c := New()
	c.MarkParsed("a.js")
	c.Insert("gettext", Candidate{Text: "file"}, "a.js")
	c.Insert("ngettext", Candidate{Text: "file", Plural: "files", HasPlural: true}, "a.js")

	msg, _ := c.Lookup("", "file")
	assert.False(t, msg.HasPlural)
	assert.Equal(t, 0, c.Stats().Plurals)
	require.Len(t, c.Conflicts(), 1)
	assert.Equal(t, "", c.Conflicts()[0].Kept)
}

func TestFileWithoutMessages(t *testing.T) {
	c := New()
	c.MarkParsed("empty.js")
	s := c.Stats()
	assert.Equal(t, 1, s.FilesParsed)
	assert.Equal(t, 0, s.FilesWithMessages)
	assert.Empty(t, c.Messages())
	require.NoError(t, c.Verify())
}

func TestSnapshotsAreCopies(t *testing.T) {
	c := New()
	c.MarkParsed("a.js")
	c.Insert("gettext", Candidate{Text: "x"}, "a.js")

	s := c.Stats()
	s.UsageBreakdown["gettext"] = 99
	assert.Equal(t, 1, c.Stats().UsageBreakdown["gettext"])

	msg, _ := c.Lookup("", "x")
	msg.References["evil.js"] = struct{}{}
	again, _ := c.Lookup("", "x")
	assert.Len(t, again.References, 1)
}

func TestFingerprintIgnoresOrder(t *testing.T) {
	build := func(order []string) *Catalog {
		c := New()
		for _, f := range order {
			c.MarkParsed(f)
			c.Insert("gettext", Candidate{Text: "Hello"}, f)
			c.Insert("pgettext", Candidate{Context: f, Text: "Bye"}, f)
		}
		return c
	}
	a := build([]string{"a.js", "b.js", "c.js"})
	b := build([]string{"c.js", "a.js", "b.js"})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.True(t, a.Equal(b))

	d := build([]string{"a.js", "b.js"})
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
	assert.False(t, a.Equal(d))
}

func TestFingerprintFieldsWithNUL(t *testing.T) {
	build := func(ctx, text string) *Catalog {
		c := New()
		c.MarkParsed("x.js")
		c.Insert("pgettext", Candidate{Context: ctx, Text: text}, "x.js")
		return c
	}
	a := build("a\x00b", "c")
	b := build("a", "b\x00c")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.False(t, a.Equal(b))
}

func TestMessagesOrdered(t *testing.T) {
	c := New()
	c.MarkParsed("a.js")
	c.Insert("gettext", Candidate{Text: "b"}, "a.js")
	c.Insert("gettext", Candidate{Text: "a"}, "a.js")
	c.Insert("pgettext", Candidate{Context: "z", Text: "a"}, "a.js")

	var got []string
	for _, m := range c.Messages() {
		got = append(got, m.Context+"/"+m.Text)
	}
	assert.Equal(t, []string{"/a", "/b", "z/a"}, got)
}

func TestVerifyDetectsDrift(t *testing.T) {
	c := New()
	c.MarkParsed("a.js")
	c.Insert("gettext", Candidate{Text: "x"}, "a.js")
	c.stats.Messages = 5
	assert.Error(t, c.Verify())
}
