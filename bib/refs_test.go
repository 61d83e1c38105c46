package bib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 9, 28, 14, 3, 5, 0, time.UTC) }

const testBib = `@article{alapati2000,
  author = {Alapati, Suresh and Kabala, Zbigniew},
  title = {Recovering the release history of a groundwater contaminant},
  journal = {Water Resources Research},
  year = {2000},
  volume = {36},
  number = {4},
  pages = {905--914},
  doi = {10.1029/2000WR900007}
}
`

const testPost = `---
title: 'Source inference'
date: 2025-09-28
bibfile: "reference.bib"
citekeys:
  - alapati2000
  - unknown2001
---

Some notes.
`

func TestBlock(t *testing.T) {
	entries := map[string]Entry{"a": {"title": "A"}}
	got := Block([]string{"a", "b", "c"}, entries, Options{Now: fixedNow})

	want := BeginMark + "\n" +
		"# Reference\n" +
		"Generated bibliography markdown file. Date: 2025-09-28 14:03:05\n" +
		`1. <p id="a"> A. </p>` + "\n" +
		"\n" +
		"> **Note:** Missing BibTeX entries for keys: b, c\n" +
		"\n" + EndMark + "\n"
	assert.Equal(t, want, got)
}

func TestBlockInlineStyle(t *testing.T) {
	got := Block(nil, nil, Options{Now: fixedNow, InlineStyle: true})
	require.True(t, strings.HasPrefix(got, BeginMark+"\n<style>"))
	assert.Contains(t, got, "</style>\n\n# Reference\n")
}

func TestApply(t *testing.T) {
	block := BeginMark + "\nnew\n" + EndMark + "\n"

	t.Run("append adds blank line", func(t *testing.T) {
		assert.Equal(t, "text\n\n"+block, Apply("text", block))
		assert.Equal(t, "text\n\n"+block, Apply("text\n", block))
		assert.Equal(t, "text\n\n"+block, Apply("text\n\n", block))
	})

	t.Run("replace keeps surroundings", func(t *testing.T) {
		doc := "intro\n" + BeginMark + "\nold\nlines\n" + EndMark + "\noutro\n"
		want := "intro\n" + BeginMark + "\nnew\n" + EndMark + "\noutro\n"
		assert.Equal(t, want, Apply(doc, block))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Apply("text", block)
		assert.Equal(t, once, Apply(once, block))
	})
}

func TestBackupPath(t *testing.T) {
	dir := filepath.Join("a", "b")
	assert.Equal(t, filepath.Join(dir, "tmp-source-inference.bak"),
		BackupPath(filepath.Join(dir, "2025-09-28-source-inference.md")))
	assert.Equal(t, filepath.Join(dir, "tmp-notes.bak"),
		BackupPath(filepath.Join(dir, "notes.markdown")))
	assert.Equal(t, filepath.Join(dir, "tmp-2025-09-x.bak"),
		BackupPath(filepath.Join(dir, "2025-09-x.md")))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestUpdateFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "reference.bib", testBib)
	post := writeFixture(t, dir, "2025-09-28-source-inference.md", testPost)

	res, err := UpdateFile(post, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Updated. Backup: tmp-source-inference.bak", res.Message)

	backup, err := os.ReadFile(filepath.Join(dir, "tmp-source-inference.bak"))
	require.NoError(t, err)
	assert.Equal(t, testPost, string(backup))

	updated, err := os.ReadFile(post)
	require.NoError(t, err)
	text := string(updated)
	assert.True(t, strings.HasPrefix(text, testPost+"\n"+BeginMark))
	assert.Contains(t, text, `<p id="alapati2000">`)
	assert.Contains(t, text, "Alapati, S. and Kabala, Z.")
	assert.Contains(t, text, "Missing BibTeX entries for keys: unknown2001")

	// Same clock, same output.
	res, err = UpdateFile(post, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "No changes.", res.Message)
}

func TestUpdateFileDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "reference.bib", testBib)
	post := writeFixture(t, dir, "post.md", testPost)

	res, err := UpdateFile(post, Options{Now: fixedNow, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Would update (dry run).", res.Message)

	after, err := os.ReadFile(post)
	require.NoError(t, err)
	assert.Equal(t, testPost, string(after))
	_, err = os.Stat(filepath.Join(dir, "tmp-post.bak"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateFileSkips(t *testing.T) {
	dir := t.TempDir()
	plain := writeFixture(t, dir, "plain.md", "---\ntitle: x\n---\nbody\n")
	noFront := writeFixture(t, dir, "nofront.md", "just text\n")
	missingBib := writeFixture(t, dir, "missing.md", testPost)

	res, err := UpdateFile(plain, Options{})
	require.NoError(t, err)
	assert.Equal(t, "No bibfile or citekeys in frontmatter.", res.Message)

	res, err = UpdateFile(noFront, Options{})
	require.NoError(t, err)
	assert.Equal(t, "No bibfile or citekeys in frontmatter.", res.Message)

	res, err = UpdateFile(missingBib, Options{})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "Bib file not found: reference.bib", res.Message)
}

func TestUpdateDir(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "reference.bib", testBib)
	writeFixture(t, dir, "b.md", testPost)
	writeFixture(t, dir, "a.markdown", "---\ntitle: a\n---\n")
	writeFixture(t, dir, "ignored.txt", testPost)

	results, err := UpdateDir(dir, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "a.markdown"), results[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.md"), results[1].Path)

	want := "[SKIP] a.markdown: No bibfile or citekeys in frontmatter.\n" +
		"[CHANGED] b.md: Updated. Backup: tmp-b.bak\n" +
		"\nDone. Files updated: 1/2\n"
	assert.Equal(t, want, Summary(dir, results, false))
}

func TestSummaryEmpty(t *testing.T) {
	assert.Equal(t, "No Markdown files found.\n", Summary(".", nil, false))
}

func TestLibraryCaches(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "reference.bib", testBib)
	lib := NewLibrary()

	first, err := lib.LoadFile(p)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))

	second, err := lib.LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = NewLibrary().LoadFile(p)
	assert.Error(t, err)
}
