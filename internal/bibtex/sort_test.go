package bibtex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sortHeader = `---
---

@comment{
  This file is automatically generated from Google Scholar.
}
`

func entryText(key string, year, citations int) string {
	return fmt.Sprintf("@article{%s,\n  title={%s},\n  year={%d},\n  note={Cited by %d}\n}", key, key, year, citations)
}

func keys(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Content[strings.Index(b.Content, "{")+1 : strings.Index(b.Content, ",")]
	}
	return out
}

func TestSortByYearThenCitations(t *testing.T) {
	content := sortHeader + "\n" +
		entryText("a", 2020, 5) + "\n\n" +
		entryText("b", 2019, 99) + "\n\n" +
		entryText("c", 2020, 10) + "\n"

	sorted, blocks := Sort(content)
	require.Len(t, blocks, 3)
	assert.Equal(t, []string{"c", "a", "b"}, keys(blocks))
	assert.Equal(t, 2020, blocks[0].Year)
	assert.Equal(t, 10, blocks[0].Citations)
	assert.Equal(t, 2020, blocks[1].Year)
	assert.Equal(t, 5, blocks[1].Citations)
	assert.Equal(t, 2019, blocks[2].Year)
	assert.Equal(t, 99, blocks[2].Citations)

	assert.True(t, strings.HasPrefix(sorted, sortHeader+"\n@article{c,"))
	assert.True(t, strings.HasSuffix(sorted, "note={Cited by 99}\n}\n"))
}

func TestSortIsIdempotent(t *testing.T) {
	content := sortHeader + "\n\n\n" +
		entryText("a", 2018, 1) + "\n" +
		entryText("b", 2021, 3) + "\n\n\n" +
		entryText("c", 2021, 7)

	once, _ := Sort(content)
	twice, _ := Sort(once)
	assert.Equal(t, once, twice)
}

func TestSortIsStable(t *testing.T) {
	content := entryText("first", 2020, 4) + "\n\n" +
		entryText("second", 2020, 4) + "\n\n" +
		entryText("third", 2020, 4)

	_, blocks := Sort(content)
	assert.Equal(t, []string{"first", "second", "third"}, keys(blocks))
}

func TestSortMissingFieldsDefaultToZero(t *testing.T) {
	content := "@misc{nothing,\n  title={No year}\n}\n\n" +
		"@article{cited,\n  year = {2000},\n  note={Cited by 1}\n}\n\n" +
		"@book{uncited,\n  year={2000}\n}\n"

	_, blocks := Sort(content)
	require.Len(t, blocks, 3)
	assert.Equal(t, []string{"cited", "uncited", "nothing"}, keys(blocks))
	assert.Equal(t, 0, blocks[1].Citations)
	assert.Equal(t, 0, blocks[2].Year)
}

func TestSplitKeepsCommentsInHeader(t *testing.T) {
	header, blocks := Split(sortHeader + "\n" + entryText("a", 2020, 1) + "\n@comment{trailing}\n")
	assert.Equal(t, sortHeader, header)
	require.Len(t, blocks, 1)
	assert.True(t, strings.HasSuffix(blocks[0].Content, "@comment{trailing}"))
}

func TestSortKeepsStringAndPreambleBeforeEntries(t *testing.T) {
	header := "% refs\n@string{jcp = {Journal of Chemical Physics}}\n@preamble{\"\\newcommand{\\noop}[1]{}\"}"
	content := header + "\n\n" +
		"@article{a,\n  journal=jcp,\n  year={2019}\n}\n\n" +
		"@article{b,\n  journal=jcp,\n  year={2021}\n}\n"

	sorted, blocks := Sort(content)
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"b", "a"}, keys(blocks))
	assert.True(t, strings.HasPrefix(sorted, header+"\n\n@article{b,"))

	again, _ := Sort(sorted)
	assert.Equal(t, sorted, again)
}

func TestSortEmpty(t *testing.T) {
	sorted, blocks := Sort("")
	assert.Empty(t, blocks)
	assert.Equal(t, "", sorted)

	sorted, blocks = Sort(sortHeader)
	assert.Empty(t, blocks)
	assert.Equal(t, sortHeader, sorted)
}

func TestSortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.bib")
	require.NoError(t, os.WriteFile(path, []byte(entryText("old", 2001, 0)+"\n\n"+entryText("new", 2024, 0)), 0o644))

	blocks, err := SortFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, keys(blocks))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "@article{new,"))
}

func TestSortFileMissing(t *testing.T) {
	_, err := SortFile(filepath.Join(t.TempDir(), "missing.bib"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRenderedFileIsAlreadySorted(t *testing.T) {
	header := Header(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC), "JlIWcccAAAAJ")
	entries := []string{
		entryText("x", 2022, 3),
		entryText("y", 2020, 8),
	}
	content := Assemble(header, entries)

	sorted, _ := Sort(content)
	assert.Equal(t, content, sorted)
}
