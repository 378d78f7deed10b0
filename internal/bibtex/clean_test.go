package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	cases := map[string]string{
		"":                                 "",
		"  plain  ":                        "plain",
		"Fragment-based  {conceptual} DFT": "Fragment-based conceptual DFT",
		"{{Nested}} braces":                "Nested braces",
		"a { } b":                          "a b",
		"line\nbreak\tand\u00a0nbsp":       "line break and nbsp",
	}
	for in, want := range cases {
		got := Clean(in)
		assert.Equal(t, want, got, "Clean(%q)", in)
		assert.Equal(t, got, Clean(got), "Clean should be idempotent for %q", in)
	}
}

func TestFormatAuthorName(t *testing.T) {
	assert.Equal(t, "Heidar-Zadeh, Farnaz", FormatAuthorName("Farnaz Heidar-Zadeh"))
	assert.Equal(t, "Ayers, Paul W", FormatAuthorName("Paul W Ayers*"))
	assert.Equal(t, "Verstraelen, T", FormatAuthorName("T Verstraelen†"))
	assert.Equal(t, "Plato", FormatAuthorName("Plato"))
	assert.Equal(t, "", FormatAuthorName("  "))
}

func TestFormatAuthors(t *testing.T) {
	assert.Equal(t,
		"Heidar-Zadeh, F and Ayers, PW and Verstraelen, T",
		FormatAuthors("F Heidar-Zadeh, PW Ayers, T Verstraelen"))
	assert.Equal(t,
		"Heidar-Zadeh, F and Ayers, PW",
		FormatAuthors("F Heidar-Zadeh AND PW Ayers"))
	assert.Equal(t,
		"Tehrani, A and Yang, X",
		FormatAuthors("A Tehrani, X Yang, ..."))
	assert.Equal(t, "", FormatAuthors(""))
}
