package bibtex

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	yearFieldRe     = regexp.MustCompile(`year\s*=\s*\{(\d+)\}`)
	citationFieldRe = regexp.MustCompile(`note\s*=\s*\{Cited by (\d+)\}`)
)

// Block is one entry of an existing bibliography file.
type Block struct {
	Content   string
	Year      int
	Citations int
}

func newBlock(content string) Block {
	b := Block{Content: content}
	if m := yearFieldRe.FindStringSubmatch(content); m != nil {
		b.Year, _ = strconv.Atoi(m[1])
	}
	if m := citationFieldRe.FindStringSubmatch(content); m != nil {
		b.Citations, _ = strconv.Atoi(m[1])
	}
	return b
}

// nonEntryCommands are @-blocks that are not publications. They stay in the
// header (or with the entry they follow) so @string macros remain defined
// before they are used.
var nonEntryCommands = []string{"@comment", "@string", "@preamble"}

// isEntryStart reports whether line opens a publication entry.
func isEntryStart(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	if !strings.HasPrefix(line, "@") {
		return false
	}
	for _, cmd := range nonEntryCommands {
		if strings.HasPrefix(line, cmd) {
			return false
		}
	}
	return true
}

// Split separates the header from the entry blocks.
func Split(content string) (string, []Block) {
	lines := strings.Split(content, "\n")

	var header []string
	var blocks []Block
	var current []string
	inHeader := true

	flush := func() {
		if text := strings.TrimSpace(strings.Join(current, "\n")); text != "" {
			blocks = append(blocks, newBlock(text))
		}
		current = nil
	}

	for _, line := range lines {
		if isEntryStart(line) {
			inHeader = false
			flush()
		}
		if inHeader {
			header = append(header, line)
		} else {
			current = append(current, line)
		}
	}
	flush()

	return strings.Join(header, "\n"), blocks
}

// Less orders newer publications first and, within a year, more cited ones.
func Less(yearA, citationsA, yearB, citationsB int) bool {
	if yearA != yearB {
		return yearA > yearB
	}
	return citationsA > citationsB
}

// SortBlocks sorts in place; equal blocks keep their relative order.
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return Less(blocks[i].Year, blocks[i].Citations, blocks[j].Year, blocks[j].Citations)
	})
}

// Sort returns content with its entries reordered, plus the sorted blocks.
// Sorting its own output returns the same text.
func Sort(content string) (string, []Block) {
	header, blocks := Split(content)
	SortBlocks(blocks)

	entries := make([]string, len(blocks))
	for i, b := range blocks {
		entries[i] = b.Content
	}
	return Assemble(header, entries), blocks
}

// SortFile sorts the bibliography at path in place.
func SortFile(path string) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	sorted, blocks := Sort(string(data))
	if err := WriteFile(path, sorted); err != nil {
		return nil, err
	}
	return blocks, nil
}
