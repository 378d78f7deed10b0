package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/compscidr/scholarbib/internal/bibtex"
)

var sortBib string

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Order bibliography entries by year, then citations",
	Long: `Reorder the entries of the bibliography file in place: newest year first,
more cited first within a year. Text before the first entry is kept as is.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := cfg.Bibliography.Path
		if cmd.Flags().Changed("bib") {
			path = sortBib
		}
		if code := runSort(path); code != ExitSuccess {
			exitWithCode(code)
		}
	},
}

func init() {
	sortCmd.Flags().StringVar(&sortBib, "bib", "", "bibliography file (overrides bibliography.path)")
	rootCmd.AddCommand(sortCmd)
}

func runSort(path string) int {
	blocks, err := bibtex.SortFile(path)
	if err != nil {
		if errors.Is(err, bibtex.ErrFileNotFound) {
			return outputError(ExitDataError, "%v", err)
		}
		return outputError(ExitError, "%v", err)
	}

	if len(blocks) == 0 {
		logger.Warn().Str("path", path).Msg("no entries to sort")
		outputHuman("No entries found in %s", path)
		return ExitSuccess
	}
	newest, oldest := blocks[0].Year, blocks[len(blocks)-1].Year
	logger.Info().
		Str("path", path).
		Int("entries", len(blocks)).
		Int("newest", newest).
		Int("oldest", oldest).
		Msg("sorted bibliography")
	outputHuman("Sorted %d entries in %s (%d-%d)", len(blocks), path, oldest, newest)
	return ExitSuccess
}
