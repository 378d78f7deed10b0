package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	scholarbib "github.com/compscidr/scholarbib"
	"github.com/compscidr/scholarbib/internal/bibtex"
	"github.com/compscidr/scholarbib/internal/config"
	"github.com/compscidr/scholarbib/internal/updater"
)

var (
	updateUser    string
	updateBib     string
	updateDetails bool
	updateLimit   int
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Regenerate the bibliography from the Scholar profile",
	Long: `Fetch the Scholar profile listing, render every publication as a BibTeX
entry and rewrite the bibliography file. The previous file is kept next to it
with a .backup suffix. Nothing is written when the fetch fails.

Setting DISABLE_AUTO_UPDATE=true skips the run unless GITHUB_ACTIONS is set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("user") {
			cfg.Scholar.ID = updateUser
		}
		if cmd.Flags().Changed("bib") {
			cfg.Bibliography.Path = updateBib
		}
		if cmd.Flags().Changed("details") {
			cfg.Details.Enabled = updateDetails
		}
		if code := runUpdate(cmd.Context(), cfg); code != ExitSuccess {
			exitWithCode(code)
		}
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateUser, "user", "", "Scholar user id (overrides scholar.id)")
	updateCmd.Flags().StringVar(&updateBib, "bib", "", "bibliography file (overrides bibliography.path)")
	updateCmd.Flags().BoolVar(&updateDetails, "details", false, "also fetch each article page for DOI, pages and abstract")
	updateCmd.Flags().IntVar(&updateLimit, "limit", 0, "keep at most this many publications (0 = all)")
	rootCmd.AddCommand(updateCmd)
}

func newScholar(c *config.Config) *scholarbib.Scholar {
	return scholarbib.New(
		scholarbib.WithHTTPClient(&http.Client{Timeout: c.Scholar.Timeout}),
		scholarbib.WithBaseURL(c.Scholar.BaseURL),
		scholarbib.WithPageSize(c.Scholar.PageSize),
		scholarbib.WithRequestDelay(c.Scholar.RequestDelay),
		scholarbib.WithArticleDelay(c.Details.RequestDelay),
		scholarbib.WithProfileRetry(c.ProfilePolicy()),
		scholarbib.WithArticleRetry(c.ArticlePolicy()),
		scholarbib.WithLogger(logger),
	)
}

func newRenderer(c *config.Config) (*bibtex.Renderer, error) {
	abbr := bibtex.NewAbbreviator()
	if c.Bibliography.AbbreviationsFile != "" {
		var err error
		if abbr, err = bibtex.LoadAbbreviator(c.Bibliography.AbbreviationsFile); err != nil {
			return nil, err
		}
	}
	r := bibtex.NewRenderer(c.Bibliography.KeyPrefix, abbr)
	r.SelectedThreshold = c.Bibliography.SelectedThreshold
	r.AbstractLimit = c.Bibliography.AbstractLimit
	return r, nil
}

func runUpdate(ctx context.Context, c *config.Config) int {
	renderer, err := newRenderer(c)
	if err != nil {
		return outputError(ExitConfigError, "loading abbreviations: %v", err)
	}

	u := updater.New(newScholar(c), renderer, logger)
	res, err := u.Run(ctx, updater.Options{
		User:     c.Scholar.ID,
		Path:     c.Bibliography.Path,
		Limit:    updateLimit,
		Details:  c.Details.Enabled,
		Disabled: c.UpdateDisabled(),
	})
	if err != nil {
		logger.Error().Err(err).Int("status", scholarbib.StatusCode(err)).Msg("update failed")
		if scholarbib.IsRateLimited(err) {
			return outputError(ExitError, "%v (rate limited by Google Scholar, try again later)", err)
		}
		return outputError(ExitError, "%v", err)
	}

	switch res.Status {
	case updater.StatusSkipped:
		outputHuman("Auto update disabled (DISABLE_AUTO_UPDATE=true), skipping")
	case updater.StatusEmpty:
		outputHuman("No publications found for %s, kept %s", c.Scholar.ID, res.Path)
	default:
		outputHuman("Updated %s with %d publications by %s", res.Path, res.Publications, res.Author)
		if res.BackedUp {
			outputHuman("Previous version saved to %s", bibtex.BackupPath(res.Path))
		}
	}
	return ExitSuccess
}
