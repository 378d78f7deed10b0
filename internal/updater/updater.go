// Package updater regenerates the bibliography file from a Scholar profile.
package updater

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	scholarbib "github.com/compscidr/scholarbib"
	"github.com/compscidr/scholarbib/internal/bibtex"
)

// Source is the part of *scholarbib.Scholar the updater needs.
type Source interface {
	QueryProfile(ctx context.Context, user string, limit int) (*scholarbib.Profile, error)
	QueryArticle(ctx context.Context, article *scholarbib.Article) error
}

// Options controls a single run.
type Options struct {
	User     string
	Path     string
	Limit    int
	Details  bool
	Disabled bool
}

type Status string

const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
	// StatusEmpty means the profile had no publications and the file was kept.
	StatusEmpty Status = "empty"
)

// Result describes what a run did.
type Result struct {
	Status       Status
	Author       string
	Publications int
	Enriched     int
	BackedUp     bool
	Path         string
}

type Updater struct {
	source   Source
	renderer *bibtex.Renderer
	log      zerolog.Logger
	now      func() time.Time
}

func New(source Source, renderer *bibtex.Renderer, log zerolog.Logger) *Updater {
	return &Updater{
		source:   source,
		renderer: renderer,
		log:      log,
		now:      time.Now,
	}
}

// Run fetches the profile of opts.User and rewrites opts.Path. The file is
// left untouched when the fetch fails or the profile lists nothing.
func (u *Updater) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{Path: opts.Path}
	if opts.Disabled {
		u.log.Info().Msg("auto update disabled, skipping")
		res.Status = StatusSkipped
		return res, nil
	}
	if opts.User == "" {
		return nil, errors.New("no scholar user id")
	}

	profile, err := u.source.QueryProfile(ctx, opts.User, opts.Limit)
	if err != nil {
		return nil, err
	}
	res.Author = profile.Name
	res.Publications = len(profile.Articles)

	if len(profile.Articles) == 0 {
		u.log.Warn().Str("user", opts.User).Msg("no publications found, keeping existing file")
		res.Status = StatusEmpty
		return res, nil
	}

	articles := profile.Articles
	for _, a := range articles {
		if a.Journal == "" {
			a.Journal = a.Venue
		}
	}

	if opts.Details {
		res.Enriched = u.enrich(ctx, articles)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	// Undated articles are rendered with the current year and sorted as such.
	year := func(a *scholarbib.Article) int {
		if a.Year == 0 {
			return u.renderer.Now().Year()
		}
		return a.Year
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return bibtex.Less(year(articles[i]), articles[i].NumCitations, year(articles[j]), articles[j].NumCitations)
	})

	entries := make([]string, len(articles))
	for i, a := range articles {
		entries[i] = u.renderer.Render(a)
	}
	content := bibtex.Assemble(bibtex.Header(u.now(), opts.User), entries)

	backedUp, err := bibtex.Backup(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("backing up %s: %w", opts.Path, err)
	}
	res.BackedUp = backedUp
	if backedUp {
		u.log.Info().Str("backup", bibtex.BackupPath(opts.Path)).Msg("backed up bibliography")
	}

	if err := bibtex.WriteFile(opts.Path, content); err != nil {
		return nil, err
	}
	res.Status = StatusUpdated
	u.log.Info().
		Str("path", opts.Path).
		Str("author", res.Author).
		Int("publications", res.Publications).
		Msg("bibliography updated")
	return res, nil
}

// enrich fills detail fields article by article. Failures are logged and the
// article keeps its listing data. It stops early when ctx is done.
func (u *Updater) enrich(ctx context.Context, articles []*scholarbib.Article) int {
	enriched := 0
	for i, a := range articles {
		if ctx.Err() != nil {
			break
		}
		u.log.Debug().Int("n", i+1).Int("of", len(articles)).Str("title", a.Title).Msg("fetching details")
		if err := u.source.QueryArticle(ctx, a); err != nil {
			u.log.Warn().Err(err).Str("title", a.Title).Msg("could not fetch details")
			continue
		}
		if a.Journal == "" {
			a.Journal = a.Venue
		}
		enriched++
	}
	return enriched
}
