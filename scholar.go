// Package scholarbib scrapes Google Scholar profile pages into publication records.
package scholarbib

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const BaseURL = "https://scholar.google.com"

const (
	DefaultPageSize     = 100
	DefaultTimeout      = 45 * time.Second
	DefaultRequestDelay = 2 * time.Second
	DefaultArticleDelay = 3 * time.Second
)

// UserAgents are rotated by attempt number when a request is retried.
var UserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
}

// Article is one publication scraped from a profile. The profile row fills the
// basic fields, QueryArticle fills the optional ones.
type Article struct {
	Title         string
	Authors       string
	Venue         string
	ScholarURL    string
	Year          int
	NumCitations  int
	Description   string
	PdfURL        string
	ArxivURL      string
	DOI           string
	Journal       string
	Volume        string
	Number        string
	Pages         string
	Publisher     string
	LastRetrieved time.Time
}

type Profile struct {
	User          string
	Name          string
	Articles      []*Article
	LastRetrieved time.Time
}

// HTTPClient is the subset of *http.Client used by Scholar.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Scholar struct {
	client         HTTPClient
	baseURL        string
	pageSize       int
	requestDelay   time.Duration
	limiter        *rate.Limiter
	articleDelay   time.Duration
	articleLimiter *rate.Limiter
	profilePolicy  RetryPolicy
	articlePolicy  RetryPolicy
	log            zerolog.Logger
}

// Option configures a Scholar.
type Option func(*Scholar)

func WithHTTPClient(c HTTPClient) Option {
	return func(sch *Scholar) {
		sch.client = c
	}
}

// WithBaseURL points the client at another host (used by tests).
func WithBaseURL(url string) Option {
	return func(sch *Scholar) {
		sch.baseURL = url
	}
}

// WithPageSize sets how many rows QueryProfile asks for when no limit is given.
func WithPageSize(n int) Option {
	return func(sch *Scholar) {
		if n > 0 {
			sch.pageSize = n
		}
	}
}

func WithRequestDelay(d time.Duration) Option {
	return func(sch *Scholar) {
		sch.SetRequestDelay(d)
	}
}

// WithArticleDelay spaces QueryArticle calls on top of the request delay.
func WithArticleDelay(d time.Duration) Option {
	return func(sch *Scholar) {
		sch.SetArticleDelay(d)
	}
}

func WithProfileRetry(p RetryPolicy) Option {
	return func(sch *Scholar) {
		sch.profilePolicy = p
	}
}

func WithArticleRetry(p RetryPolicy) Option {
	return func(sch *Scholar) {
		sch.articlePolicy = p
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(sch *Scholar) {
		sch.log = l
	}
}

func New(opts ...Option) *Scholar {
	sch := &Scholar{
		client:        &http.Client{Timeout: DefaultTimeout},
		baseURL:       BaseURL,
		pageSize:      DefaultPageSize,
		profilePolicy: DefaultProfilePolicy(),
		articlePolicy: DefaultArticlePolicy(),
		log:           zerolog.Nop(),
	}
	sch.SetRequestDelay(DefaultRequestDelay)
	sch.SetArticleDelay(DefaultArticleDelay)
	for _, opt := range opts {
		opt(sch)
	}
	return sch
}

func (sch *Scholar) SetHTTPClient(c HTTPClient) {
	sch.client = c
}

// SetRequestDelay sets the minimum spacing between any two requests.
func (sch *Scholar) SetRequestDelay(d time.Duration) {
	sch.requestDelay = d
	sch.limiter = newLimiter(d)
}

// SetArticleDelay sets the minimum spacing between two detail page requests.
func (sch *Scholar) SetArticleDelay(d time.Duration) {
	sch.articleDelay = d
	sch.articleLimiter = newLimiter(d)
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

func (a Article) String() string {
	return fmt.Sprintf("Article(\n  Title=%s\n  Authors=%s\n  Venue=%s\n  Year=%d\n  NumCitations=%d\n  ScholarURL=%s\n  Journal=%s\n  Volume=%s\n  Number=%s\n  Pages=%s\n  Publisher=%s\n  DOI=%s\n  PdfURL=%s\n  ArxivURL=%s\n)",
		a.Title, a.Authors, a.Venue, a.Year, a.NumCitations, a.ScholarURL, a.Journal, a.Volume, a.Number, a.Pages, a.Publisher, a.DOI, a.PdfURL, a.ArxivURL)
}

// ProfileURL returns the listing URL for a user, sorted the way Scholar shows it.
// A pageSize <= 0 uses the configured page size.
func (sch *Scholar) ProfileURL(user string, pageSize int) string {
	if pageSize <= 0 {
		pageSize = sch.pageSize
	}
	return sch.baseURL + "/citations?user=" + user + "&hl=en&cstart=0&pagesize=" + strconv.Itoa(pageSize)
}

// QueryProfile fetches the profile listing of user and returns at most limit
// articles. A limit <= 0 keeps every row of a page of the configured size. Only
// the listing page is requested; use QueryArticle to fill in per-article details.
func (sch *Scholar) QueryProfile(ctx context.Context, user string, limit int) (*Profile, error) {
	url := sch.ProfileURL(user, limit)
	sch.log.Info().Str("user", user).Str("url", url).Msg("requesting profile")

	body, err := sch.fetch(ctx, url, sch.profilePolicy)
	if err != nil {
		return nil, fmt.Errorf("fetching profile %s: %w", user, err)
	}

	profile, err := ParseProfile(bytes.NewReader(body), sch.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", user, err)
	}
	profile.User = user
	profile.LastRetrieved = time.Now()
	if limit > 0 && len(profile.Articles) > limit {
		profile.Articles = profile.Articles[:limit]
	}

	sch.log.Info().
		Str("author", profile.Name).
		Int("publications", len(profile.Articles)).
		Msg("parsed profile")
	return profile, nil
}

// QueryArticle fetches the article's own Scholar page and fills the optional
// fields. On error the article keeps whatever it already had.
func (sch *Scholar) QueryArticle(ctx context.Context, article *Article) error {
	if article.ScholarURL == "" {
		return nil
	}
	if err := sch.articleLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("article pacing: %w", err)
	}
	sch.log.Debug().Str("url", article.ScholarURL).Msg("requesting article")

	body, err := sch.fetch(ctx, article.ScholarURL, sch.articlePolicy)
	if err != nil {
		return fmt.Errorf("fetching article %q: %w", article.Title, err)
	}
	if err := ParseArticle(bytes.NewReader(body), article); err != nil {
		return fmt.Errorf("parsing article %q: %w", article.Title, err)
	}
	article.LastRetrieved = time.Now()
	return nil
}
