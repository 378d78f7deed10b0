package updater

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scholarbib "github.com/compscidr/scholarbib"
	"github.com/compscidr/scholarbib/internal/bibtex"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// fakeSource returns a canned profile and records detail requests.
type fakeSource struct {
	profile    *scholarbib.Profile
	err        error
	articleErr error
	details    []string
}

func (f *fakeSource) QueryProfile(ctx context.Context, user string, limit int) (*scholarbib.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeSource) QueryArticle(ctx context.Context, a *scholarbib.Article) error {
	f.details = append(f.details, a.Title)
	if f.articleErr != nil {
		return f.articleErr
	}
	a.Publisher = "Some Publisher"
	return nil
}

func newTestUpdater(src Source) *Updater {
	r := bibtex.NewRenderer(bibtex.DefaultKeyPrefix, nil)
	r.Now = func() time.Time { return fixedNow }
	u := New(src, r, zerolog.Nop())
	u.now = func() time.Time { return fixedNow }
	return u
}

func threeArticles() *scholarbib.Profile {
	return &scholarbib.Profile{
		User: "JlIWcccAAAAJ",
		Name: "Test Author",
		Articles: []*scholarbib.Article{
			{Title: "Alpha paper", Authors: "A Author", Venue: "Journal of Chemical Physics", Year: 2020, NumCitations: 5},
			{Title: "Beta paper", Authors: "B Author", Venue: "Physical Review B", Year: 2019, NumCitations: 99},
			{Title: "Gamma paper", Authors: "C Author", Venue: "Chemical Science", Year: 2020, NumCitations: 10},
		},
	}
}

func bibPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "_bibliography", "papers.bib")
}

func TestRunWritesSortedBibliography(t *testing.T) {
	path := bibPath(t)
	u := newTestUpdater(&fakeSource{profile: threeArticles()})

	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, 3, res.Publications)
	assert.Equal(t, "Test Author", res.Author)
	assert.False(t, res.BackedUp)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "---\n---\n"))
	assert.Contains(t, content, "Last updated: 2026-10-17 09:30:00")
	assert.Contains(t, content, "Scholar ID: JlIWcccAAAAJ")

	gamma := strings.Index(content, "Gamma paper")
	alpha := strings.Index(content, "Alpha paper")
	beta := strings.Index(content, "Beta paper")
	require.True(t, gamma > 0 && alpha > 0 && beta > 0)
	assert.Less(t, gamma, alpha)
	assert.Less(t, alpha, beta)

	// journal falls back to the listing venue
	assert.Contains(t, content, "journal={Journal of Chemical Physics}")
	assert.Contains(t, content, "abbr={J. Chem. Phys.}")
	assert.Contains(t, content, "selected={true}")
}

func TestRunOutputIsAlreadySorted(t *testing.T) {
	path := bibPath(t)
	u := newTestUpdater(&fakeSource{profile: threeArticles()})
	_, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sorted, blocks := bibtex.Sort(string(data))
	assert.Len(t, blocks, 3)
	assert.Equal(t, string(data), sorted)
}

func TestRunBacksUpExistingFile(t *testing.T) {
	path := bibPath(t)
	require.NoError(t, bibtex.WriteFile(path, "old contents\n"))

	u := newTestUpdater(&fakeSource{profile: threeArticles()})
	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path})
	require.NoError(t, err)
	assert.True(t, res.BackedUp)

	backup, err := os.ReadFile(bibtex.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "old contents\n", string(backup))
}

func TestRunFetchFailureKeepsFile(t *testing.T) {
	path := bibPath(t)
	require.NoError(t, bibtex.WriteFile(path, "old contents\n"))

	u := newTestUpdater(&fakeSource{err: scholarbib.ErrRetriesExhausted})
	_, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path})
	require.Error(t, err)
	assert.ErrorIs(t, err, scholarbib.ErrRetriesExhausted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old contents\n", string(data))
	assert.NoFileExists(t, bibtex.BackupPath(path))
}

func TestRunEmptyProfileKeepsFile(t *testing.T) {
	path := bibPath(t)
	require.NoError(t, bibtex.WriteFile(path, "old contents\n"))

	u := newTestUpdater(&fakeSource{profile: &scholarbib.Profile{Name: "Nobody"}})
	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path})
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, res.Status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old contents\n", string(data))
}

func TestRunDisabled(t *testing.T) {
	path := bibPath(t)
	src := &fakeSource{err: errors.New("must not be called")}
	u := newTestUpdater(src)

	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path, Disabled: true})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.NoFileExists(t, path)
}

func TestRunRequiresUser(t *testing.T) {
	u := newTestUpdater(&fakeSource{profile: threeArticles()})
	_, err := u.Run(context.Background(), Options{Path: bibPath(t)})
	require.Error(t, err)
}

func TestRunDetails(t *testing.T) {
	path := bibPath(t)
	src := &fakeSource{profile: threeArticles()}
	u := newTestUpdater(src)

	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path, Details: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Enriched)
	assert.Len(t, src.details, 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "publisher={Some Publisher}"))
}

func TestRunDetailFailuresAreNotFatal(t *testing.T) {
	path := bibPath(t)
	src := &fakeSource{profile: threeArticles(), articleErr: scholarbib.ErrRateLimited}
	u := newTestUpdater(src)

	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path, Details: true})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, 0, res.Enriched)
	assert.Len(t, src.details, 3)
	assert.FileExists(t, path)
}

// fixtureClient serves the scraper fixtures of the root package.
type fixtureClient struct {
	requests int
}

func (c *fixtureClient) Do(req *http.Request) (*http.Response, error) {
	c.requests++
	name := "../../testdata/profile.html"
	if strings.Contains(req.URL.RawQuery, "view_citation") {
		name = "../../testdata/article.html"
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &http.Response{StatusCode: http.StatusOK, Status: "200 OK", Body: io.NopCloser(f)}, nil
}

func TestRunAgainstScraper(t *testing.T) {
	path := bibPath(t)
	client := &fixtureClient{}
	sch := scholarbib.New(
		scholarbib.WithHTTPClient(client),
		scholarbib.WithRequestDelay(0),
	)
	u := newTestUpdater(sch)

	res, err := u.Run(context.Background(), Options{User: "JlIWcccAAAAJ", Path: path})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Publications)
	assert.Equal(t, "Farnaz Heidar-Zadeh", res.Author)
	assert.Equal(t, 1, client.requests)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 5, strings.Count(content, "bibtex_show={true}"))
	assert.Contains(t, content, "@inproceedings{heidarzadeh2019fragmentbasedconceptualdft,")
	assert.Contains(t, content, "google_scholar_id={u5HHmVD_uO8C}")

	sorted, _ := bibtex.Sort(content)
	assert.Equal(t, content, sorted)
}

func TestRunCancelledDuringDetails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := bibPath(t)
	src := &fakeSource{profile: threeArticles()}
	u := newTestUpdater(src)
	_, err := u.Run(ctx, Options{User: "JlIWcccAAAAJ", Path: path, Details: true})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.details)
	assert.NoFileExists(t, path)
}
