package scholarbib

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const UnknownAuthor = "Unknown Author"

// venueDetailRe splits "Journal Name 122 (17), 4219-4245" into its parts.
var venueDetailRe = regexp.MustCompile(`^(.+?)\s+(\d+)(?:\s*\(([^)]*)\))?(?:,\s*(\S+))?\s*$`)

// ParseProfile reads a profile listing page. Rows without a title are skipped;
// every other missing field is left empty or zero.
func ParseProfile(r io.Reader, baseURL string) (*Profile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Name: UnknownAuthor}
	if name := strings.TrimSpace(doc.Find("#gsc_prf_in").First().Text()); name != "" {
		profile.Name = name
	}

	doc.Find("tr.gsc_a_tr").Each(func(i int, s *goquery.Selection) {
		if article := parseRow(s, baseURL); article != nil {
			profile.Articles = append(profile.Articles, article)
		}
	})
	return profile, nil
}

func parseRow(s *goquery.Selection, baseURL string) *Article {
	var article Article

	link := s.Find("td.gsc_a_t a.gsc_a_at").First()
	article.Title = strings.TrimSpace(link.Text())
	if article.Title == "" {
		return nil
	}
	if href, ok := link.Attr("href"); ok && href != "" {
		article.ScholarURL = baseURL + href
	}

	gray := s.Find("td.gsc_a_t div.gs_gray")
	switch {
	case gray.Length() >= 2:
		article.Authors = strings.TrimSpace(gray.Eq(0).Text())
		venue := gray.Eq(1).Clone()
		venue.Find(".gs_oph").Remove()
		article.Venue = strings.TrimSpace(venue.Text())
	case gray.Length() == 1:
		text := strings.TrimSpace(gray.Text())
		if authors, venue, ok := strings.Cut(text, " - "); ok {
			article.Authors = strings.TrimSpace(authors)
			article.Venue = strings.TrimSpace(venue)
		} else {
			article.Authors = text
		}
	}
	article.Venue, article.Volume, article.Number, article.Pages = SplitVenue(article.Venue)

	article.NumCitations = atoiDigits(s.Find("td.gsc_a_c a.gsc_a_ac").First().Text())
	article.Year = atoiDigits(s.Find("td.gsc_a_y span.gsc_a_h").First().Text())
	return &article
}

// SplitVenue separates the volume, issue and pages Scholar appends to a venue.
// Venues without trailing numbers are returned unchanged.
func SplitVenue(venue string) (name, volume, number, pages string) {
	m := venueDetailRe.FindStringSubmatch(venue)
	if m == nil {
		return venue, "", "", ""
	}
	return m[1], m[2], m[3], m[4]
}

// ParseArticle reads an article details page into article. Fields already set
// on article are overwritten only by non-empty values.
func ParseArticle(r io.Reader, article *Article) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return err
	}

	doc.Find(".gs_scl").Each(func(i int, s *goquery.Selection) {
		field := strings.ToLower(strings.TrimSpace(s.Find(".gsc_oci_field").Text()))
		value := strings.TrimSpace(s.Find(".gsc_oci_value").Text())
		if field == "" || value == "" {
			return
		}
		switch {
		case strings.Contains(field, "journal"), strings.Contains(field, "conference"),
			strings.Contains(field, "book"), field == "source":
			article.Journal = value
		case strings.Contains(field, "volume"):
			article.Volume = value
		case strings.Contains(field, "issue"), strings.Contains(field, "number"):
			article.Number = value
		case strings.Contains(field, "pages"):
			article.Pages = value
		case strings.Contains(field, "publisher"):
			article.Publisher = value
		case strings.Contains(field, "doi"):
			article.DOI = value
		case strings.Contains(field, "description"):
			article.Description = value
		case strings.Contains(field, "publication date"):
			if year, _, _ := strings.Cut(value, "/"); article.Year == 0 {
				article.Year = atoiDigits(year)
			}
		case field == "authors":
			article.Authors = value
		}
	})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch {
		case strings.Contains(href, "doi.org/"):
			article.DOI = href[strings.LastIndex(href, "doi.org/")+len("doi.org/"):]
		case strings.Contains(href, "arxiv.org"):
			article.ArxivURL = href
		case strings.HasSuffix(strings.ToLower(href), ".pdf"):
			article.PdfURL = href
		}
	})
	return nil
}

// ScholarID extracts the article id from a citation_for_view URL
// (".../citations?...&citation_for_view=USER:ID").
func ScholarID(scholarURL string) string {
	_, rest, ok := strings.Cut(scholarURL, "citation_for_view=")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '&'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		rest = rest[i+1:]
	}
	return rest
}

func atoiDigits(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, _ := strconv.Atoi(s)
	return n
}
