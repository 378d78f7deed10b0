package bibtex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	scholarbib "github.com/compscidr/scholarbib"
)

const (
	TypeArticle       = "article"
	TypeInProceedings = "inproceedings"
)

const (
	DefaultKeyPrefix         = "heidarzadeh"
	DefaultSelectedThreshold = 50
	DefaultAbstractLimit     = 500
)

// conferenceKeywords mark a venue as conference proceedings.
var conferenceKeywords = []string{
	"conference", "proceedings", "symposium", "workshop",
	"meeting", "proc", "congress", "summit",
}

var hyphensRe = regexp.MustCompile(`\s*[-–—]+\s*`)

// Field is one "name={value}" line of an entry.
type Field struct {
	Name  string
	Value string
}

// Entry is a rendered-ready bibliography entry. Groups are printed with a
// blank line between them; empty groups are skipped.
type Entry struct {
	Type   string
	Key    string
	Groups [][]Field
}

// String renders the entry. The last field carries no trailing comma.
func (e Entry) String() string {
	var groups []string
	for _, group := range e.Groups {
		if len(group) == 0 {
			continue
		}
		lines := make([]string, len(group))
		for i, f := range group {
			lines[i] = fmt.Sprintf("  %s={%s},", f.Name, f.Value)
		}
		groups = append(groups, strings.Join(lines, "\n"))
	}

	body := strings.TrimSuffix(strings.Join(groups, "\n\n"), ",")
	return fmt.Sprintf("@%s{%s,\n%s\n}", e.Type, e.Key, body)
}

// Renderer turns scraped articles into entries.
type Renderer struct {
	KeyPrefix         string
	SelectedThreshold int
	AbstractLimit     int
	Abbreviator       *Abbreviator
	Now               func() time.Time
}

func NewRenderer(keyPrefix string, abbreviator *Abbreviator) *Renderer {
	if abbreviator == nil {
		abbreviator = NewAbbreviator()
	}
	return &Renderer{
		KeyPrefix:         keyPrefix,
		SelectedThreshold: DefaultSelectedThreshold,
		AbstractLimit:     DefaultAbstractLimit,
		Abbreviator:       abbreviator,
		Now:               time.Now,
	}
}

// Key builds "<prefix><year><first three title words>", lower case.
func (r *Renderer) Key(title string, year int) string {
	return r.KeyPrefix + strconv.Itoa(year) + strings.ToLower(strings.Join(keyWords(title, 3), ""))
}

// EntryType is inproceedings for conference-like venues, article otherwise.
func EntryType(venue string) string {
	venue = strings.ToLower(venue)
	for _, keyword := range conferenceKeywords {
		if strings.Contains(venue, keyword) {
			return TypeInProceedings
		}
	}
	return TypeArticle
}

// Entry normalizes a into an Entry.
func (r *Renderer) Entry(a *scholarbib.Article) Entry {
	title := Clean(a.Title)
	if title == "" {
		title = "Unknown Title"
	}
	year := a.Year
	if year == 0 {
		year = r.Now().Year()
	}

	venue := a.Journal
	if venue == "" {
		venue = a.Venue
	}
	venue = Clean(venue)
	entryType := EntryType(venue)

	flags := []Field{{"bibtex_show", "true"}}
	if r.SelectedThreshold > 0 && a.NumCitations > r.SelectedThreshold {
		flags = append(flags, Field{"selected", "true"})
	}

	var core []Field
	core = append(core, Field{"title", title})
	if authors := FormatAuthors(a.Authors); authors != "" {
		core = append(core, Field{"author", authors})
	}
	if venue != "" {
		if entryType == TypeInProceedings {
			core = append(core, Field{"booktitle", venue})
		} else {
			core = append(core, Field{"journal", venue})
		}
	}
	core = appendIf(core, "volume", Clean(a.Volume))
	core = appendIf(core, "number", Clean(a.Number))
	core = appendIf(core, "pages", FormatPages(a.Pages))
	core = append(core, Field{"year", strconv.Itoa(year)})
	core = appendIf(core, "publisher", Clean(a.Publisher))

	var links []Field
	links = appendIf(links, "doi", a.DOI)
	links = appendIf(links, "url", a.ScholarURL)
	links = appendIf(links, "arxiv", a.ArxivURL)
	links = appendIf(links, "pdf", a.PdfURL)

	var abstract []Field
	abstract = appendIf(abstract, "abstract", r.truncate(Clean(a.Description)))

	var meta []Field
	if r.Abbreviator != nil {
		meta = appendIf(meta, "abbr", r.Abbreviator.Abbreviate(venue))
	}
	if a.NumCitations > 0 {
		meta = append(meta, Field{"note", "Cited by " + strconv.Itoa(a.NumCitations)})
	}
	meta = appendIf(meta, "google_scholar_id", scholarbib.ScholarID(a.ScholarURL))

	return Entry{
		Type:   entryType,
		Key:    r.Key(title, year),
		Groups: [][]Field{flags, core, links, abstract, meta},
	}
}

// Render is Entry(a).String().
func (r *Renderer) Render(a *scholarbib.Article) string {
	return r.Entry(a).String()
}

func (r *Renderer) truncate(s string) string {
	if r.AbstractLimit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= r.AbstractLimit {
		return s
	}
	return string(runes[:r.AbstractLimit]) + "..."
}

// FormatPages writes page ranges with the BibTeX "--" separator.
func FormatPages(pages string) string {
	return hyphensRe.ReplaceAllString(Clean(pages), "--")
}

func appendIf(fields []Field, name, value string) []Field {
	if value == "" {
		return fields
	}
	return append(fields, Field{name, value})
}
