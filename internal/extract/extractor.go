package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/nao1215/dirscrape/internal/config"
	"github.com/nao1215/dirscrape/internal/model"
)

// Extractor finds links and records in directory pages.
// It is stateless after construction and safe for concurrent use.
type Extractor struct {
	pagination  cascadia.Selector
	detailLink  cascadia.Selector
	card        cascadia.Selector
	name        cascadia.Selector
	description cascadia.Selector

	labels config.Labels
}

// Page is the result of extracting everything from one document.
type Page struct {
	// PaginationLinks are the absolute links of the page navigation.
	PaginationLinks []string

	// EnterpriseLinks are the absolute links to member detail pages.
	EnterpriseLinks []string

	// Record is the member record, valid only when HasRecord is true.
	Record model.Record

	// HasRecord reports whether the page had a detail card.
	HasRecord bool
}

// Links returns pagination links followed by enterprise links.
func (p *Page) Links() []string {
	links := make([]string, 0, len(p.PaginationLinks)+len(p.EnterpriseLinks))
	links = append(links, p.PaginationLinks...)
	return append(links, p.EnterpriseLinks...)
}

// New compiles the selectors of site. Missing values are not filled in
// here; callers pass a profile resolved by config.File.GetSiteConfig or
// config.DefaultSiteConfig. An empty label disables its field.
func New(site config.SiteConfig) (*Extractor, error) {
	e := &Extractor{labels: site.Labels}

	for _, s := range []struct {
		name   string
		source string
		dst    *cascadia.Selector
	}{
		{"pagination", site.Selectors.Pagination, &e.pagination},
		{"detailLink", site.Selectors.DetailLink, &e.detailLink},
		{"card", site.Selectors.Card, &e.card},
		{"name", site.Selectors.Name, &e.name},
		{"description", site.Selectors.Description, &e.description},
	} {
		if strings.TrimSpace(s.source) == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidSelector, s.name)
		}
		sel, err := cascadia.Compile(s.source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidSelector, s.name, s.source, err)
		}
		*s.dst = sel
	}

	return e, nil
}

// Default returns an Extractor for the built-in site profile.
func Default() *Extractor {
	e, err := New(config.DefaultSiteConfig())
	if err != nil {
		panic("extract: built-in selectors do not compile: " + err.Error())
	}
	return e
}

// Extract parses body once and runs every extraction over it.
func (e *Extractor) Extract(body string) (*Page, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	page := &Page{
		PaginationLinks: absoluteLinks(doc.FindMatcher(e.pagination)),
		EnterpriseLinks: absoluteLinks(doc.FindMatcher(e.detailLink)),
	}
	page.Record, page.HasRecord = e.record(doc)

	return page, nil
}

// PaginationLinks returns the absolute hrefs of the pagination anchors.
func (e *Extractor) PaginationLinks(body string) []string {
	doc, err := parse(body)
	if err != nil {
		return []string{}
	}
	return absoluteLinks(doc.FindMatcher(e.pagination))
}

// EnterpriseLinks returns the absolute hrefs of member detail anchors.
func (e *Extractor) EnterpriseLinks(body string) []string {
	doc, err := parse(body)
	if err != nil {
		return []string{}
	}
	return absoluteLinks(doc.FindMatcher(e.detailLink))
}

// Record returns the member record of body, or false if body has no
// detail card.
func (e *Extractor) Record(body string) (model.Record, bool) {
	doc, err := parse(body)
	if err != nil {
		return model.Record{}, false
	}
	return e.record(doc)
}

func (e *Extractor) record(doc *goquery.Document) (model.Record, bool) {
	card := doc.FindMatcher(e.card).First()
	if card.Length() == 0 {
		return model.Record{}, false
	}

	var rec model.Record
	rec.Name = strings.TrimSpace(card.FindMatcher(e.name).Text())

	// A later block overwrites what an earlier block set.
	card.FindMatcher(e.description).Each(func(_ int, block *goquery.Selection) {
		blob := block.Text()
		for _, f := range []struct {
			label string
			dst   *string
		}{
			{e.labels.Address, &rec.Address},
			{e.labels.Phone, &rec.Phone},
			{e.labels.Email, &rec.Email},
			{e.labels.ContactPerson, &rec.ContactPerson},
		} {
			if v, ok := SliceAfterLabel(blob, f.label); ok {
				*f.dst = v
			}
		}
	})

	return rec, true
}

// parse builds the document tree. html.Parse only fails on reader errors,
// which a strings.Reader never returns, but the error is kept for callers.
func parse(body string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// absoluteLinks returns the hrefs of sel that start with http:// or
// https://, in document order.
func absoluteLinks(sel *goquery.Selection) []string {
	links := make([]string, 0, sel.Length())
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			links = append(links, href)
		}
	})
	return links
}
