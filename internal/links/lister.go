package links

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bankdir/ifsc-api/internal/fetcher"
	"github.com/bankdir/ifsc-api/internal/model"
)

// ErrNoLinks is returned when the listing page yields no spreadsheet links.
var ErrNoLinks = eris.New("links: no spreadsheet links found")

// Lister scrapes the source listing page for spreadsheet links.
type Lister struct {
	pageURL string
	fetcher fetcher.Fetcher
}

// NewLister creates a Lister for the given listing page URL.
func NewLister(pageURL string, f fetcher.Fetcher) *Lister {
	return &Lister{pageURL: pageURL, fetcher: f}
}

// List fetches the listing page and returns every anchor whose href ends
// in a recognized spreadsheet extension. Relative hrefs are resolved
// against the page URL. Fails when nothing matches.
func (l *Lister) List(ctx context.Context) ([]model.CandidateFile, error) {
	body, err := l.fetcher.Download(ctx, l.pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "links: fetch listing page")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "links: parse listing page")
	}

	base, err := url.Parse(l.pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "links: parse page url")
	}

	var items []model.CandidateFile
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if !isSpreadsheetHref(href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if title == "" {
			title = abs[strings.LastIndex(abs, "/")+1:]
		}
		items = append(items, model.CandidateFile{Title: title, URL: abs})
	})

	if len(items) == 0 {
		return nil, ErrNoLinks
	}

	zap.L().Debug("scraped listing page", zap.String("url", l.pageURL), zap.Int("links", len(items)))
	return items, nil
}

func isSpreadsheetHref(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".xlsx")
}
