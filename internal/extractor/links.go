package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Schemes whose hrefs never lead to a fetchable page.
var unfetchableSchemes = map[string]struct{}{
	"mailto":     {},
	"tel":        {},
	"javascript": {},
	"data":       {},
}

// Links returns the non-empty href values of all a and area tags, in
// document order.
func Links(doc *goquery.Document) []string {
	var links []string
	doc.Find("a, area").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		links = append(links, href)
	})
	return links
}

// IsProbablyParseableHref reports whether an href could lead to a page worth
// fetching, i.e. it does not carry a known non-document scheme.
func IsProbablyParseableHref(href string) bool {
	lowered := strings.ToLower(strings.TrimSpace(href))
	if lowered == "" {
		return false
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		// Let URL normalization make the final call.
		return true
	}
	if parsed.Scheme == "" {
		return true
	}
	_, blocked := unfetchableSchemes[parsed.Scheme]
	return !blocked
}
