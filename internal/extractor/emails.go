package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mcnijman/go-emailaddress"
)

var emailCandidatePattern = regexp.MustCompile(
	`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`,
)

// Stricter shape check applied after lowercasing: rejects doubled dots and
// other near-misses the candidate pattern lets through.
var emailShapePattern = regexp.MustCompile(
	`^[a-z0-9._%+-]+@[a-z0-9-]+(\.[a-z0-9-]+)*\.[a-z]{2,}$`,
)

const emailTrimCutset = ".,;:()[]<>\"'"

// Emails extracts validated, lowercased e-mail addresses from the page text
// and document. Sources are the text itself, mailto links and JS-cloaked
// addresses. When allowedDomains is non-empty, only addresses whose domain
// equals an entry or is a subdomain of one survive.
func Emails(text string, doc *goquery.Document, allowedDomains []string) map[string]struct{} {
	emails := make(map[string]struct{})
	add := func(candidate string) {
		if normalized, ok := normalizeEmail(candidate, allowedDomains); ok {
			emails[normalized] = struct{}{}
		}
	}

	for _, match := range emailCandidatePattern.FindAllString(text, -1) {
		add(strings.Trim(match, emailTrimCutset))
	}

	if doc != nil {
		doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)
			if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
				return
			}
			if address := parseMailto(href); address != "" {
				add(address)
			}
		})
		for _, address := range cloakedEmails(doc) {
			add(address)
		}
	}

	return emails
}

// parseMailto pulls the first address out of a mailto link, dropping query
// parameters and percent-encoding.
func parseMailto(href string) string {
	raw := href[strings.Index(href, ":")+1:]
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[:i]
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

// normalizeEmail validates a candidate and returns its lowercase form.
func normalizeEmail(candidate string, allowedDomains []string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(candidate))
	if value == "" {
		return "", false
	}
	if !emailShapePattern.MatchString(value) {
		return "", false
	}
	parsed, err := emailaddress.Parse(value)
	if err != nil {
		return "", false
	}
	if len(allowedDomains) > 0 && !domainAllowed(parsed.Domain, allowedDomains) {
		return "", false
	}
	return value, true
}

func domainAllowed(domain string, allowedDomains []string) bool {
	domain = strings.ToLower(domain)
	for _, suffix := range allowedDomains {
		if domain == suffix || strings.HasSuffix(domain, "."+suffix) {
			return true
		}
	}
	return false
}
