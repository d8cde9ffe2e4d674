package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
)

const regionUnknown = "ZZ"

// Candidate runs of digits and common separators. Validation against
// phonenumbers decides what actually is a number.
var (
	phoneCandidatePattern = regexp.MustCompile(`\+?[0-9][0-9\s().-]{5,}[0-9]`)
	internationalPattern  = regexp.MustCompile(`\+[0-9][0-9\s().-]{5,}[0-9]`)
	iddCandidatePattern   = regexp.MustCompile(
		`(?:^|[^\d+])((?:00|011)[\s().-]*[1-9](?:[\s().-]*\d){6,})`,
	)
	iddPrefixPattern = regexp.MustCompile(`^(?:00|011)`)
)

// Phones extracts phone numbers in E.164 format from the page text and
// document. Regional candidates are parsed against each region in order;
// "+"-prefixed and 00/011-prefixed candidates need no region. tel links are
// always considered.
func Phones(text string, doc *goquery.Document, regions []string) map[string]struct{} {
	phones := make(map[string]struct{})
	effectiveRegions := effectiveRegions(regions)
	add := func(number *phonenumbers.PhoneNumber) {
		if number != nil && isValidPhone(number) {
			phones[phonenumbers.Format(number, phonenumbers.E164)] = struct{}{}
		}
	}

	for _, region := range effectiveRegions {
		for _, candidate := range phoneCandidatePattern.FindAllString(text, -1) {
			add(parsePhone(candidate, region))
		}
	}

	for _, candidate := range internationalPattern.FindAllString(text, -1) {
		add(parsePhone(candidate, regionUnknown))
	}

	for _, match := range iddCandidatePattern.FindAllStringSubmatch(text, -1) {
		candidate := normalizeIDDPrefix(match[1])
		if strings.HasPrefix(candidate, "+") {
			add(parsePhone(candidate, regionUnknown))
		}
	}

	if doc != nil {
		doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)
			if !strings.HasPrefix(strings.ToLower(href), "tel:") {
				return
			}
			phone := parseTel(href)
			if phone == "" {
				return
			}

			normalized := normalizeIDDPrefix(phone)
			if strings.HasPrefix(normalized, "+") {
				add(parsePhone(normalized, regionUnknown))
				return
			}
			add(parsePhoneWithRegions(normalized, effectiveRegions))
		})
	}

	return phones
}

// parseTel pulls the raw number out of a tel link, dropping query parameters
// and URI parameters.
func parseTel(href string) string {
	raw := href[strings.Index(href, ":")+1:]
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[:i]
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return strings.TrimSpace(raw)
}

func normalizeIDDPrefix(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return value
	}
	return iddPrefixPattern.ReplaceAllString(value, "+")
}

func parsePhone(raw string, region string) *phonenumbers.PhoneNumber {
	if region == "" {
		region = regionUnknown
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return nil
	}
	return number
}

// parsePhoneWithRegions tries each region in order and returns the first
// valid interpretation.
func parsePhoneWithRegions(raw string, regions []string) *phonenumbers.PhoneNumber {
	for _, region := range regions {
		number := parsePhone(raw, region)
		if number != nil && isValidPhone(number) {
			return number
		}
	}
	return nil
}

func isValidPhone(number *phonenumbers.PhoneNumber) bool {
	return phonenumbers.IsPossibleNumber(number) && phonenumbers.IsValidNumber(number)
}

// effectiveRegions uppercases the configured regions and drops the unknown
// sentinel and duplicates.
func effectiveRegions(regions []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, region := range regions {
		cleaned := strings.ToUpper(strings.TrimSpace(region))
		if cleaned == "" || cleaned == regionUnknown {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
