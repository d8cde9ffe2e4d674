package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize applies a deterministic normalization to a URL, producing its
// canonical string form. It maps equivalent URL spellings to a single
// canonical representation; two URLs identify the same page iff their
// canonical forms are equal.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased; only http and https are accepted
//   - Default ports are omitted (:80 for http, :443 for https)
//   - An empty path becomes "/"
//   - Fragments are removed
//   - Query parameters are removed unless includeQuery is set
//   - Path and query keep their original case
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(url)) == Normalize(url)
//   - Context-free: does not depend on crawl history
func Normalize(rawURL string, includeQuery bool) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedURL, err.Error())
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, parsed.Scheme)
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return "", fmt.Errorf("%w: hostname is missing in %q", ErrMalformedURL, rawURL)
	}

	host := hostname
	if port := parsed.Port(); port != "" {
		defaultPort := (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
		if !defaultPort {
			host = hostname + ":" + port
		}
	}

	canonical := *parsed
	canonical.Scheme = scheme
	canonical.Host = host
	canonical.User = nil
	canonical.Fragment = ""
	canonical.RawFragment = ""
	if canonical.Path == "" {
		canonical.Path = "/"
	}
	if !includeQuery {
		canonical.RawQuery = ""
		canonical.ForceQuery = false
	}

	return canonical.String(), nil
}

// StripWWW removes a leading "www." from a hostname.
func StripWWW(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	return strings.TrimPrefix(host, "www.")
}

// HostnameKey returns the same-origin identity of a URL: the lowercased
// hostname with a leading "www." stripped.
func HostnameKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedURL, err.Error())
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("%w: hostname is missing in %q", ErrMalformedURL, rawURL)
	}
	return StripWWW(hostname), nil
}

// Origin returns "scheme://authority" for an absolute URL.
func Origin(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedURL, err.Error())
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: URL is not absolute: %q", ErrMalformedURL, rawURL)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

// IsSameDomain reports whether the URL belongs to the domain identified by
// baseHostnameKey (see HostnameKey).
func IsSameDomain(rawURL string, baseHostnameKey string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return false
	}
	return StripWWW(hostname) == baseHostnameKey
}

// RegionUnknown is the sentinel region meaning "no region / international
// only".
const RegionUnknown = "ZZ"

var tldRegions = map[string]string{
	"ru": "RU",
	"by": "BY",
	"kz": "KZ",
	"ua": "UA",
	"kg": "KG",
	"uz": "UZ",
	"am": "AM",
	"az": "AZ",
	"ge": "GE",
	"md": "MD",
	"ee": "EE",
	"lv": "LV",
	"lt": "LT",
	"pl": "PL",
	"de": "DE",
	"fr": "FR",
	"it": "IT",
	"es": "ES",
	"pt": "PT",
	"nl": "NL",
	"be": "BE",
	"ch": "CH",
	"at": "AT",
	"se": "SE",
	"no": "NO",
	"fi": "FI",
	"dk": "DK",
	"ie": "IE",
	"uk": "GB",
	"gb": "GB",
	"us": "US",
	"ca": "CA",
	"au": "AU",
	"nz": "NZ",
	"jp": "JP",
	"cn": "CN",
	"in": "IN",
}

// InferPhoneRegion guesses an ISO phone region from the URL's top-level
// domain. Unknown TLDs yield RegionUnknown.
func InferPhoneRegion(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return RegionUnknown
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return RegionUnknown
	}

	labels := strings.Split(strings.Trim(hostname, "."), ".")
	tld := strings.ToLower(labels[len(labels)-1])
	if region, ok := tldRegions[tld]; ok {
		return region
	}
	return RegionUnknown
}
