/*
Package focus ranks candidate links by how likely they are to carry contact
information. Lower scores are fetched first.

Responsibilities:
- Score a URL from its path and query alone, without fetching it
- Reward contact-ish keywords, penalize documentation and asset paths
- Stay deterministic so crawl order is reproducible
*/
package focus

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Keyword weights. Negative pulls a link forward in the queue.
var keywordWeights = map[string]int{
	"contact":   -50,
	"contacts":  -50,
	"impressum": -50,
	"support":   -40,
	"help":      -25,
	"about":     -20,
	"legal":     -20,
	"privacy":   -20,
	"policy":    -15,
	"terms":     -15,
	"faq":       -10,
	"feedback":  -10,
	"company":   -5,
	"team":      -5,
	"docs":      40,
	"rfc":       40,
	"archive":   30,
	"spec":      30,
	"doc":       20,
	"blog":      20,
	"news":      20,
	"press":     20,
	"media":     20,
	"release":   10,
	"releases":  10,
	"changelog": 10,
	"events":    10,
	"jobs":      10,
	"careers":   10,
}

// File extensions that rarely contain extractable contacts.
var extensionWeights = map[string]int{
	"zip":  300,
	"7z":   300,
	"rar":  300,
	"tar":  300,
	"gz":   300,
	"bz2":  300,
	"xz":   300,
	"exe":  300,
	"msi":  300,
	"dmg":  300,
	"iso":  300,
	"pdf":  250,
	"png":  200,
	"jpg":  200,
	"jpeg": 200,
	"gif":  200,
	"webp": 200,
	"svg":  100,
	"ico":  100,
	"css":  100,
	"js":   100,
	"json": 80,
	"xml":  80,
	"rss":  80,
	"txt":  50,
	"md":   50,
}

var rootPaths = map[string]struct{}{
	"/":           {},
	"/index.html": {},
	"/index.htm":  {},
}

// Score rates a URL for crawl priority; lower means more promising for
// contact extraction. Unparseable URLs score 0.
func Score(rawURL string) int {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}

	urlPath := parsed.Path
	if urlPath == "" {
		urlPath = "/"
	}
	haystack := strings.ToLower(urlPath)
	if parsed.RawQuery != "" {
		haystack += "?" + strings.ToLower(parsed.RawQuery)
	}

	// A keyword weighs in once no matter how often it appears.
	tokens := make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(haystack, -1) {
		tokens[token] = struct{}{}
	}

	score := 0
	for token := range tokens {
		if weight, ok := keywordWeights[token]; ok {
			score += weight
		}
	}

	if parsed.RawQuery != "" {
		score += 10
	}

	segments := 0
	for _, segment := range strings.Split(urlPath, "/") {
		if segment != "" {
			segments++
		}
	}
	if segments > 10 {
		segments = 10
	}
	score += segments

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(urlPath), "."))
	if weight, ok := extensionWeights[ext]; ok {
		score += weight
	}

	if _, ok := rootPaths[strings.ToLower(urlPath)]; ok {
		score -= 5
	}

	return score
}
