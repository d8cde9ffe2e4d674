/*
Package extractor pulls contacts out of fetched HTML.

Responsibilities:
- Flatten an HTML document into searchable text
- Collect hyperlinks in document order
- Extract and validate e-mail addresses, including mailto links and
  JS-cloaked addresses
- Extract phone numbers in E.164 from text, tel links and international
  prefix forms
*/
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FlattenText returns the document's text content: every text node with its
// whitespace collapsed, joined with single spaces in document order.
func FlattenText(doc *goquery.Document) string {
	var parts []string
	for _, root := range doc.Nodes {
		collectText(root, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(node *html.Node, parts *[]string) {
	if node.Type == html.TextNode {
		if collapsed := strings.Join(strings.Fields(node.Data), " "); collapsed != "" {
			*parts = append(*parts, collapsed)
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}
