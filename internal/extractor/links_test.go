package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohmanhakim/site-parser/internal/extractor"
)

func TestLinksInDocumentOrder(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a href="/first">one</a>
		<map><area href="/second" shape="rect" coords="0,0,1,1"></map>
		<a href="https://example.com/third">three</a>
		<a>no href</a>
		<a href="   ">blank</a>
	</body></html>`)

	links := extractor.Links(doc)
	assert.Equal(t, []string{"/first", "/second", "https://example.com/third"}, links)
}

func TestIsProbablyParseableHref(t *testing.T) {
	assert.True(t, extractor.IsProbablyParseableHref("/about"))
	assert.True(t, extractor.IsProbablyParseableHref("https://example.com/contact"))
	assert.True(t, extractor.IsProbablyParseableHref("page.html#anchor"))

	assert.False(t, extractor.IsProbablyParseableHref("mailto:info@example.com"))
	assert.False(t, extractor.IsProbablyParseableHref("tel:+79536405368"))
	assert.False(t, extractor.IsProbablyParseableHref("javascript:void(0)"))
	assert.False(t, extractor.IsProbablyParseableHref("data:text/html,hello"))
	assert.False(t, extractor.IsProbablyParseableHref("  "))
}

func TestFlattenText(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<h1>Contacts</h1>
		<p>Call   us:
		8 (800) 555-35-35</p>
	</body></html>`)

	text := extractor.FlattenText(doc)
	assert.Contains(t, text, "Contacts")
	assert.Contains(t, text, "Call us: 8 (800) 555-35-35")
}
