package extractor_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/site-parser/internal/extractor"
)

func mustDoc(t *testing.T, rawHTML string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	require.NoError(t, err)
	return doc
}

func emailSet(t *testing.T, rawHTML string, allowlist []string) map[string]struct{} {
	t.Helper()
	doc := mustDoc(t, rawHTML)
	return extractor.Emails(extractor.FlattenText(doc), doc, allowlist)
}

func TestEmailsFromText(t *testing.T) {
	emails := emailSet(t, `<html><body>
		Write to Sales@Example.com or support@firm.ru.
	</body></html>`, nil)

	assert.Contains(t, emails, "sales@example.com")
	assert.Contains(t, emails, "support@firm.ru")
	assert.Len(t, emails, 2)
}

func TestEmailsStripSurroundingPunctuation(t *testing.T) {
	emails := emailSet(t, `<html><body>
		(info@example.com), [help@example.com]; "press@example.com"
	</body></html>`, nil)

	assert.Contains(t, emails, "info@example.com")
	assert.Contains(t, emails, "help@example.com")
	assert.Contains(t, emails, "press@example.com")
}

func TestEmailsFromMailto(t *testing.T) {
	emails := emailSet(t, `<html><body>
		<a href="mailto:first@example.com?subject=Hello">write</a>
		<a href="MAILTO:second%40example.com">encoded</a>
		<a href="mailto:third@example.com,ignored@example.com">list</a>
	</body></html>`, nil)

	assert.Contains(t, emails, "first@example.com")
	assert.Contains(t, emails, "second@example.com")
	assert.Contains(t, emails, "third@example.com")
	assert.NotContains(t, emails, "ignored@example.com")
}

func TestEmailsRejectInvalidCandidates(t *testing.T) {
	emails := emailSet(t, `<html><body>
		bad@@example.com a@b..com trailing@example.
		<a href="mailto:not%26valid@exa mple.com">broken</a>
	</body></html>`, nil)

	assert.Empty(t, emails)
}

func TestEmailsAllowlist(t *testing.T) {
	page := `<html><body>
		a@gmail.com b@mail.ru c@sub.mail.ru d@yahoo.com e@notgmail.com
	</body></html>`
	emails := emailSet(t, page, []string{"gmail.com", "mail.ru"})

	assert.Contains(t, emails, "a@gmail.com")
	assert.Contains(t, emails, "b@mail.ru")
	assert.Contains(t, emails, "c@sub.mail.ru")
	assert.NotContains(t, emails, "d@yahoo.com")
	assert.NotContains(t, emails, "e@notgmail.com")
}

func TestEmailsFromCloakedScript(t *testing.T) {
	page := `<html><body>
	<span id="cloak12345">This email address is being protected from spambots.</span>
	<script type="text/javascript">
		document.getElementById('cloak12345').innerHTML = '';
		var prefix = 'ma' + 'il' + 'to';
		var path = 'hr' + 'ef' + '=';
		var addy12345 = 'info' + '&#64;';
		addy12345 = addy12345 + 'kagrifon' + '&#46;' + 'ru';
		var addy_text12345 = 'info' + '&#64;' + 'kagrifon' + '&#46;' + 'ru';
		document.getElementById('cloak12345').innerHTML += '<a ' + path + '\'' + prefix + ':' + addy12345 + '\'>' + addy_text12345 + '</a>';
	</script>
	</body></html>`
	emails := emailSet(t, page, nil)

	assert.Contains(t, emails, "info@kagrifon.ru")
}

func TestEmailsLowercased(t *testing.T) {
	emails := emailSet(t, `<html><body>MiXeD@ExAmPlE.CoM</body></html>`, nil)
	assert.Contains(t, emails, "mixed@example.com")
	assert.Len(t, emails, 1)
}
