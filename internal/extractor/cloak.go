package extractor

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Joomla-style cloaking builds an address in script variables named addyNNN
// and addy_textNNN. We evaluate those assignments just enough to recover the
// concatenated string.
var cloakAssignmentPattern = regexp.MustCompile(
	`(?i)^(?:var\s+)?(addy_text[a-z0-9]+|addy[a-z0-9]+)\s*=\s*(.+)`,
)

var cloakTokenPattern = regexp.MustCompile(
	`'([^'\\]*(?:\\.[^'\\]*)*)'|"([^"\\]*(?:\\.[^"\\]*)*)"|([A-Za-z_][A-Za-z0-9_]*)`,
)

// cloakedEmails scans script elements for cloaked address assignments and
// returns every evaluated value containing "@".
func cloakedEmails(doc *goquery.Document) []string {
	var addresses []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		scriptText := sel.Text()
		if scriptText == "" {
			return
		}
		if !strings.Contains(scriptText, "cloak") && !strings.Contains(scriptText, "addy") {
			return
		}

		variables := make(map[string]string)
		for _, statement := range splitScriptStatements(scriptText) {
			statement = strings.TrimSpace(statement)
			if statement == "" {
				continue
			}
			match := cloakAssignmentPattern.FindStringSubmatch(statement)
			if match == nil {
				continue
			}
			name, expr := match[1], match[2]
			value := evalConcat(expr, variables)
			if value == "" {
				continue
			}
			variables[name] = value
			if strings.Contains(value, "@") {
				addresses = append(addresses, value)
			}
		}
	})
	return addresses
}

// evalConcat resolves a concatenation of string literals and previously
// assigned variables. Unknown identifiers contribute nothing.
func evalConcat(expr string, variables map[string]string) string {
	var builder strings.Builder
	for _, match := range cloakTokenPattern.FindAllStringSubmatch(expr, -1) {
		switch {
		case match[1] != "" || strings.HasPrefix(match[0], "'"):
			builder.WriteString(unescapeLiteral(match[1]))
		case match[2] != "" || strings.HasPrefix(match[0], `"`):
			builder.WriteString(unescapeLiteral(match[2]))
		case match[3] != "":
			builder.WriteString(variables[match[3]])
		}
	}
	return builder.String()
}

func unescapeLiteral(literal string) string {
	literal = strings.ReplaceAll(literal, `\'`, `'`)
	literal = strings.ReplaceAll(literal, `\\`, `\`)
	return html.UnescapeString(literal)
}

// splitScriptStatements splits script source on ";" while respecting string
// literals and backslash escapes inside them.
func splitScriptStatements(text string) []string {
	var parts []string
	var buffer strings.Builder
	inString := false
	escape := false
	var quote rune

	for _, ch := range text {
		if inString {
			buffer.WriteRune(ch)
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == quote:
				inString = false
			}
			continue
		}
		switch ch {
		case '\'', '"':
			inString = true
			quote = ch
			buffer.WriteRune(ch)
		case ';':
			parts = append(parts, buffer.String())
			buffer.Reset()
		default:
			buffer.WriteRune(ch)
		}
	}
	if buffer.Len() > 0 {
		parts = append(parts, buffer.String())
	}
	return parts
}
