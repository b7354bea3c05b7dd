package util

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// HTMLToText returns the visible text of an HTML fragment, whitespace
// collapsed. Unparseable input is returned cleaned as-is.
func HTMLToText(h string) string {
	if !strings.ContainsAny(h, "<&") {
		return CleanText(h)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(h))
	if err != nil {
		return CleanText(h)
	}
	doc.Find("script, style, noscript").Remove()
	// keep words from adjacent block elements apart
	doc.Find("br, p, li, div, h1, h2, h3, h4, td").AppendHtml(" ")
	return CleanText(doc.Text())
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view all") || l == "apply" || l == "apply now"
}
