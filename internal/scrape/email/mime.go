package email_scrape

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"fintechjobs-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxBody = 8 << 20
	maxPart = 4 << 20
)

var reNakedURL = regexp.MustCompile(`https?://[^\s<>"']+`)

// Parsed is the readable content of one RFC822 message.
type Parsed struct {
	MessageID string
	From      string
	Subject   string
	Date      time.Time
	Text      string // text/plain part, or the HTML part as text
	HTML      string
}

// ParseRFC822 decodes headers (RFC 2047 included) and picks the largest
// text/plain and text/html parts. Unparseable input is kept as text.
func ParseRFC822(raw []byte) Parsed {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return Parsed{Text: string(raw)}
	}

	h := msg.Header
	p := Parsed{
		MessageID: strings.TrimSpace(h.Get("Message-Id")),
		From:      decodeRFC2047(h.Get("From")),
		Subject:   decodeRFC2047(h.Get("Subject")),
	}
	if d, err := mail.ParseDate(h.Get("Date")); err == nil {
		p.Date = d
	}

	body, _ := io.ReadAll(io.LimitReader(msg.Body, maxBody))
	plain, htmlPart := textParts(h.Get("Content-Type"), h.Get("Content-Transfer-Encoding"), body)
	p.HTML = htmlPart
	switch {
	case strings.TrimSpace(plain) != "":
		p.Text = plain
	case htmlPart != "":
		p.Text = util.HTMLToText(htmlPart)
	default:
		p.Text = string(body)
	}
	return p
}

func textParts(contentType, cte string, body []byte) (plain, htmlPart string) {
	cte = strings.ToLower(strings.TrimSpace(cte))
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if !strings.HasPrefix(mediaType, "multipart/") {
		s := string(decodeTransferEncoding(body, cte))
		if strings.HasPrefix(mediaType, "text/html") {
			return "", s
		}
		return s, ""
	}

	boundary := params["boundary"]
	if boundary == "" {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		b, _ := io.ReadAll(io.LimitReader(part, maxPart))
		pt := part.Header.Get("Content-Type")
		pcte := part.Header.Get("Content-Transfer-Encoding")

		pm, _, _ := mime.ParseMediaType(pt)
		pm = strings.ToLower(pm)
		if pm != "" && !strings.HasPrefix(pm, "multipart/") && !strings.HasPrefix(pm, "text/") {
			continue // attachment
		}
		pl, ht := textParts(pt, pcte, b)
		if len(pl) > len(plain) {
			plain = pl
		}
		if len(ht) > len(htmlPart) {
			htmlPart = ht
		}
	}
	return plain, htmlPart
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	var r io.Reader
	switch cte {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
	case "quoted-printable":
		r = quotedprintable.NewReader(bytes.NewReader(b))
	default:
		return b
	}
	out, err := io.ReadAll(io.LimitReader(r, maxPart))
	if err != nil && len(out) == 0 {
		return b
	}
	return out
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	out, err := new(mime.WordDecoder).DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

// Links returns the http(s) links of a message: anchors of the HTML part
// and bare URLs of the text.
func (p Parsed) Links() []string {
	seen := map[string]bool{}
	var out []string
	add := func(raw string) {
		u := util.CanonicalizeURL(strings.TrimRight(raw, ".,);:]\"'"))
		if u == "" || seen[u] || !strings.HasPrefix(u, "http") {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	if p.HTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML)); err == nil {
			doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				add(unwrapRedirect(href))
			})
		}
	}
	for _, u := range reNakedURL.FindAllString(p.Text, -1) {
		add(unwrapRedirect(u))
	}
	return out
}
