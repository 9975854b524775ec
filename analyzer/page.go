package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Precompiled selectors shared by the analyzers.
var (
	selTitle      = cascadia.MustCompile("title")
	selMeta       = cascadia.MustCompile("meta")
	selLink       = cascadia.MustCompile("link[rel]")
	selH1         = cascadia.MustCompile("h1")
	selH2         = cascadia.MustCompile("h2")
	selH3         = cascadia.MustCompile("h3")
	selImg        = cascadia.MustCompile("img")
	selAnchor     = cascadia.MustCompile("a[href]")
	selNoscript   = cascadia.MustCompile("noscript")
	selBody       = cascadia.MustCompile("body")
	selNonVisible = cascadia.MustCompile("script, style, noscript, template")
	selJSONLD     = cascadia.MustCompile(`script[type="application/ld+json"]`)
)

// Page is a parsed document plus what every analyzer needs from it. It is
// read-only once built.
type Page struct {
	Doc      *goquery.Document
	Title    string
	Keywords []string

	// noscript holds the re-parsed content of each <noscript> element; the
	// parser keeps it as raw text.
	noscript []*goquery.Document
}

// pageTitle is the text of the first document title. Titles inside inline
// SVG label the graphic, not the page.
func pageTitle(doc *goquery.Document) string {
	title := doc.FindMatcher(selTitle).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest("svg").Length() == 0
	}).First()
	return strings.TrimSpace(title.Text())
}

// NewPage prepares doc for analysis.
func NewPage(doc *goquery.Document) *Page {
	title := pageTitle(doc)
	p := &Page{
		Doc:      doc,
		Title:    title,
		Keywords: ExtractKeywords(title),
	}

	doc.FindMatcher(selNoscript).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err != nil {
			return
		}
		p.noscript = append(p.noscript, inner)
	})
	return p
}

// ParseHTML parses html into a Page.
func ParseHTML(html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return NewPage(doc), nil
}

// meta returns the trimmed content of the first meta tag whose name or
// property matches key case-insensitively.
func (p *Page) meta(key string) (string, bool) {
	var content string
	found := false
	p.Doc.FindMatcher(selMeta).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		prop, _ := s.Attr("property")
		if !strings.EqualFold(strings.TrimSpace(name), key) && !strings.EqualFold(strings.TrimSpace(prop), key) {
			return true
		}
		c, ok := s.Attr("content")
		if !ok {
			return true
		}
		content = strings.TrimSpace(c)
		found = true
		return false
	})
	return content, found
}

// hasLinkRel reports whether a <link> with the given rel token and an href exists.
func (p *Page) hasLinkRel(rel string) bool {
	found := false
	p.Doc.FindMatcher(selLink).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value, _ := s.Attr("rel")
		href, _ := s.Attr("href")
		if strings.TrimSpace(href) == "" {
			return true
		}
		for _, token := range strings.Fields(value) {
			if strings.EqualFold(token, rel) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// countAll counts matches in the document and in every noscript block.
func (p *Page) countAll(m goquery.Matcher) int {
	n := p.Doc.FindMatcher(m).Length()
	for _, inner := range p.noscript {
		n += inner.FindMatcher(m).Length()
	}
	return n
}

// visibleText is the body text without scripts, styles and noscript blocks.
func (p *Page) visibleText() string {
	return visibleText(p.Doc.Selection)
}

// visibleText joins the text nodes under the body of s with spaces, so
// adjacent elements never glue words together.
func visibleText(s *goquery.Selection) string {
	body := s.FindMatcher(selBody).Clone()
	body.FindMatcher(selNonVisible).Remove()

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	return b.String()
}

// noscriptText is the text of every noscript block, joined by spaces.
func (p *Page) noscriptText() string {
	parts := make([]string, 0, len(p.noscript))
	for _, inner := range p.noscript {
		if text := strings.TrimSpace(visibleText(inner.Selection)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
