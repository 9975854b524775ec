package analyzer

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Dimension categories as shown to users.
const (
	CategoryTitle     = "Title Tag"
	CategoryMeta      = "Meta Description"
	CategoryHeadings  = "Heading Structure"
	CategoryImages    = "Image Optimization"
	CategoryContent   = "Content Quality"
	CategoryTechnical = "Technical SEO"
	CategoryMobile    = "Mobile Friendliness"
	CategoryLinking   = "Linking Structure"
)

const (
	baselineScore       = 100
	minWordCount        = 300
	goodWordCount       = 600
	maxWordsPerSentence = 20
)

// AnalyzeAll runs every dimension analyzer against p.
func AnalyzeAll(p *Page) DetailedScores {
	return DetailedScores{
		Title:              AnalyzeTitle(p),
		MetaDescription:    AnalyzeMetaDescription(p),
		Headings:           AnalyzeHeadings(p),
		ImageOptimization:  AnalyzeImages(p),
		Content:            AnalyzeContent(p),
		Technical:          AnalyzeTechnical(p),
		MobileFriendliness: AnalyzeMobile(p),
		LinkingStructure:   AnalyzeLinks(p),
	}
}

// roundHalfUp rounds x to the nearest integer, halves going up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// notes collects the context fragments of one analyzer.
type notes []string

func (n *notes) add(format string, args ...any) {
	*n = append(*n, fmt.Sprintf(format, args...))
}

func (n notes) String() string {
	return strings.Join(n, "; ")
}

// AnalyzeTitle scores the length of the <title> text.
func AnalyzeTitle(p *Page) DimensionScore {
	length := utf8.RuneCountInString(p.Title)
	ds := DimensionScore{Category: CategoryTitle, Value: length}

	switch {
	case length == 0:
		ds.Score = 0
		ds.Impact = ImpactNegative
		ds.Context = "Title tag is missing or empty"
	case length < 30:
		ds.Score = baselineScore - 30
		ds.Impact = ImpactNegative
		ds.Context = fmt.Sprintf("Title is too short (%d characters, aim for 30-60)", length)
	case length > 60:
		ds.Score = baselineScore - 15
		ds.Impact = ImpactNegative
		ds.Context = fmt.Sprintf("Title is too long (%d characters, aim for 30-60)", length)
	default:
		ds.Score = baselineScore
		ds.Impact = ImpactPositive
		ds.Context = fmt.Sprintf("Title length is optimal (%d characters)", length)
	}
	return ds
}

func AnalyzeMetaDescription(p *Page) DimensionScore {
	desc, _ := p.meta("description")
	length := utf8.RuneCountInString(desc)
	ds := DimensionScore{Category: CategoryMeta, Value: length}

	if length == 0 {
		ds.Score = 0
		ds.Impact = ImpactNegative
		ds.Context = "Meta description is missing"
		return ds
	}

	score := baselineScore
	var n notes
	switch {
	case length < 120:
		score -= 20
		n.add("Meta description is too short (%d characters, aim for 120-160)", length)
	case length > 160:
		score -= 10
		n.add("Meta description is too long (%d characters, aim for 120-160)", length)
	default:
		n.add("Meta description length is optimal (%d characters)", length)
	}
	if len(p.Keywords) > 0 && !ContainsAnyKeyword(desc, p.Keywords) {
		score -= 10
		n.add("no title keyword appears in the description")
	}

	ds.Score = score
	ds.Context = n.String()
	ds.Impact = ImpactPositive
	if score < baselineScore {
		ds.Impact = ImpactNegative
	}
	return ds
}

func AnalyzeHeadings(p *Page) DimensionScore {
	counts := HeadingCounts{
		H1: p.countAll(selH1),
		H2: p.countAll(selH2),
		H3: p.countAll(selH3),
	}
	ds := DimensionScore{Category: CategoryHeadings, Value: counts}

	score := baselineScore
	var n notes
	switch {
	case counts.H1 == 0:
		score -= 30
		n.add("No H1 heading found")
	case counts.H1 > 1:
		score -= 15
		n.add("Multiple H1 headings found (%d)", counts.H1)
	default:
		n.add("Single H1 heading present")
	}
	if counts.H2 == 0 {
		score -= 10
		n.add("no H2 headings to structure the content")
	}
	if counts.H1 > 0 && len(p.Keywords) > 0 && !ContainsAnyKeyword(p.h1Text(), p.Keywords) {
		score -= 10
		n.add("H1 does not contain any title keyword")
	}

	ds.Score = score
	ds.Context = n.String()
	ds.Impact = ImpactPositive
	if score < baselineScore {
		ds.Impact = ImpactNegative
	}
	return ds
}

// h1Text joins the text of all H1 headings, noscript ones included.
func (p *Page) h1Text() string {
	var b strings.Builder
	collect := func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteByte(' ')
	}
	p.Doc.FindMatcher(selH1).Each(collect)
	for _, inner := range p.noscript {
		inner.FindMatcher(selH1).Each(collect)
	}
	return b.String()
}

func AnalyzeImages(p *Page) DimensionScore {
	images := p.Doc.FindMatcher(selImg)
	counts := ImageCounts{Total: images.Length()}
	if counts.Total == 0 {
		return DimensionScore{
			Score:    baselineScore,
			Category: CategoryImages,
			Value:    counts,
			Impact:   ImpactNeutral,
			Context:  "No images found on the page",
		}
	}

	images.Each(func(_ int, s *goquery.Selection) {
		if alt, ok := s.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			counts.WithAlt++
		}
	})
	pct := float64(counts.WithAlt) / float64(counts.Total) * 100
	counts.AltPercentage = round2(pct)

	ds := DimensionScore{
		Score:    baselineScore - roundHalfUp((100-pct)/2),
		Category: CategoryImages,
		Value:    counts,
		Context:  fmt.Sprintf("%d of %d images have alt text (%.0f%%)", counts.WithAlt, counts.Total, math.Floor(pct)),
	}
	if counts.WithAlt == counts.Total {
		ds.Impact = ImpactPositive
	} else {
		ds.Impact = ImpactNegative
	}
	return ds
}

// AnalyzeContent scores the visible text plus noscript text: length,
// keyword density and sentence length.
func AnalyzeContent(p *Page) DimensionScore {
	noscript := p.noscriptText()
	corpus := strings.TrimSpace(p.visibleText() + " " + noscript)
	words := strings.Fields(corpus)

	stats := ContentStats{
		WordCount:          len(words),
		SentenceCount:      countSentences(corpus),
		HasNoscriptContent: noscript != "",
	}
	if stats.SentenceCount > 0 {
		stats.AvgWordsPerSentence = round2(float64(stats.WordCount) / float64(stats.SentenceCount))
	}
	if stats.WordCount > 0 {
		lower := strings.ToLower(corpus)
		matches := 0
		for _, kw := range p.Keywords {
			matches += countWholeWord(lower, kw)
		}
		stats.KeywordDensity = round2(float64(matches) / float64(stats.WordCount) * 100)
	}

	score := baselineScore
	penalized := false
	var n notes
	switch {
	case stats.WordCount < minWordCount:
		score -= 30
		penalized = true
		n.add("Thin content (%d words, aim for at least %d)", stats.WordCount, goodWordCount)
	case stats.WordCount < goodWordCount:
		score -= 15
		penalized = true
		n.add("Content could be longer (%d words, aim for at least %d)", stats.WordCount, goodWordCount)
	default:
		n.add("Good content length (%d words)", stats.WordCount)
	}
	if stats.HasNoscriptContent {
		score += 5
		n.add("noscript fallback content present")
	}
	if len(p.Keywords) > 0 {
		switch {
		case stats.KeywordDensity < 1:
			score -= 10
			penalized = true
			n.add("keyword density is low (%.2f%%)", stats.KeywordDensity)
		case stats.KeywordDensity > 3:
			score -= 5
			penalized = true
			n.add("keyword density is high (%.2f%%)", stats.KeywordDensity)
		}
	}
	if stats.AvgWordsPerSentence > maxWordsPerSentence {
		score -= 10
		penalized = true
		n.add("sentences are long (%.1f words on average)", stats.AvgWordsPerSentence)
	}

	ds := DimensionScore{Score: score, Category: CategoryContent, Value: stats, Context: n.String()}
	ds.Impact = ImpactPositive
	if penalized {
		ds.Impact = ImpactNegative
	}
	return ds
}

// countSentences counts non-empty runs of text between ., ! and ?.
func countSentences(text string) int {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	n := 0
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

func AnalyzeTechnical(p *Page) DimensionScore {
	checks := TechnicalChecks{Canonical: p.hasLinkRel("canonical")}
	_, checks.Viewport = p.meta("viewport")
	_, checks.Robots = p.meta("robots")
	checks.OpenGraph = p.hasMetaContent("og:title") && p.hasMetaContent("og:description") && p.hasMetaContent("og:image")
	checks.TwitterCard = p.hasMetaContent("twitter:card")
	p.Doc.FindMatcher(selJSONLD).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		checks.StructuredData = strings.TrimSpace(s.Text()) != ""
		return !checks.StructuredData
	})

	score := baselineScore
	var missing []string
	for _, item := range []struct {
		ok      bool
		penalty int
		label   string
	}{
		{checks.Canonical, 10, "canonical link"},
		{checks.Viewport, 10, "viewport meta tag"},
		{checks.Robots, 5, "robots meta tag"},
		{checks.OpenGraph, 5, "Open Graph tags (title, description, image)"},
		{checks.TwitterCard, 5, "Twitter card meta tag"},
		{checks.StructuredData, 10, "JSON-LD structured data"},
	} {
		if !item.ok {
			score -= item.penalty
			missing = append(missing, item.label)
		}
	}

	ds := DimensionScore{Score: score, Category: CategoryTechnical, Value: checks}
	if len(missing) == 0 {
		ds.Context = "All technical SEO elements are present"
	} else {
		ds.Context = "Missing: " + strings.Join(missing, ", ")
	}
	switch {
	case score < 70:
		ds.Impact = ImpactNegative
	case score < 90:
		ds.Impact = ImpactNeutral
	default:
		ds.Impact = ImpactPositive
	}
	return ds
}

func (p *Page) hasMetaContent(key string) bool {
	content, ok := p.meta(key)
	return ok && content != ""
}

func AnalyzeMobile(p *Page) DimensionScore {
	viewport, ok := p.meta("viewport")
	ds := DimensionScore{Category: CategoryMobile, Value: viewport}
	if !ok {
		ds.Score = baselineScore - 50
		ds.Impact = ImpactNegative
		ds.Context = "Viewport meta tag is missing"
		return ds
	}

	compact := strings.ToLower(strings.ReplaceAll(viewport, " ", ""))
	if !strings.Contains(compact, "width=device-width") && !strings.Contains(compact, "initial-scale=1") {
		ds.Score = baselineScore - 25
		ds.Impact = ImpactNegative
		ds.Context = "Viewport does not set width=device-width or initial-scale=1"
		return ds
	}

	ds.Score = baselineScore
	ds.Impact = ImpactPositive
	ds.Context = "Viewport is configured for mobile devices"
	return ds
}

// AnalyzeLinks counts internal links (root-relative or under og:url) and
// absolute external links.
func AnalyzeLinks(p *Page) DimensionScore {
	ogURL, _ := p.meta("og:url")
	counts := LinkCounts{}
	p.Doc.FindMatcher(selAnchor).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		ownSite := ogURL != "" && strings.HasPrefix(href, ogURL)
		switch {
		case strings.HasPrefix(href, "/") || ownSite:
			counts.Internal++
		case strings.HasPrefix(href, "http"):
			counts.External++
		}
	})

	score := baselineScore
	var n notes
	switch {
	case counts.Internal == 0:
		score -= 20
		n.add("No internal links found")
	case counts.Internal < 5:
		score -= 10
		n.add("Few internal links (%d)", counts.Internal)
	default:
		n.add("Good internal linking (%d links)", counts.Internal)
	}
	if counts.External == 0 {
		score -= 10
		n.add("no external links")
	}

	ds := DimensionScore{Score: score, Category: CategoryLinking, Value: counts, Context: n.String()}
	ds.Impact = ImpactPositive
	if score < baselineScore {
		ds.Impact = ImpactNegative
	}
	return ds
}
