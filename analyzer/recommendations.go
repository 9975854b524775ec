package analyzer

// recommendationTemplate is the fixed part of a dimension's recommendation.
type recommendationTemplate struct {
	id                string
	category          string
	title             string
	fallback          string
	threshold         int
	steps             []string
	additionalContext string
}

var recommendationTemplates = map[Dimension]recommendationTemplate{
	DimensionTitle: {
		id:        "title-optimization",
		category:  "On-Page SEO",
		title:     "Optimize the title tag",
		fallback:  "The page title needs attention.",
		threshold: 90,
		steps: []string{
			"Write a unique title between 30 and 60 characters",
			"Place the primary keyword near the beginning",
			"Describe the page content accurately and make it compelling to click",
		},
		additionalContext: "The title tag is the headline shown in search results and one of the strongest on-page ranking signals.",
	},
	DimensionMetaDescription: {
		id:        "meta-description-optimization",
		category:  "On-Page SEO",
		title:     "Improve the meta description",
		fallback:  "The meta description needs attention.",
		threshold: 90,
		steps: []string{
			"Write a meta description between 120 and 160 characters",
			"Include the main keywords from the page title",
			"Summarize the page and end with a clear call to action",
		},
		additionalContext: "Search engines often show the meta description as the snippet under the title, which drives click-through rate.",
	},
	DimensionHeadings: {
		id:        "heading-structure",
		category:  "Content Structure",
		title:     "Fix the heading hierarchy",
		fallback:  "The heading structure needs attention.",
		threshold: 100,
		steps: []string{
			"Use exactly one H1 that states the main topic of the page",
			"Include a title keyword in the H1",
			"Break the content into sections with H2 and H3 headings",
		},
		additionalContext: "Headings tell search engines and screen readers how the content is organized and what matters most.",
	},
	DimensionImageOptimization: {
		id:        "image-alt-text",
		category:  "Accessibility",
		title:     "Add alt text to images",
		fallback:  "Some images are missing alt text.",
		threshold: 90,
		steps: []string{
			"Add a descriptive alt attribute to every meaningful image",
			"Keep alt text short and specific to what the image shows",
			"Use an empty alt attribute only for purely decorative images",
		},
		additionalContext: "Alt text lets search engines understand images and is required for accessible pages.",
	},
	DimensionContent: {
		id:        "content-quality",
		category:  "Content",
		title:     "Strengthen the page content",
		fallback:  "The page content needs attention.",
		threshold: 100,
		steps: []string{
			"Expand the main content to at least 600 words of useful information",
			"Use the title keywords naturally, at roughly 1-3% density",
			"Keep sentences short, around 20 words or fewer",
		},
		additionalContext: "Search engines favor pages that cover a topic in depth with readable, relevant text.",
	},
	DimensionTechnical: {
		id:        "technical-seo",
		category:  "Technical SEO",
		title:     "Add missing technical SEO elements",
		fallback:  "Some technical SEO elements are missing.",
		threshold: 90,
		steps: []string{
			"Add a canonical link pointing to the preferred URL",
			"Add viewport and robots meta tags",
			"Add Open Graph and Twitter card meta tags for social sharing",
			"Describe the page with JSON-LD structured data",
		},
		additionalContext: "Technical elements help search engines crawl, index and present the page correctly.",
	},
	DimensionMobileFriendliness: {
		id:        "mobile-friendliness",
		category:  "Mobile",
		title:     "Make the page mobile friendly",
		fallback:  "The page is not configured for mobile devices.",
		threshold: 90,
		steps: []string{
			`Add <meta name="viewport" content="width=device-width, initial-scale=1"> to the head`,
			"Check the layout on small screens",
		},
		additionalContext: "Search engines index the mobile version of a page first, so mobile rendering affects rankings directly.",
	},
	DimensionLinkingStructure: {
		id:        "internal-linking",
		category:  "Links",
		title:     "Improve internal and external linking",
		fallback:  "The linking structure needs attention.",
		threshold: 90,
		steps: []string{
			"Link to at least five related pages on the same site",
			"Use descriptive anchor text",
			"Cite relevant authoritative external sources",
		},
		additionalContext: "Links help search engines discover pages and understand how content on the site relates.",
	},
}

// GenerateRecommendations returns one recommendation per dimension whose
// score is below its threshold, in the fixed dimension order.
func GenerateRecommendations(scores DetailedScores) []Recommendation {
	recs := []Recommendation{}
	for _, ns := range scores.Ordered() {
		tmpl, ok := recommendationTemplates[ns.Dimension]
		if !ok || ns.Score >= tmpl.threshold {
			continue
		}

		priority := PriorityMedium
		if ns.Score < 70 {
			priority = PriorityHigh
		}
		description := ns.Context
		if description == "" {
			description = tmpl.fallback
		}

		recs = append(recs, Recommendation{
			ID:                tmpl.id,
			Category:          tmpl.category,
			Impact:            priority,
			Title:             tmpl.title,
			Description:       description,
			Steps:             append([]string(nil), tmpl.steps...),
			AdditionalContext: tmpl.additionalContext,
		})
	}
	return recs
}
