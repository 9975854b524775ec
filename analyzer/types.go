package analyzer

import "time"

// SchemaVersion is bumped whenever the Report shape changes.
const SchemaVersion = "1"

// Impact classifies how a dimension contributes to the overall score.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Priority of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// DimensionScore is the output of one analyzer. Scores start at 100 and are
// not clamped, so they may leave the 0-100 range.
type DimensionScore struct {
	Score    int    `json:"score"`
	Category string `json:"category"`
	Value    any    `json:"value"`
	Impact   Impact `json:"impact"`
	Context  string `json:"context"`
}

// DetailedScores holds one DimensionScore per SEO dimension.
type DetailedScores struct {
	Title              DimensionScore `json:"title"`
	MetaDescription    DimensionScore `json:"metaDescription"`
	Headings           DimensionScore `json:"headings"`
	ImageOptimization  DimensionScore `json:"imageOptimization"`
	Content            DimensionScore `json:"content"`
	Technical          DimensionScore `json:"technical"`
	MobileFriendliness DimensionScore `json:"mobileFriendliness"`
	LinkingStructure   DimensionScore `json:"linkingStructure"`
}

// Dimension names a DetailedScores field by its JSON key.
type Dimension string

const (
	DimensionTitle              Dimension = "title"
	DimensionMetaDescription    Dimension = "metaDescription"
	DimensionHeadings           Dimension = "headings"
	DimensionImageOptimization  Dimension = "imageOptimization"
	DimensionContent            Dimension = "content"
	DimensionTechnical          Dimension = "technical"
	DimensionMobileFriendliness Dimension = "mobileFriendliness"
	DimensionLinkingStructure   Dimension = "linkingStructure"
)

// NamedScore pairs a dimension with its score.
type NamedScore struct {
	Dimension Dimension
	DimensionScore
}

// Ordered returns the dimensions in their fixed iteration order. Penalties,
// bonuses and recommendations are all listed in this order.
func (d DetailedScores) Ordered() []NamedScore {
	return []NamedScore{
		{DimensionTitle, d.Title},
		{DimensionMetaDescription, d.MetaDescription},
		{DimensionHeadings, d.Headings},
		{DimensionImageOptimization, d.ImageOptimization},
		{DimensionContent, d.Content},
		{DimensionTechnical, d.Technical},
		{DimensionMobileFriendliness, d.MobileFriendliness},
		{DimensionLinkingStructure, d.LinkingStructure},
	}
}

// OverallScore is the aggregate of all dimension scores.
type OverallScore struct {
	Score          int      `json:"score"`
	Interpretation string   `json:"interpretation"`
	Penalties      []string `json:"penalties"`
	Bonuses        []string `json:"bonuses"`
}

// Recommendation is one actionable fix for a dimension below its threshold.
type Recommendation struct {
	ID                string   `json:"id"`
	Category          string   `json:"category"`
	Impact            Priority `json:"impact"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Steps             []string `json:"steps"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
}

// Report is the result of analyzing one page.
type Report struct {
	SchemaVersion   string           `json:"schemaVersion"`
	URL             string           `json:"url"`
	FetchMethod     string           `json:"fetchMethod"`
	AnalyzedAt      time.Time        `json:"analyzedAt"`
	OverallScore    OverallScore     `json:"overallScore"`
	DetailedScores  DetailedScores   `json:"detailedScores"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Measurement values carried in DimensionScore.Value.

type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
}

type ImageCounts struct {
	Total         int     `json:"total"`
	WithAlt       int     `json:"withAlt"`
	AltPercentage float64 `json:"altPercentage"`
}

type ContentStats struct {
	WordCount           int     `json:"wordCount"`
	SentenceCount       int     `json:"sentenceCount"`
	KeywordDensity      float64 `json:"keywordDensity"`
	AvgWordsPerSentence float64 `json:"avgWordsPerSentence"`
	HasNoscriptContent  bool    `json:"hasNoscriptContent"`
}

type TechnicalChecks struct {
	Canonical      bool `json:"canonical"`
	Viewport       bool `json:"viewport"`
	Robots         bool `json:"robots"`
	OpenGraph      bool `json:"openGraph"`
	TwitterCard    bool `json:"twitterCard"`
	StructuredData bool `json:"structuredData"`
}

type LinkCounts struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}
