package analyzer

import (
	"fmt"
	"io"
	"strings"
)

// WriteSummary prints a short human-readable version of r.
func WriteSummary(w io.Writer, r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.URL)
	fmt.Fprintf(&b, "Score: %d (%s), fetched %s\n\n", r.OverallScore.Score, r.OverallScore.Interpretation, r.FetchMethod)

	for _, ns := range r.DetailedScores.Ordered() {
		fmt.Fprintf(&b, "  %-20s %4d  %-8s %s\n", ns.Category, ns.Score, ns.Impact, ns.Context)
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", rec.Impact, rec.Title, rec.Description)
			for _, step := range rec.Steps {
				fmt.Fprintf(&b, "      - %s\n", step)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
