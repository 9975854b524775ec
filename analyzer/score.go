package analyzer

// Aggregate combines the dimension scores into the overall score. The mean is
// rounded half-up and never clamped.
func Aggregate(scores DetailedScores) OverallScore {
	ordered := scores.Ordered()

	overall := OverallScore{
		Penalties: []string{},
		Bonuses:   []string{},
	}

	total := 0
	for _, ns := range ordered {
		total += ns.Score
		switch ns.Impact {
		case ImpactNegative:
			overall.Penalties = append(overall.Penalties, ns.Category+": "+ns.Context)
		case ImpactPositive:
			overall.Bonuses = append(overall.Bonuses, ns.Category+": "+ns.Context)
		}
	}

	overall.Score = roundHalfUp(float64(total) / float64(len(ordered)))
	overall.Interpretation = Interpret(overall.Score)
	return overall
}

// Interpret maps an overall score onto its band label.
func Interpret(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Good, room for improvement"
	case score >= 70:
		return "Average, needs attention"
	default:
		return "Poor, requires significant improvements"
	}
}
