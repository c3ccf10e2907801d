// Package scoring turns raw assessment responses into weighted category
// scores, an overall score, a readiness category and a recommendation list.
// Everything here is pure: the tables below are the only inputs besides the
// responses themselves.
package scoring

import (
	"sort"
	"strings"

	"leadsync/internal/domain"
)

// Category identifiers for the four weighted assessment dimensions.
const (
	CategoryValueCreation  = "value_creation"
	CategoryCustomerSafety = "customer_safety"
	CategoryRiskManagement = "risk_management"
	CategoryGovernance     = "governance"
)

// choicePoints maps a single-letter answer choice to its point value,
// highest to lowest. Unrecognized choices are skipped, not rejected: the
// completion event is what captures the lead, and a single malformed answer
// should not discard the attempt.
var choicePoints = map[string]float64{
	"A": 4,
	"B": 3,
	"C": 2,
	"D": 1,
	"E": 0,
}

const maxChoicePoints = 4

// categoryWeights are the fixed weights combining category scores into the
// overall score. They sum to 1.
var categoryWeights = map[string]float64{
	CategoryValueCreation:  0.25,
	CategoryCustomerSafety: 0.35,
	CategoryRiskManagement: 0.25,
	CategoryGovernance:     0.15,
}

// questionCategories assigns each question to its scoring category.
var questionCategories = map[string]string{
	"value_1":      CategoryValueCreation,
	"value_2":      CategoryValueCreation,
	"value_3":      CategoryValueCreation,
	"customer_1":   CategoryCustomerSafety,
	"customer_2":   CategoryCustomerSafety,
	"customer_3":   CategoryCustomerSafety,
	"risk_1":       CategoryRiskManagement,
	"risk_2":       CategoryRiskManagement,
	"risk_3":       CategoryRiskManagement,
	"governance_1": CategoryGovernance,
	"governance_2": CategoryGovernance,
	"governance_3": CategoryGovernance,
}

// band is one row of the classification table.
type band struct {
	MinScore float64
	Label    string
}

// classificationBands is ordered highest threshold first.
var classificationBands = []band{
	{80, "ai_champion"},
	{60, "ai_builder"},
	{40, "ai_risk_zone"},
	{20, "ai_alert"},
	{0, "ai_crisis"},
}

// weakCategoryThreshold is the category score below which its
// recommendations are included in the result.
const weakCategoryThreshold = 60

// categoryRecommendations are the deterministic recommendation strings
// keyed off weak categories.
var categoryRecommendations = map[string][]string{
	CategoryValueCreation: {
		"Identify two revenue-adjacent processes where AI can be piloted this quarter",
		"Define measurable value targets before funding further AI initiatives",
	},
	CategoryCustomerSafety: {
		"Establish a review gate for every AI touchpoint that reaches customers",
		"Create an incident response plan for AI-driven customer interactions",
	},
	CategoryRiskManagement: {
		"Build an inventory of AI systems and rank them by exposure",
		"Schedule a third-party review of your highest-risk AI deployment",
	},
	CategoryGovernance: {
		"Assign executive ownership for AI policy and compliance",
		"Adopt a written AI usage policy covering data handling and approvals",
	},
}

// championRecommendations are returned when no category is weak.
var championRecommendations = []string{
	"Scale your existing AI initiatives and publish internal success metrics",
	"Benchmark your AI governance against industry peers annually",
}

// Result is the outcome of scoring one set of responses.
type Result struct {
	TotalScore      float64
	Breakdown       domain.ScoreBreakdown
	Category        string
	Recommendations []string
	SkippedAnswers  int
}

// IsKnownQuestion reports whether the question ID belongs to the
// questionnaire.
func IsKnownQuestion(questionID string) bool {
	_, ok := questionCategories[questionID]
	return ok
}

// Calculate computes weighted category scores, the overall score, the
// readiness category and recommendations for the given question-id to
// choice mapping. Unrecognized questions and choices are counted in
// SkippedAnswers and otherwise ignored.
func Calculate(responses map[string]string) *Result {
	points := make(map[string]float64)
	answered := make(map[string]int)
	skipped := 0

	for questionID, choice := range responses {
		category, ok := questionCategories[questionID]
		if !ok {
			skipped++
			continue
		}
		value, ok := choicePoints[strings.ToUpper(strings.TrimSpace(choice))]
		if !ok {
			skipped++
			continue
		}
		points[category] += value
		answered[category]++
	}

	categoryScores := make(map[string]float64, len(categoryWeights))
	for category := range categoryWeights {
		n := answered[category]
		if n == 0 {
			categoryScores[category] = 0
			continue
		}
		categoryScores[category] = points[category] / float64(n*maxChoicePoints) * 100
	}

	var total float64
	for category, weight := range categoryWeights {
		total += categoryScores[category] * weight
	}

	return &Result{
		TotalScore: total,
		Breakdown: domain.ScoreBreakdown{
			ValueCreation:  categoryScores[CategoryValueCreation],
			CustomerSafety: categoryScores[CategoryCustomerSafety],
			RiskManagement: categoryScores[CategoryRiskManagement],
			Governance:     categoryScores[CategoryGovernance],
		},
		Category:        Classify(total),
		Recommendations: recommend(categoryScores),
		SkippedAnswers:  skipped,
	}
}

// Classify maps an overall score to its readiness category label.
func Classify(score float64) string {
	for _, b := range classificationBands {
		if score >= b.MinScore {
			return b.Label
		}
	}
	return classificationBands[len(classificationBands)-1].Label
}

// recommend returns the recommendation strings for the weakest categories,
// ordered weakest first. Categories at or above the threshold contribute
// nothing; a fully strong profile gets the champion list.
func recommend(categoryScores map[string]float64) []string {
	type weighted struct {
		category string
		score    float64
	}

	var weak []weighted
	for category, score := range categoryScores {
		if score < weakCategoryThreshold {
			weak = append(weak, weighted{category, score})
		}
	}
	if len(weak) == 0 {
		return append([]string(nil), championRecommendations...)
	}

	sort.Slice(weak, func(i, j int) bool {
		if weak[i].score == weak[j].score {
			return weak[i].category < weak[j].category
		}
		return weak[i].score < weak[j].score
	})

	var recommendations []string
	for _, w := range weak {
		recommendations = append(recommendations, categoryRecommendations[w.category]...)
	}
	return recommendations
}
