// Package qualification decides whether and how an assessment lead syncs to
// the CRM. Tiering is pure: the same assessment always yields the same tier.
package qualification

import (
	"strings"

	"leadsync/internal/domain"
)

// largeOrgKeywords in a company name signal an organization worth an
// executive briefing.
var largeOrgKeywords = []string{
	"corp", "inc", "llc", "ltd", "group", "holdings",
	"corporation", "enterprise", "solutions", "business",
}

// highValueIndustries matched against company or industry fields.
var highValueIndustries = []string{
	"finance", "banking", "healthcare", "technology", "manufacturing",
}

// Promotion thresholds.
const (
	needsHelpScore            = 60
	criticalCategoryThreshold = 40
)

// promotionRule is a single independent predicate promoting a lead to the
// executive-briefing tier. Rules are evaluated in order; any match promotes.
type promotionRule struct {
	Name    string
	Applies func(a *domain.Assessment) bool
}

var promotionRules = []promotionRule{
	{
		Name: "complete_contact_set",
		Applies: func(a *domain.Assessment) bool {
			c := a.Contact
			return notBlank(c.FirstName) && notBlank(c.LastName) && notBlank(c.Company) && notBlank(c.Phone)
		},
	},
	{
		Name: "needs_help_score",
		Applies: func(a *domain.Assessment) bool {
			return a.TotalScore < needsHelpScore
		},
	},
	{
		Name: "large_org_company_keyword",
		Applies: func(a *domain.Assessment) bool {
			company := strings.ToLower(a.Contact.Company)
			if company == "" {
				return false
			}
			for _, keyword := range largeOrgKeywords {
				if strings.Contains(company, keyword) {
					return true
				}
			}
			return false
		},
	},
	{
		Name: "high_value_industry",
		Applies: func(a *domain.Assessment) bool {
			company := strings.ToLower(a.Contact.Company)
			industry := strings.ToLower(a.Contact.Industry)
			for _, candidate := range highValueIndustries {
				if industry != "" && strings.Contains(industry, candidate) {
					return true
				}
				if company != "" && strings.Contains(company, candidate) {
					return true
				}
			}
			return false
		},
	},
	{
		Name: "critical_category_score",
		Applies: func(a *domain.Assessment) bool {
			b := a.ScoreBreakdown
			if b == nil {
				return false
			}
			return b.ValueCreation < criticalCategoryThreshold ||
				b.CustomerSafety < criticalCategoryThreshold ||
				b.RiskManagement < criticalCategoryThreshold ||
				b.Governance < criticalCategoryThreshold
		},
	},
}

// Engine evaluates assessments against the tiering rules.
type Engine struct{}

// NewEngine creates a new qualification engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Qualify returns the qualification tier and sync flags for an assessment.
// A nil assessment is a caller bug and fails fast. A missing score breakdown
// is tolerated: qualification proceeds on the remaining signals.
func (e *Engine) Qualify(assessment *domain.Assessment) (*domain.QualificationResult, error) {
	if assessment == nil {
		return nil, domain.NewInvalidInputError("assessment is required for qualification")
	}

	if !assessment.Contact.HasEmail() {
		return &domain.QualificationResult{
			Tier:        domain.TierUnqualified,
			LeadQuality: domain.LeadQualityForTier(domain.TierUnqualified),
		}, nil
	}

	tier := domain.TierBasic
	if notBlank(assessment.Contact.FirstName) && notBlank(assessment.Contact.Company) {
		tier = domain.TierEnhanced
	}

	promoted := false
	for _, rule := range promotionRules {
		if rule.Applies(assessment) {
			promoted = true
			break
		}
	}
	if promoted {
		tier = domain.TierExecutive
	}

	return &domain.QualificationResult{
		Tier:                 tier,
		HubspotSyncRequired:  true,
		QualifiedForBriefing: tier == domain.TierExecutive,
		DealCreationRequired: tier == domain.TierExecutive,
		LeadQuality:          domain.LeadQualityForTier(tier),
	}, nil
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
