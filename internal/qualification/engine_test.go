package qualification

import (
	"testing"

	"leadsync/internal/domain"

	"github.com/stretchr/testify/assert"
)

// baseAssessment returns an assessment that qualifies at exactly tier 1:
// email only, healthy score, no promotion signals.
func baseAssessment() *domain.Assessment {
	return &domain.Assessment{
		ID:         "01HXYZASSESSMENT",
		TotalScore: 75,
		ScoreBreakdown: &domain.ScoreBreakdown{
			ValueCreation:  75,
			CustomerSafety: 75,
			RiskManagement: 75,
			Governance:     75,
		},
		Contact: domain.ContactInfo{Email: "lead@example.com"},
	}
}

func TestQualify_NilAssessment(t *testing.T) {
	engine := NewEngine()
	result, err := engine.Qualify(nil)
	assert.Nil(t, result)
	assert.Error(t, err)

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestQualify_Tier0_NoEmail(t *testing.T) {
	engine := NewEngine()

	for _, email := range []string{"", "   ", "\t"} {
		a := baseAssessment()
		a.Contact.Email = email
		result, err := engine.Qualify(a)
		assert.NoError(t, err)
		assert.Equal(t, domain.TierUnqualified, result.Tier)
		assert.False(t, result.HubspotSyncRequired)
		assert.False(t, result.QualifiedForBriefing)
		assert.False(t, result.DealCreationRequired)
		assert.Equal(t, "unqualified", result.LeadQuality)
	}
}

func TestQualify_Tier1_EmailOnly(t *testing.T) {
	engine := NewEngine()
	result, err := engine.Qualify(baseAssessment())
	assert.NoError(t, err)
	assert.Equal(t, domain.TierBasic, result.Tier)
	assert.True(t, result.HubspotSyncRequired)
	assert.False(t, result.QualifiedForBriefing)
	assert.False(t, result.DealCreationRequired)
	assert.Equal(t, "basic", result.LeadQuality)
}

func TestQualify_Tier2_EmailNameCompany(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.Contact.FirstName = "Ada"
	a.Contact.Company = "Quiet Bakery" // no large-org keyword, no industry match

	result, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierEnhanced, result.Tier)
	assert.True(t, result.HubspotSyncRequired)
	assert.False(t, result.QualifiedForBriefing)
	assert.Equal(t, "enhanced", result.LeadQuality)
}

func TestQualify_Tier3_CompleteContactSet(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.Contact.FirstName = "Ada"
	a.Contact.LastName = "Lovelace"
	a.Contact.Company = "Quiet Bakery"
	a.Contact.Phone = "+1-555-0100"

	result, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierExecutive, result.Tier)
	assert.True(t, result.QualifiedForBriefing)
	assert.True(t, result.DealCreationRequired)
	assert.Equal(t, "executive_briefing_qualified", result.LeadQuality)
}

func TestQualify_Tier3_NeedsHelpScore(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.TotalScore = 45
	a.ScoreBreakdown = &domain.ScoreBreakdown{
		ValueCreation:  45,
		CustomerSafety: 45,
		RiskManagement: 45,
		Governance:     45,
	}

	result, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierExecutive, result.Tier)
	assert.True(t, result.QualifiedForBriefing)
}

func TestQualify_Tier3_CompanyKeyword(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.Contact.FirstName = "Ada"
	a.Contact.Company = "Initech Holdings"

	result, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierExecutive, result.Tier)
}

func TestQualify_Tier3_HighValueIndustry(t *testing.T) {
	engine := NewEngine()

	t.Run("IndustryField", func(t *testing.T) {
		a := baseAssessment()
		a.Contact.Industry = "Healthcare"
		result, err := engine.Qualify(a)
		assert.NoError(t, err)
		assert.Equal(t, domain.TierExecutive, result.Tier)
	})

	t.Run("CompanyName", func(t *testing.T) {
		a := baseAssessment()
		a.Contact.FirstName = "Ada"
		a.Contact.Company = "Acme Manufacturing"
		result, err := engine.Qualify(a)
		assert.NoError(t, err)
		assert.Equal(t, domain.TierExecutive, result.Tier)
	})
}

func TestQualify_Tier3_CriticalCategoryScore(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.ScoreBreakdown.CustomerSafety = 35

	result, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierExecutive, result.Tier)
}

func TestQualify_MissingBreakdownDoesNotCrash(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.ScoreBreakdown = nil

	result, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierBasic, result.Tier)
}

func TestQualify_MonotonicInContactCompleteness(t *testing.T) {
	engine := NewEngine()

	a := baseAssessment()
	previous := domain.TierUnqualified

	steps := []func(){
		func() { a.Contact.Email = "lead@example.com" },
		func() { a.Contact.FirstName = "Ada" },
		func() { a.Contact.Company = "Quiet Bakery" },
		func() { a.Contact.LastName = "Lovelace" },
		func() { a.Contact.Phone = "+1-555-0100" },
	}
	a.Contact = domain.ContactInfo{}

	for _, step := range steps {
		step()
		result, err := engine.Qualify(a)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, result.Tier, previous)
		previous = result.Tier
	}
}

func TestQualify_Idempotent(t *testing.T) {
	engine := NewEngine()
	a := baseAssessment()
	a.Contact.FirstName = "Ada"
	a.Contact.Company = "Initech Corp"

	first, err := engine.Qualify(a)
	assert.NoError(t, err)
	second, err := engine.Qualify(a)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}
