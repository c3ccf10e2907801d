package domain

// Qualification tiers. Higher tiers imply richer CRM treatment.
const (
	TierUnqualified = 0
	TierBasic       = 1
	TierEnhanced    = 2
	TierExecutive   = 3
)

// QualificationResult is the outcome of evaluating an assessment for CRM sync.
type QualificationResult struct {
	Tier                 int    `json:"tier"`
	HubspotSyncRequired  bool   `json:"hubspot_sync_required"`
	QualifiedForBriefing bool   `json:"qualified_for_briefing"`
	DealCreationRequired bool   `json:"deal_creation_required"`
	LeadQuality          string `json:"lead_quality"`
}

// LeadQualityForTier maps a qualification tier to the lead-quality label
// recorded on the HubSpot contact.
func LeadQualityForTier(tier int) string {
	switch tier {
	case TierBasic:
		return "basic"
	case TierEnhanced:
		return "enhanced"
	case TierExecutive:
		return "executive_briefing_qualified"
	default:
		return "unqualified"
	}
}
