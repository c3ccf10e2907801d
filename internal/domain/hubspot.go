package domain

import (
	"context"
	"fmt"
	"net/http"
)

// ContactProperties is the fixed property schema sent to HubSpot. The
// ai_* fields are custom properties; the free tier allows at most ten,
// which this struct deliberately does not exceed.
type ContactProperties struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`

	AssessmentScore    string `json:"ai_assessment_score,omitempty"`
	AssessmentCategory string `json:"ai_assessment_category,omitempty"`
	ValueScore         string `json:"ai_value_score,omitempty"`
	CustomerScore      string `json:"ai_customer_score,omitempty"`
	RiskScore          string `json:"ai_risk_score,omitempty"`
	GovernanceScore    string `json:"ai_governance_score,omitempty"`
	AssessmentDate     string `json:"ai_assessment_date,omitempty"` // YYYY-MM-DD
	CompletionTime     string `json:"ai_completion_time,omitempty"`
	LeadQuality        string `json:"ai_lead_quality,omitempty"`
	LeadSource         string `json:"lead_source,omitempty"`
}

// DealProperties describes a HubSpot deal created for an
// executive-briefing-qualified lead.
type DealProperties struct {
	DealName  string `json:"dealname"`
	Pipeline  string `json:"pipeline"`
	DealStage string `json:"dealstage"`
	Amount    string `json:"amount,omitempty"`
}

// HubSpotClient defines the interface (port) for the external CRM API.
type HubSpotClient interface {
	// CreateOrUpdateContact creates or updates a contact and returns its
	// HubSpot object ID
	CreateOrUpdateContact(ctx context.Context, props *ContactProperties) (string, error)

	// CreateDeal creates a deal associated with the given contact and
	// returns its HubSpot object ID
	CreateDeal(ctx context.Context, props *DealProperties, contactID string) (string, error)

	// Ping performs a lightweight authenticated call to verify reachability
	Ping(ctx context.Context) error
}

// HubSpotAPIError is an error returned by the HubSpot API, carrying enough
// information to classify it for retry routing.
type HubSpotAPIError struct {
	StatusCode int
	Message    string
}

func (e *HubSpotAPIError) Error() string {
	return fmt.Sprintf("hubspot api error (status %d): %s", e.StatusCode, e.Message)
}

// ErrorType classifies the failure for the retry queue.
func (e *HubSpotAPIError) ErrorType() string {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	default:
		return ErrorTypeServer
	}
}

// ClassifySyncError maps any sync failure to an errorType for the retry
// queue. Timeouts and transport failures count as server errors.
func ClassifySyncError(err error) string {
	if apiErr, ok := err.(*HubSpotAPIError); ok {
		return apiErr.ErrorType()
	}
	if domainErr, ok := err.(*DomainError); ok && domainErr.Code == CodeRateLimited {
		return ErrorTypeRateLimit
	}
	return ErrorTypeServer
}
