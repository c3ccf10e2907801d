package dto

// ContactInfoRequest carries optional lead contact details
// @Description Contact details captured alongside the questionnaire
type ContactInfoRequest struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// StartAssessmentResponse represents a newly created assessment
type StartAssessmentResponse struct {
	AssessmentID string `json:"assessment_id"`
	SessionID    string `json:"session_id"`
	ExpiresAt    string `json:"expires_at"`
}

// SaveResponsesRequest represents a partial or full set of answers
// @Description Request body for saving questionnaire answers
type SaveResponsesRequest struct {
	SessionID string            `json:"session_id"`
	Responses map[string]string `json:"responses"`
}

// CompleteAssessmentRequest finalizes an assessment
// @Description Request body for completing an assessment
type CompleteAssessmentRequest struct {
	SessionID string              `json:"session_id"`
	Responses map[string]string   `json:"responses,omitempty"`
	Contact   *ContactInfoRequest `json:"contact,omitempty"`
}

// ScoreBreakdownResponse represents per-category weighted scores
type ScoreBreakdownResponse struct {
	ValueCreation  float64 `json:"value_creation"`
	CustomerSafety float64 `json:"customer_safety"`
	RiskManagement float64 `json:"risk_management"`
	Governance     float64 `json:"governance"`
}

// AssessmentResultResponse represents the scored outcome in the API response
// @Description Assessment result with score, category and recommendations
type AssessmentResultResponse struct {
	AssessmentID    string                  `json:"assessment_id"`
	TotalScore      float64                 `json:"total_score"`
	ScoreBreakdown  *ScoreBreakdownResponse `json:"score_breakdown,omitempty"`
	Category        string                  `json:"category"`
	Recommendations []string                `json:"recommendations"`
	Insight         string                  `json:"insight,omitempty"`
	SyncStatus      string                  `json:"sync_status"`
	CompletedAt     string                  `json:"completed_at,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
