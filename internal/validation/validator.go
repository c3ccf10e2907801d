package validation

import (
	"regexp"
	"strings"

	"leadsync/internal/domain"
	"leadsync/internal/dto"
	"leadsync/internal/scoring"
)

var (
	ulidPattern  = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+()\-. ]+$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAssessmentID validates an assessment identifier path parameter
func (v *Validator) ValidateAssessmentID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("assessment_id"))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("assessment_id", id))
	}

	return errors
}

// ValidateSaveResponsesRequest validates a partial answer submission
func (v *Validator) ValidateSaveResponsesRequest(req *dto.SaveResponsesRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.SessionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("session_id"))
	} else if !isValidULID(req.SessionID) {
		errors = append(errors, domain.NewInvalidFormatError("session_id", req.SessionID))
	}

	if len(req.Responses) == 0 {
		errors = append(errors, domain.NewMissingFieldError("responses"))
		return errors
	}

	errors = append(errors, v.validateResponses(req.Responses)...)
	return errors
}

// ValidateCompleteRequest validates the completion payload. Contact details
// are optional but must be well formed when present.
func (v *Validator) ValidateCompleteRequest(req *dto.CompleteAssessmentRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.SessionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("session_id"))
	} else if !isValidULID(req.SessionID) {
		errors = append(errors, domain.NewInvalidFormatError("session_id", req.SessionID))
	}

	if len(req.Responses) > 0 {
		errors = append(errors, v.validateResponses(req.Responses)...)
	}

	if req.Contact != nil {
		errors = append(errors, v.validateContact(req.Contact)...)
	}

	return errors
}

func (v *Validator) validateResponses(responses map[string]string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	for questionID := range responses {
		if !scoring.IsKnownQuestion(questionID) {
			errors = append(errors, domain.NewInvalidFormatError("responses."+questionID, questionID))
		}
	}

	return errors
}

func (v *Validator) validateContact(contact *dto.ContactInfoRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if contact.Email != "" && !isValidEmail(contact.Email) {
		errors = append(errors, domain.NewInvalidFormatError("contact.email", contact.Email))
	}

	fields := map[string]string{
		"contact.first_name": contact.FirstName,
		"contact.last_name":  contact.LastName,
		"contact.company":    contact.Company,
		"contact.industry":   contact.Industry,
	}
	for name, value := range fields {
		if len(value) > 200 {
			errors = append(errors, domain.NewOutOfRangeError(name, len(value), 0, 200))
		}
	}

	if contact.Phone != "" && !isValidPhone(contact.Phone) {
		errors = append(errors, domain.NewInvalidFormatError("contact.phone", contact.Phone))
	}

	return errors
}

// Helper functions for validation

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	return len(s) == 26 && ulidPattern.MatchString(s)
}

// isValidEmail performs a pragmatic email shape check
func isValidEmail(s string) bool {
	return len(s) <= 254 && emailPattern.MatchString(s)
}

// isValidPhone accepts digits, spaces and common separators
func isValidPhone(s string) bool {
	return len(s) >= 5 && len(s) <= 30 && phonePattern.MatchString(s)
}
