package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidateUUID checks that a string is a well-formed UUID
func ValidateUUID(id, fieldName string) error {
	if id == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid %s format: %w", fieldName, err)
	}
	return nil
}

// ValidateDateRange checks that the end date is after the start date
func ValidateDateRange(start, end time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if end.IsZero() {
		return fmt.Errorf("end_date is required")
	}
	if !end.After(start) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// ValidateRequiredString checks a trimmed string is non-empty and within bounds
func ValidateRequiredString(value, fieldName string, maxLen int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if maxLen > 0 && len(trimmed) > maxLen {
		return fmt.Errorf("%s must be at most %d characters", fieldName, maxLen)
	}
	return nil
}

// ElectionValidation groups validation rules for election input
type ElectionValidation struct{}

// ValidateElectionName checks the election name
func (ElectionValidation) ValidateElectionName(name string) error {
	return ValidateRequiredString(name, "election_name", 200)
}

// ValidatePartyName checks a candidate's party name
func (ElectionValidation) ValidatePartyName(name string) error {
	return ValidateRequiredString(name, "party_name", 120)
}
