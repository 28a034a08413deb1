package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID(uuid.New().String(), "id"))
	assert.Error(t, ValidateUUID("", "id"))
	assert.Error(t, ValidateUUID("not-a-uuid", "id"))
}

func TestValidateDateRange(t *testing.T) {
	now := time.Now()

	assert.NoError(t, ValidateDateRange(now, now.Add(time.Hour)))
	assert.Error(t, ValidateDateRange(time.Time{}, now))
	assert.Error(t, ValidateDateRange(now, time.Time{}))
	assert.Error(t, ValidateDateRange(now, now), "equal dates are not a valid range")
	assert.Error(t, ValidateDateRange(now, now.Add(-time.Hour)))
}

func TestValidateRequiredString(t *testing.T) {
	assert.NoError(t, ValidateRequiredString("value", "field", 10))
	assert.NoError(t, ValidateRequiredString("value", "field", 0), "zero max length means unbounded")
	assert.Error(t, ValidateRequiredString("", "field", 10))
	assert.Error(t, ValidateRequiredString("   ", "field", 10))
	assert.Error(t, ValidateRequiredString(strings.Repeat("x", 11), "field", 10))
}

func TestElectionValidation(t *testing.T) {
	v := ElectionValidation{}

	assert.NoError(t, v.ValidateElectionName("General Election 2026"))
	assert.Error(t, v.ValidateElectionName(""))
	assert.Error(t, v.ValidateElectionName(strings.Repeat("x", 201)))

	assert.NoError(t, v.ValidatePartyName("Progress Party"))
	assert.Error(t, v.ValidatePartyName(" "))
	assert.Error(t, v.ValidatePartyName(strings.Repeat("x", 121)))
}
