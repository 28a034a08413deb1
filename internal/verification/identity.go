package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// IDProofType selects which identity registry a registration is checked
// against.
type IDProofType string

const (
	ProofAadhar  IDProofType = "AADHAR"
	ProofVoterID IDProofType = "VOTER_ID"
)

// AadharRecord mirrors one entry of the national ID registry. The rows are
// seeded reference data; the service never writes to them.
type AadharRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	AadharNumber string    `json:"aadhar_number" gorm:"uniqueIndex;size:12;not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	DateOfBirth  time.Time `json:"date_of_birth" gorm:"not null"`
	IsValid      bool      `json:"is_valid" gorm:"not null;default:true"`
}

// VoterIDRecord mirrors one entry of the electoral-roll registry
type VoterIDRecord struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VoterIDNumber string    `json:"voter_id_number" gorm:"uniqueIndex;size:20;not null"`
	FullName      string    `json:"full_name" gorm:"not null"`
	DateOfBirth   time.Time `json:"date_of_birth" gorm:"not null"`
	IsValid       bool      `json:"is_valid" gorm:"not null;default:true"`
}

// TableName overrides the table name
func (AadharRecord) TableName() string {
	return "aadhar_registry"
}

// TableName overrides the table name
func (VoterIDRecord) TableName() string {
	return "voter_id_registry"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (r *AadharRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate will set a UUID rather than numeric ID.
func (r *VoterIDRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RegistryRepository looks up registry entries by exact (number, name,
// date of birth) match.
type RegistryRepository interface {
	FindAadhar(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*AadharRecord, error)
	FindVoterID(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*VoterIDRecord, error)
}

// IdentityService verifies prospective voters against the seeded identity
// registries. It only answers yes/no; the caller decides what to do with
// an unverified registration.
type IdentityService struct {
	registry RegistryRepository
	log      *log.Logger
}

// NewIdentityService creates an identity verification service
func NewIdentityService(registry RegistryRepository) *IdentityService {
	return &IdentityService{
		registry: registry,
		log:      logger.Verification(),
	}
}

// VerifyVoter checks the given proof against its registry. A missing or
// invalidated record both yield false without error; only infrastructure
// failures return an error.
func (s *IdentityService) VerifyVoter(ctx context.Context, proofType IDProofType, number, fullName string, dateOfBirth time.Time) (bool, error) {
	s.log.Debug("verifying identity", "proof_type", proofType)

	switch proofType {
	case ProofAadhar:
		record, err := s.registry.FindAadhar(ctx, number, fullName, dateOfBirth)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.log.Warn("aadhar record not found")
				return false, nil
			}
			return false, fmt.Errorf("aadhar registry lookup failed: %w", err)
		}
		return record.IsValid, nil

	case ProofVoterID:
		record, err := s.registry.FindVoterID(ctx, number, fullName, dateOfBirth)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.log.Warn("voter ID record not found")
				return false, nil
			}
			return false, fmt.Errorf("voter ID registry lookup failed: %w", err)
		}
		return record.IsValid, nil

	default:
		return false, fmt.Errorf("unsupported ID proof type: %s", proofType)
	}
}
