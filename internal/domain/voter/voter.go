package voter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role separates ordinary voters from administrators
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Voter is a registered, identity-verified person eligible to cast votes.
// Identity verification happens once at registration against the external
// registry; a persisted Voter row is trusted afterwards.
type Voter struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email           string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	FullName        string     `json:"full_name" gorm:"not null"`
	DateOfBirth     time.Time  `json:"date_of_birth"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	// Uniqueness for the ID-proof columns is enforced by partial indexes
	// (migration 003) so that voters registered with the other proof type,
	// who leave the column empty, do not collide.
	AadharNumber    string     `json:"aadhar_number" gorm:"size:12"`
	VoterIDNumber   string     `json:"voter_id_number" gorm:"size:20"`
	ProfileImageKey string     `json:"profile_image_key"`
	Role            string     `json:"role" gorm:"not null;default:'voter'"`
	IsVerified      bool       `json:"is_verified" gorm:"not null;default:false"`
	VerifiedAt      *time.Time `json:"verified_at"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (Voter) TableName() string {
	return "voters"
}

// BeforeCreate sets a UUID before creating the record
func (v *Voter) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// NewVoter creates a registered voter pending verification
func NewVoter(email, passwordHash, fullName string, dateOfBirth time.Time) *Voter {
	return &Voter{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		DateOfBirth:  dateOfBirth,
		Role:         RoleVoter,
		CreatedAt:    time.Now(),
	}
}

// MarkVerified records a successful identity-registry verification
func (v *Voter) MarkVerified() {
	now := time.Now()
	v.IsVerified = true
	v.VerifiedAt = &now
}

// IsAdmin reports whether the voter holds the administrator role
func (v *Voter) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// Validate checks if the voter data is valid
func (v *Voter) Validate() error {
	if v.Email == "" {
		return fmt.Errorf("email is required")
	}
	if v.PasswordHash == "" {
		return fmt.Errorf("password_hash is required")
	}
	if v.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return nil
}

// GetID implements common.VoterInterface
func (v *Voter) GetID() uuid.UUID {
	return v.ID
}

// GetFullName implements common.VoterInterface
func (v *Voter) GetFullName() string {
	return v.FullName
}
