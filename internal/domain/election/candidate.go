package election

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/common"
)

// Candidate represents a voter standing in one specific election.
// A voter may stand at most once per election (unique (election, voter)).
type Candidate struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID  uuid.UUID `json:"election_id" gorm:"type:uuid;not null;uniqueIndex:idx_candidates_election_voter"`
	VoterID     uuid.UUID `json:"voter_id" gorm:"type:uuid;not null;uniqueIndex:idx_candidates_election_voter"`
	PartyName   string    `json:"party_name"`
	PartySymbol string    `json:"party_symbol"`
	Manifesto   string    `json:"manifesto" gorm:"type:text"`
	PhotoKey    string    `json:"photo_key"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Voter common.SharedVoter `json:"voter,omitempty" gorm:"foreignKey:VoterID"`
}

// TableName overrides the table name used by GORM
func (Candidate) TableName() string {
	return "candidates"
}

// BeforeCreate sets a UUID before creating the record
func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewCandidate registers a voter as a candidate in an election
func NewCandidate(electionID, voterID uuid.UUID, partyName, partySymbol, manifesto string) *Candidate {
	return &Candidate{
		ID:          uuid.New(),
		ElectionID:  electionID,
		VoterID:     voterID,
		PartyName:   partyName,
		PartySymbol: partySymbol,
		Manifesto:   manifesto,
		CreatedAt:   time.Now(),
	}
}

// Validate checks if the candidate data is valid
func (c *Candidate) Validate() error {
	if c.ElectionID == uuid.Nil {
		return fmt.Errorf("election_id is required")
	}
	if c.VoterID == uuid.Nil {
		return fmt.Errorf("voter_id is required")
	}
	return nil
}

// BelongsTo reports whether the candidate stands in the given election
func (c *Candidate) BelongsTo(electionID uuid.UUID) bool {
	return c.ElectionID == electionID
}

// GetID implements common.CandidateInterface
func (c *Candidate) GetID() uuid.UUID {
	return c.ID
}

// GetVoterID implements common.CandidateInterface
func (c *Candidate) GetVoterID() uuid.UUID {
	return c.VoterID
}
