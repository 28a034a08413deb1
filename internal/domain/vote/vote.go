package vote

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/common"
)

// Vote is one committed ballot. Immutable once written; at most one row
// exists per (election, voter), enforced by a storage-level unique
// constraint rather than application logic.
type Vote struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID  uuid.UUID `json:"election_id" gorm:"type:uuid;not null;uniqueIndex:idx_votes_election_voter"`
	VoterID     uuid.UUID `json:"voter_id" gorm:"type:uuid;not null;uniqueIndex:idx_votes_election_voter"`
	CandidateID uuid.UUID `json:"candidate_id" gorm:"type:uuid;not null"`
	VoteHash    string    `json:"vote_hash" gorm:"uniqueIndex;not null"`
	VotedAt     time.Time `json:"voted_at" gorm:"autoCreateTime"`

	// Relations - using shared types to avoid circular imports
	Election  common.SharedElection  `json:"election,omitempty" gorm:"foreignKey:ElectionID"`
	Voter     common.SharedVoter     `json:"voter,omitempty" gorm:"foreignKey:VoterID"`
	Candidate common.SharedCandidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
}

// VoterElectionStatus is a denormalized mirror of "does a Vote row exist
// for this (election, voter) pair", kept for cheap has-voted queries. It
// must always agree with the votes table.
type VoterElectionStatus struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID uuid.UUID  `json:"election_id" gorm:"type:uuid;not null;uniqueIndex:idx_status_election_voter"`
	VoterID    uuid.UUID  `json:"voter_id" gorm:"type:uuid;not null;uniqueIndex:idx_status_election_voter"`
	HasVoted   bool       `json:"has_voted" gorm:"not null;default:false"`
	VotedAt    *time.Time `json:"voted_at"`
}

// TableName overrides the table name
func (Vote) TableName() string {
	return "votes"
}

// TableName overrides the table name
func (VoterElectionStatus) TableName() string {
	return "voter_election_status"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// BeforeCreate will set a UUID rather than numeric ID.
func (s *VoterElectionStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewVote creates a vote with a freshly generated audit hash
func NewVote(electionID, voterID, candidateID uuid.UUID) *Vote {
	return &Vote{
		ID:          uuid.New(),
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		VoteHash:    uuid.New().String(),
		VotedAt:     time.Now(),
	}
}

// NewStatus creates the has-voted mirror row for a committed vote
func NewStatus(electionID, voterID uuid.UUID, votedAt time.Time) *VoterElectionStatus {
	return &VoterElectionStatus{
		ID:         uuid.New(),
		ElectionID: electionID,
		VoterID:    voterID,
		HasVoted:   true,
		VotedAt:    &votedAt,
	}
}

// Validate checks if the vote data is valid
func (v *Vote) Validate() error {
	if v.ElectionID == uuid.Nil {
		return fmt.Errorf("election_id is required")
	}
	if v.VoterID == uuid.Nil {
		return fmt.Errorf("voter_id is required")
	}
	if v.CandidateID == uuid.Nil {
		return fmt.Errorf("candidate_id is required")
	}
	if v.VoteHash == "" {
		return fmt.Errorf("vote_hash is required")
	}
	return nil
}
