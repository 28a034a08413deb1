package tally

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/common"
)

// ElectionResult is one derived row per (election, candidate): vote count,
// percentage and rank. Fully recomputed on every tally pass, never patched
// incrementally.
type ElectionResult struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID     uuid.UUID `json:"election_id" gorm:"type:uuid;not null;uniqueIndex:idx_results_election_candidate"`
	CandidateID    uuid.UUID `json:"candidate_id" gorm:"type:uuid;not null;uniqueIndex:idx_results_election_candidate"`
	VoteCount      int64     `json:"vote_count" gorm:"not null;default:0"`
	VotePercentage float64   `json:"vote_percentage" gorm:"type:decimal(7,4);not null;default:0"`
	RankPosition   int       `json:"rank_position" gorm:"not null;default:0"`
	LastUpdated    time.Time `json:"last_updated" gorm:"autoUpdateTime"`

	Candidate common.SharedCandidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
}

// ElectionReport is the per-election summary, overwritten on every tally
// pass (upsert by election).
type ElectionReport struct {
	ID                     uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID             uuid.UUID  `json:"election_id" gorm:"type:uuid;not null;uniqueIndex"`
	TotalRegisteredVoters  int64      `json:"total_registered_voters" gorm:"not null;default:0"`
	TotalVotesCast         int64      `json:"total_votes_cast" gorm:"not null;default:0"`
	VoterTurnoutPercentage float64    `json:"voter_turnout_percentage" gorm:"type:decimal(7,4);not null;default:0"`
	TotalCandidates        int        `json:"total_candidates" gorm:"not null;default:0"`
	WinningCandidateID     *uuid.UUID `json:"winning_candidate_id" gorm:"type:uuid"`
	WinningMargin          int64      `json:"winning_margin" gorm:"not null;default:0"`
	GeneratedBy            *uuid.UUID `json:"generated_by" gorm:"type:uuid"`
	GeneratedAt            time.Time  `json:"generated_at"`
}

// TableName overrides the table name
func (ElectionResult) TableName() string {
	return "election_results"
}

// TableName overrides the table name
func (ElectionReport) TableName() string {
	return "election_reports"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (r *ElectionResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate will set a UUID rather than numeric ID.
func (r *ElectionReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Percentage computes part/total as a percentage, rounding the fraction
// half-up at four decimal places before scaling by 100, matching the
// store's decimal(7,4) columns. Integer arithmetic keeps the result exact
// and reproducible: Percentage(1, 3) == 33.33.
func Percentage(part, total int64) float64 {
	if total <= 0 || part < 0 {
		return 0
	}
	// round-half-up of part/total scaled to 1e4
	scaled := (part*10000*2 + total) / (2 * total)
	return float64(scaled) / 100.0
}
