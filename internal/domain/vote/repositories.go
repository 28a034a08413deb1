package vote

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
)

// Repository interfaces consumed by the ledger. Kept here so storage
// backends depend on the domain and not the other way around.

// ElectionRepository resolves elections for vote gating
type ElectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error)
}

// CandidateRepository resolves candidates for vote validation
type CandidateRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*election.Candidate, error)
}

// VoterRepository resolves voters for existence and face-match checks
type VoterRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*voter.Voter, error)
}

// VoteRepository owns the vote log write path
type VoteRepository interface {
	// Commit inserts the vote and upserts the has-voted status mirror as
	// one atomic transaction. A uniqueness violation on (election, voter)
	// surfaces as storage.ErrDuplicateKey.
	Commit(ctx context.Context, v *Vote, s *VoterElectionStatus) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*Vote, error)
}

// StatusRepository answers the has-voted fast path
type StatusRepository interface {
	HasVoted(ctx context.Context, electionID, voterID uuid.UUID) (bool, error)
}
