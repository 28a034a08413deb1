package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/election"
	"github.com/ballotworks/electoral-api/internal/domain/tally"
	"github.com/ballotworks/electoral-api/internal/domain/vote"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/storage"
	"github.com/ballotworks/electoral-api/internal/verification"
)

// ElectionRepository defines persistence for elections
type ElectionRepository interface {
	Create(ctx context.Context, e *election.Election) error
	GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error)
	GetAll(ctx context.Context) ([]*election.Election, error)
	GetByStatus(ctx context.Context, status election.Status) ([]*election.Election, error)
	GetPublished(ctx context.Context) ([]*election.Election, error)
	Update(ctx context.Context, e *election.Election) error
}

// CandidateRepository defines persistence for candidates
type CandidateRepository interface {
	Create(ctx context.Context, c *election.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*election.Candidate, error)
	GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*election.Candidate, error)
	UpdatePhotoKey(ctx context.Context, id uuid.UUID, photoKey string) error
}

// VoterRepository defines persistence for voters
type VoterRepository interface {
	Create(ctx context.Context, v *voter.Voter) error
	GetByID(ctx context.Context, id uuid.UUID) (*voter.Voter, error)
	GetByEmail(ctx context.Context, email string) (*voter.Voter, error)
	CountVoters(ctx context.Context) (int64, error)
	Update(ctx context.Context, v *voter.Voter) error
}

// VoteRepository defines persistence for the vote log and its has-voted
// status mirror
type VoteRepository interface {
	Commit(ctx context.Context, v *vote.Vote, s *vote.VoterElectionStatus) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*vote.Vote, error)
	CountByElection(ctx context.Context, electionID uuid.UUID) (int64, error)
	CountByCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error)
	HasVoted(ctx context.Context, electionID, voterID uuid.UUID) (bool, error)
}

// ResultRepository defines persistence for derived election results
type ResultRepository interface {
	UpsertResult(ctx context.Context, r *tally.ElectionResult) error
	UpdateRank(ctx context.Context, electionID, candidateID uuid.UUID, rank int) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) ([]*tally.ElectionResult, error)
}

// ReportRepository defines persistence for election summary reports
type ReportRepository interface {
	UpsertReport(ctx context.Context, r *tally.ElectionReport) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) (*tally.ElectionReport, error)
}

// RegistryRepository defines lookups against the identity registries
type RegistryRepository interface {
	FindAadhar(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*verification.AadharRecord, error)
	FindVoterID(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*verification.VoterIDRecord, error)
}

// RepositoryContainer bundles every repository behind one handle
type RepositoryContainer interface {
	Elections() ElectionRepository
	Candidates() CandidateRepository
	Voters() VoterRepository
	Votes() VoteRepository
	Results() ResultRepository
	Reports() ReportRepository
	Registry() RegistryRepository
	Health() error
	Close() error
}

// translateError maps GORM/pgx driver errors onto the storage sentinels.
// The 23505 check matters most: it is how a lost vote race surfaces.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return storage.ErrDuplicateKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrDuplicateKey
	}

	return err
}
