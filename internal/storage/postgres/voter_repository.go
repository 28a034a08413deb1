package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
)

// PostgresVoterRepository implements VoterRepository using GORM
type PostgresVoterRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresVoterRepository creates a new PostgreSQL voter repository
func NewPostgresVoterRepository(db *gorm.DB) *PostgresVoterRepository {
	return &PostgresVoterRepository{
		db:  db,
		log: logger.Repository("voter"),
	}
}

func (r *PostgresVoterRepository) Create(ctx context.Context, v *voter.Voter) error {
	r.log.Debug("creating voter", "email", v.Email, "name", v.FullName)

	if err := v.Validate(); err != nil {
		r.log.Error("voter validation failed", "error", err)
		return fmt.Errorf("voter validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if translated := translateError(err); errors.Is(translated, storage.ErrDuplicateKey) {
			r.log.Warn("voter already registered", "email", v.Email)
			return translated
		}
		r.log.Error("failed to create voter", "error", err, "email", v.Email)
		return fmt.Errorf("failed to create voter: %w", err)
	}

	r.log.Info("voter created successfully", "voter_id", v.ID, "email", v.Email)
	return nil
}

func (r *PostgresVoterRepository) GetByID(ctx context.Context, id uuid.UUID) (*voter.Voter, error) {
	r.log.Debug("retrieving voter by ID", "voter_id", id)

	var v voter.Voter
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("voter not found", "voter_id", id)
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get voter by ID", "voter_id", id, "error", err)
		return nil, fmt.Errorf("failed to get voter by ID: %w", err)
	}

	return &v, nil
}

func (r *PostgresVoterRepository) GetByEmail(ctx context.Context, email string) (*voter.Voter, error) {
	r.log.Debug("retrieving voter by email", "email", email)

	if email == "" {
		r.log.Error("empty email provided")
		return nil, errors.New("email cannot be empty")
	}

	var v voter.Voter
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("voter not found", "email", email)
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get voter by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get voter by email: %w", err)
	}

	return &v, nil
}

// CountVoters counts every registered voter. This is the turnout
// denominator, so it deliberately includes voters who never cast a vote.
func (r *PostgresVoterRepository) CountVoters(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voter.Voter{}).Count(&count).Error; err != nil {
		r.log.Error("failed to count voters", "error", err)
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}

	r.log.Debug("counted registered voters", "count", count)
	return count, nil
}

func (r *PostgresVoterRepository) Update(ctx context.Context, v *voter.Voter) error {
	r.log.Debug("updating voter", "voter_id", v.ID, "email", v.Email)

	if err := v.Validate(); err != nil {
		r.log.Error("voter validation failed", "error", err)
		return fmt.Errorf("voter validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		r.log.Error("failed to update voter", "voter_id", v.ID, "error", err)
		return fmt.Errorf("failed to update voter: %w", translateError(err))
	}

	r.log.Info("voter updated successfully", "voter_id", v.ID)
	return nil
}
