package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage"
	"github.com/ballotworks/electoral-api/internal/verification"
)

// PostgresRegistryRepository implements RegistryRepository over the seeded
// identity registry tables
type PostgresRegistryRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresRegistryRepository creates a new PostgreSQL registry repository
func NewPostgresRegistryRepository(db *gorm.DB) *PostgresRegistryRepository {
	return &PostgresRegistryRepository{
		db:  db,
		log: logger.Repository("registry"),
	}
}

// FindAadhar looks up one Aadhar entry by exact number, name and date of
// birth. All three must match; a near miss is a not-found.
func (r *PostgresRegistryRepository) FindAadhar(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*verification.AadharRecord, error) {
	r.log.Debug("looking up aadhar registry entry")

	var record verification.AadharRecord
	if err := r.db.WithContext(ctx).
		Where("aadhar_number = ? AND full_name = ? AND date_of_birth = ?",
			number, fullName, dateOfBirth).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("aadhar registry lookup failed", "error", err)
		return nil, fmt.Errorf("aadhar registry lookup failed: %w", err)
	}

	return &record, nil
}

// FindVoterID looks up one electoral-roll entry by exact number, name and
// date of birth.
func (r *PostgresRegistryRepository) FindVoterID(ctx context.Context, number, fullName string, dateOfBirth time.Time) (*verification.VoterIDRecord, error) {
	r.log.Debug("looking up voter ID registry entry")

	var record verification.VoterIDRecord
	if err := r.db.WithContext(ctx).
		Where("voter_id_number = ? AND full_name = ? AND date_of_birth = ?",
			number, fullName, dateOfBirth).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("voter ID registry lookup failed", "error", err)
		return nil, fmt.Errorf("voter ID registry lookup failed: %w", err)
	}

	return &record, nil
}
