package postgres

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/logger"
)

// Container implements RepositoryContainer interface
type Container struct {
	db            *gorm.DB
	log           *log.Logger
	electionRepo  ElectionRepository
	candidateRepo CandidateRepository
	voterRepo     VoterRepository
	voteRepo      VoteRepository
	resultRepo    ResultRepository
	reportRepo    ReportRepository
	registryRepo  RegistryRepository
}

// NewContainer creates a new repository container with all repositories initialized
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	// Establish database connection
	db, err := Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := AutoMigrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := NewContainerWithDB(db)

	// Perform health check
	if err := container.Health(); err != nil {
		log.Error("Container health check failed", "error", err)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	log := logger.Repository("postgres_container")

	return &Container{
		db:            db,
		log:           log,
		electionRepo:  NewPostgresElectionRepository(db),
		candidateRepo: NewPostgresCandidateRepository(db),
		voterRepo:     NewPostgresVoterRepository(db),
		voteRepo:      NewPostgresVoteRepository(db),
		resultRepo:    NewPostgresResultRepository(db),
		reportRepo:    NewPostgresReportRepository(db),
		registryRepo:  NewPostgresRegistryRepository(db),
	}
}

// Elections returns the election repository
func (c *Container) Elections() ElectionRepository {
	return c.electionRepo
}

// Candidates returns the candidate repository
func (c *Container) Candidates() CandidateRepository {
	return c.candidateRepo
}

// Voters returns the voter repository
func (c *Container) Voters() VoterRepository {
	return c.voterRepo
}

// Votes returns the vote repository
func (c *Container) Votes() VoteRepository {
	return c.voteRepo
}

// Results returns the result repository
func (c *Container) Results() ResultRepository {
	return c.resultRepo
}

// Reports returns the report repository
func (c *Container) Reports() ReportRepository {
	return c.reportRepo
}

// Registry returns the identity registry repository
func (c *Container) Registry() RegistryRepository {
	return c.registryRepo
}

// Health performs a health check on all repositories and database connection
func (c *Container) Health() error {
	c.log.Debug("Performing container health check...")

	// Check database connection
	if err := HealthCheck(c.db); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Get connection metrics
	metrics := GetDatabaseMetrics(c.db)
	c.log.Debug("Database connection metrics",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections,
		"idle_connections", metrics.IdleConnections)

	// Verify each backing table answers a basic query
	tables := []string{
		"elections",
		"candidates",
		"voters",
		"votes",
		"voter_election_status",
		"election_results",
		"election_reports",
		"aadhar_registry",
		"voter_id_registry",
	}

	for _, table := range tables {
		var count int64
		if err := c.db.Table(table).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("table %s health check failed: %w", table, err)
		}
		c.log.Debug("Repository health check passed", "table", table)
	}

	c.log.Debug("Container health check completed successfully")
	return nil
}

// Close gracefully shuts down the container and closes database connections
func (c *Container) Close() error {
	c.log.Info("Closing PostgreSQL repository container...")

	if c.db == nil {
		c.log.Warn("Database connection is nil, nothing to close")
		return nil
	}

	// Get final metrics before closing
	metrics := GetDatabaseMetrics(c.db)
	c.log.Debug("Final database metrics",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections,
		"idle_connections", metrics.IdleConnections)

	if err := Close(); err != nil {
		c.log.Error("Failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	c.electionRepo = nil
	c.candidateRepo = nil
	c.voterRepo = nil
	c.voteRepo = nil
	c.resultRepo = nil
	c.reportRepo = nil
	c.registryRepo = nil
	c.db = nil

	c.log.Info("PostgreSQL repository container closed successfully")
	return nil
}

// CloseWithTimeout closes the container with a timeout
func (c *Container) CloseWithTimeout(timeout time.Duration) error {
	done := make(chan error, 1)

	go func() {
		done <- c.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		c.log.Error("Container close operation timed out", "timeout", timeout)
		return fmt.Errorf("container close operation timed out after %v", timeout)
	}
}

// GetDB returns the underlying database connection (for advanced usage)
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
