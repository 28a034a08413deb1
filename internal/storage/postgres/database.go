package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/storage/migrations"
)

// DB holds the database connection
var DB *gorm.DB

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns default connection configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
	}
}

// DatabaseMetrics holds database connection metrics
type DatabaseMetrics struct {
	OpenConnections  int
	InUseConnections int
	IdleConnections  int
}

// Connect establishes a connection to the PostgreSQL database
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithConfig(cfg, DefaultConnectionConfig())
}

// ConnectWithConfig establishes a connection with custom configuration
func ConnectWithConfig(cfg *config.Config, connCfg *ConnectionConfig) (*gorm.DB, error) {
	log := logger.Database()

	if err := validateDatabaseConfig(cfg); err != nil {
		log.Error("Database configuration validation failed", "error", err)
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dsn := cfg.GetDatabaseURL()
	log.Debug("Connecting to database", "host", cfg.DB.Host, "port", cfg.DB.Port, "database", cfg.DB.Name)

	// Configure GORM logger based on environment
	var gormLoggerInstance gormLogger.Interface
	if cfg.Server.GinMode == "debug" {
		gormLoggerInstance = gormLogger.Default.LogMode(gormLogger.Info)
		log.Debug("GORM logging enabled (debug mode)")
	} else {
		gormLoggerInstance = gormLogger.Default.LogMode(gormLogger.Silent)
		log.Debug("GORM logging disabled (production mode)")
	}

	// TranslateError lets repositories detect unique-constraint violations
	// through gorm.ErrDuplicatedKey, which backs the one-vote guarantee.
	gormConfig := &gorm.Config{
		Logger: gormLoggerInstance,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:    true,
		TranslateError: true,
	}

	// Attempt connection with retry logic
	var db *gorm.DB
	var err error
	maxRetries := 3
	retryDelay := time.Second * 2

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Debug("Database connection attempt", "attempt", attempt, "max_retries", maxRetries)

		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err == nil {
			break
		}

		log.Warn("Database connection failed", "attempt", attempt, "error", err)
		if attempt < maxRetries {
			log.Debug("Retrying database connection", "delay", retryDelay)
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		log.Error("Failed to connect to database after retries", "error", err, "attempts", maxRetries)
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	if err := configureConnectionPool(db, connCfg); err != nil {
		log.Error("Failed to configure connection pool", "error", err)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := testConnection(db); err != nil {
		log.Error("Database connection test failed", "error", err)
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	DB = db

	metrics := GetDatabaseMetrics(db)
	log.Info("Successfully connected to PostgreSQL database",
		"host", cfg.DB.Host,
		"database", cfg.DB.Name,
		"max_open_conns", connCfg.MaxOpenConns,
		"max_idle_conns", connCfg.MaxIdleConns,
		"open_connections", metrics.OpenConnections)

	return db, nil
}

// validateDatabaseConfig validates the database configuration
func validateDatabaseConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.DB.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}

	if cfg.DB.Port == "" {
		return fmt.Errorf("database port cannot be empty")
	}

	if cfg.DB.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if cfg.DB.User == "" {
		return fmt.Errorf("database user cannot be empty")
	}

	return nil
}

// configureConnectionPool configures the database connection pool
func configureConnectionPool(db *gorm.DB, cfg *ConnectionConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return nil
}

// testConnection tests the database connection
func testConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// GetDatabaseMetrics returns current database connection metrics
func GetDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	sqlDB, err := db.DB()
	if err != nil {
		return &DatabaseMetrics{}
	}

	stats := sqlDB.Stats()
	return &DatabaseMetrics{
		OpenConnections:  stats.OpenConnections,
		InUseConnections: stats.InUse,
		IdleConnections:  stats.Idle,
	}
}

// HealthCheck performs a health check on the database connection
func HealthCheck(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	return testConnection(db)
}

// AutoMigrate runs the structured migrations for all models
func AutoMigrate(db *gorm.DB) error {
	log := logger.Migration()
	log.Info("Starting database migrations...")

	if db == nil {
		log.Error("Database connection is nil")
		return fmt.Errorf("database connection is nil")
	}

	if err := HealthCheck(db); err != nil {
		log.Error("Database health check failed before migrations", "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}

	startTime := time.Now()

	if err := migrations.RunMigrations(db); err != nil {
		log.Error("Database migrations failed", "error", err, "duration", time.Since(startTime))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	duration := time.Since(startTime)
	log.Info("Database migrations completed successfully", "duration", duration)
	return nil
}

// Close closes the database connection
func Close() error {
	log := logger.Database()

	if DB == nil {
		log.Warn("Attempted to close nil database connection")
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Error("Failed to get database instance for closing", "error", err)
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	DB = nil

	log.Info("Database connection closed successfully")
	return nil
}
