package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/migration"
	"github.com/julianstephens/slotbook/migrations"
)

type PostgresStore struct {
	sqlStore
	connStr string
}

// NewPostgresStore returns a store for connStr with search_path defaulted to
// the slotbook schema.
func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		sqlStore: sqlStore{driver: migration.DriverPostgres},
		connStr:  withSearchPath(connStr, constants.AppName),
	}
}

func (s *PostgresStore) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}

	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", constants.AppName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: no %s schema in database", ErrNotInitialized, constants.AppName)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	version, err := runner.CurrentVersion()
	if err != nil {
		return err
	}
	if version == 0 {
		return fmt.Errorf("%w: no slotbook schema in database", ErrNotInitialized)
	}
	return runner.ValidateVersion()
}

func (s *PostgresStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub, migration.DriverPostgres), nil
}

func (s *PostgresStore) Close() error {
	return s.close()
}

// GetConfigPath returns the connection string with any password masked.
func (s *PostgresStore) GetConfigPath() string {
	return MaskPassword(s.connStr)
}

// SchemaVersion reports the applied migration version.
func (s *PostgresStore) SchemaVersion() (int, error) {
	if s.db == nil {
		return 0, ErrNotLoaded
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.CurrentVersion()
}

// LatestSchemaVersion reports the newest migration embedded in the binary.
func (s *PostgresStore) LatestSchemaVersion() (int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.LatestVersion()
}
