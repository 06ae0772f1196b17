// Package database manages the MySQL connection used for run summaries and
// integration locks.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/logger"
)

// Manager owns the summary database connection.
type Manager struct {
	DB         *sql.DB
	config     config.DatabaseConfig
	logger     *logger.Logger
	open       func(dsn string) (*sql.DB, error)
	maxRetries int
	backoff    time.Duration
}

// NewManager creates a manager for cfg. Nothing is opened until Connect.
func NewManager(cfg config.DatabaseConfig, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Manager{
		config:     cfg,
		logger:     log,
		open:       func(dsn string) (*sql.DB, error) { return sql.Open("mysql", dsn) },
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// Connect opens and verifies the connection.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to summary database: %w", err)
	}
	m.DB = db
	m.logger.Infof("Connected to summary database %s@%s:%d/%s",
		m.config.User, m.config.Host, m.config.Port, m.config.Database)
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var err error
	backoff := m.backoff

	for i := 0; i < m.maxRetries; i++ {
		var db *sql.DB
		db, err = m.connect()
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				return db, nil
			}
			_ = db.Close()
		}

		m.logger.Warnf("Database connection attempt %d/%d failed: %v", i+1, m.maxRetries, err)
		if i < m.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

func (m *Manager) connect() (*sql.DB, error) {
	db, err := m.open(BuildDSN(&m.config))
	if err != nil {
		return nil, err
	}

	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	if m.config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(m.config.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration. Run timestamps are
// parsed into time.Time in UTC.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("loc", "UTC")
	switch cfg.TLS {
	case "disable":
		params.Set("tls", "false")
	case "required":
		params.Set("tls", "true")
	default:
		params.Set("tls", "preferred")
	}

	return dsn + "?" + params.Encode()
}

// Close closes the connection if it is open.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	err := m.DB.Close()
	m.DB = nil
	if err != nil {
		return fmt.Errorf("summary database close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("summary database is not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("summary database ping failed: %w", err)
	}
	return nil
}
