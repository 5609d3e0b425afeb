package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for connector persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a connector by its unique identifier.
	// Returns ErrNotFound if the connector does not exist.
	GetByID(ctx context.Context, id string) (*Connector, error)

	// List retrieves all connectors ordered by name.
	List(ctx context.Context) ([]Connector, error)

	// ListByCategory retrieves all connectors for one vendor category.
	ListByCategory(ctx context.Context, category Category) ([]Connector, error)

	// Create inserts a new connector.
	// Returns ErrExists if a connector with the same ID already exists.
	Create(ctx context.Context, conn *Connector) error

	// Update modifies an existing connector.
	// Returns ErrNotFound if the connector does not exist.
	Update(ctx context.Context, conn *Connector) error

	// Delete removes a connector by ID. Device and association rows
	// cascade at the database level.
	// Returns ErrNotFound if the connector does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a connector by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Connector, error) {
	query := `
		SELECT id, category, name, config, created_at, updated_at
		FROM connectors
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	conn, err := scanConnector(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying connector by id: %w", err)
	}
	return conn, nil
}

// List retrieves all connectors ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Connector, error) {
	query := `
		SELECT id, category, name, config, created_at, updated_at
		FROM connectors
		ORDER BY name`

	return r.queryConnectors(ctx, query)
}

// ListByCategory retrieves all connectors for one vendor category.
func (r *SQLiteRepository) ListByCategory(ctx context.Context, category Category) ([]Connector, error) {
	query := `
		SELECT id, category, name, config, created_at, updated_at
		FROM connectors
		WHERE category = ?
		ORDER BY name`

	return r.queryConnectors(ctx, query, string(category))
}

// Create inserts a new connector.
func (r *SQLiteRepository) Create(ctx context.Context, conn *Connector) error {
	if !conn.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, conn.Category)
	}
	if strings.TrimSpace(conn.Name) == "" {
		return ErrInvalidName
	}

	now := time.Now().UTC()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	query := `
		INSERT INTO connectors (id, category, name, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		conn.ID,
		string(conn.Category),
		conn.Name,
		conn.RawConfig,
		conn.CreatedAt.Format(time.RFC3339),
		conn.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting connector: %w", err)
	}

	return nil
}

// Update modifies an existing connector.
func (r *SQLiteRepository) Update(ctx context.Context, conn *Connector) error {
	if !conn.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, conn.Category)
	}
	if strings.TrimSpace(conn.Name) == "" {
		return ErrInvalidName
	}

	conn.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE connectors
		SET category = ?, name = ?, config = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		string(conn.Category),
		conn.Name,
		conn.RawConfig,
		conn.UpdatedAt.Format(time.RFC3339),
		conn.ID,
	)
	if err != nil {
		return fmt.Errorf("updating connector: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a connector by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM connectors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting connector: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// queryConnectors executes a query and returns a slice of connectors.
func (r *SQLiteRepository) queryConnectors(ctx context.Context, query string, args ...any) ([]Connector, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying connectors: %w", err)
	}
	defer rows.Close()

	var connectors []Connector
	for rows.Next() {
		conn, err := scanConnector(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connector: %w", err)
		}
		connectors = append(connectors, *conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connectors: %w", err)
	}

	return connectors, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConnector scans a row or rows result into a Connector.
func scanConnector(scanner rowScanner) (*Connector, error) {
	var c Connector
	var category, createdAt, updatedAt string

	err := scanner.Scan(&c.ID, &category, &c.Name, &c.RawConfig, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Category = Category(category)

	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &c, nil
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
