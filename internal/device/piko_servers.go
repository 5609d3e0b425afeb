package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ServerRepository defines persistence operations for Piko VMS servers.
type ServerRepository interface {
	// Upsert inserts or updates a server keyed on its vendor-assigned
	// server_id.
	Upsert(ctx context.Context, srv *PikoServer) error

	// GetByID retrieves a server by its vendor-assigned identifier.
	// Returns ErrServerNotFound if the server does not exist.
	GetByID(ctx context.Context, serverID string) (*PikoServer, error)

	// ListByConnector retrieves all servers owned by one connector.
	ListByConnector(ctx context.Context, connectorID string) ([]PikoServer, error)
}

// SQLiteServerRepository implements ServerRepository using SQLite.
type SQLiteServerRepository struct {
	db *sql.DB
}

// NewSQLiteServerRepository creates a new SQLite-backed server repository.
func NewSQLiteServerRepository(db *sql.DB) *SQLiteServerRepository {
	return &SQLiteServerRepository{db: db}
}

// Upsert inserts or updates a server keyed on server_id.
func (r *SQLiteServerRepository) Upsert(ctx context.Context, srv *PikoServer) error {
	now := time.Now().UTC()
	if srv.CreatedAt.IsZero() {
		srv.CreatedAt = now
	}
	srv.UpdatedAt = now

	query := `
		INSERT INTO piko_servers (
			server_id, connector_id, name, status, version, os_platform, url,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(server_id) DO UPDATE SET
			connector_id = excluded.connector_id,
			name = excluded.name,
			status = excluded.status,
			version = excluded.version,
			os_platform = excluded.os_platform,
			url = excluded.url,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		srv.ServerID,
		srv.ConnectorID,
		srv.Name,
		nullableString(srv.Status),
		nullableString(srv.Version),
		nullableString(srv.OSPlatform),
		nullableString(srv.URL),
		srv.CreatedAt.Format(time.RFC3339),
		srv.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting piko server: %w", err)
	}

	return nil
}

// GetByID retrieves a server by its vendor-assigned identifier.
func (r *SQLiteServerRepository) GetByID(ctx context.Context, serverID string) (*PikoServer, error) {
	query := `
		SELECT server_id, connector_id, name, status, version, os_platform, url,
			created_at, updated_at
		FROM piko_servers
		WHERE server_id = ?`

	row := r.db.QueryRowContext(ctx, query, serverID)
	srv, err := scanPikoServer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServerNotFound
		}
		return nil, fmt.Errorf("querying piko server: %w", err)
	}
	return srv, nil
}

// ListByConnector retrieves all servers owned by one connector.
func (r *SQLiteServerRepository) ListByConnector(ctx context.Context, connectorID string) ([]PikoServer, error) {
	query := `
		SELECT server_id, connector_id, name, status, version, os_platform, url,
			created_at, updated_at
		FROM piko_servers
		WHERE connector_id = ?
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, connectorID)
	if err != nil {
		return nil, fmt.Errorf("querying piko servers: %w", err)
	}
	defer rows.Close()

	var servers []PikoServer
	for rows.Next() {
		srv, err := scanPikoServer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning piko server: %w", err)
		}
		servers = append(servers, *srv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating piko servers: %w", err)
	}

	return servers, nil
}

// scanPikoServer scans a row or rows result into a PikoServer.
func scanPikoServer(scanner rowScanner) (*PikoServer, error) {
	var s PikoServer
	var status, version, osPlatform, url sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&s.ServerID, &s.ConnectorID, &s.Name, &status, &version, &osPlatform, &url,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = stringPtr(status)
	s.Version = stringPtr(version)
	s.OSPlatform = stringPtr(osPlatform)
	s.URL = stringPtr(url)

	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &s, nil
}
