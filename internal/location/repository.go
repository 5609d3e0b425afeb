package location

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// maxNameLength bounds site and space names.
const maxNameLength = 100

// Repository defines the interface for location persistence operations.
type Repository interface {
	CreateSite(ctx context.Context, site *Site) error
	ListSites(ctx context.Context) ([]Site, error)
	GetSite(ctx context.Context, id string) (*Site, error)
	UpdateSite(ctx context.Context, site *Site) error
	DeleteSite(ctx context.Context, id string) error

	CreateSpace(ctx context.Context, space *Space) error
	ListSpaces(ctx context.Context) ([]Space, error)
	ListSpacesBySite(ctx context.Context, siteID string) ([]Space, error)
	GetSpace(ctx context.Context, id string) (*Space, error)
	UpdateSpace(ctx context.Context, space *Space) error
	DeleteSpace(ctx context.Context, id string) error
}

// ValidateName checks if a site or space name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed location repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateSite inserts a new site.
func (r *SQLiteRepository) CreateSite(ctx context.Context, site *Site) error {
	if err := ValidateName(site.Name); err != nil {
		return err
	}
	if site.Timezone == "" {
		site.Timezone = "UTC"
	}

	const query = `INSERT INTO sites (id, name, address, timezone)
		VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		site.ID, site.Name, nullStr(site.Address), site.Timezone)
	if err != nil {
		return fmt.Errorf("inserting site %s: %w", site.ID, err)
	}
	return nil
}

// ListSites returns all sites ordered by name.
func (r *SQLiteRepository) ListSites(ctx context.Context) ([]Site, error) {
	const query = `SELECT id, name, address, timezone, created_at, updated_at
		FROM sites ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning site row: %w", err)
		}
		sites = append(sites, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating site rows: %w", err)
	}
	return sites, nil
}

// GetSite returns a single site by ID.
func (r *SQLiteRepository) GetSite(ctx context.Context, id string) (*Site, error) {
	const query = `SELECT id, name, address, timezone, created_at, updated_at
		FROM sites WHERE id = ?`

	site, err := scanSite(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("scanning site: %w", err)
	}
	return site, nil
}

// UpdateSite updates a site's mutable fields.
func (r *SQLiteRepository) UpdateSite(ctx context.Context, site *Site) error {
	if err := ValidateName(site.Name); err != nil {
		return err
	}

	const query = `UPDATE sites SET
		name = ?, address = ?, timezone = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		site.Name, nullStr(site.Address), site.Timezone, site.ID)
	if err != nil {
		return fmt.Errorf("updating site %s: %w", site.ID, err)
	}
	return requireRow(result, ErrSiteNotFound)
}

// DeleteSite removes a site. Spaces and alarm zones under it are removed
// by the schema's cascade rules.
func (r *SQLiteRepository) DeleteSite(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting site %s: %w", id, err)
	}
	return requireRow(result, ErrSiteNotFound)
}

// CreateSpace inserts a new space.
func (r *SQLiteRepository) CreateSpace(ctx context.Context, space *Space) error {
	if err := ValidateName(space.Name); err != nil {
		return err
	}

	const query = `INSERT INTO spaces (id, site_id, name, description, sort_order)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		space.ID, space.SiteID, space.Name, nullStr(space.Description), space.SortOrder)
	if err != nil {
		return fmt.Errorf("inserting space %s: %w", space.ID, err)
	}
	return nil
}

// ListSpaces returns all spaces ordered by sort_order then name.
func (r *SQLiteRepository) ListSpaces(ctx context.Context) ([]Space, error) {
	const query = `SELECT id, site_id, name, description, sort_order, created_at, updated_at
		FROM spaces ORDER BY sort_order, name`
	return r.querySpaces(ctx, query)
}

// ListSpacesBySite returns spaces for a specific site.
func (r *SQLiteRepository) ListSpacesBySite(ctx context.Context, siteID string) ([]Space, error) {
	const query = `SELECT id, site_id, name, description, sort_order, created_at, updated_at
		FROM spaces WHERE site_id = ? ORDER BY sort_order, name`
	return r.querySpaces(ctx, query, siteID)
}

// GetSpace returns a single space by ID.
func (r *SQLiteRepository) GetSpace(ctx context.Context, id string) (*Space, error) {
	const query = `SELECT id, site_id, name, description, sort_order, created_at, updated_at
		FROM spaces WHERE id = ?`

	space, err := scanSpace(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("scanning space: %w", err)
	}
	return space, nil
}

// UpdateSpace updates a space's mutable fields.
func (r *SQLiteRepository) UpdateSpace(ctx context.Context, space *Space) error {
	if err := ValidateName(space.Name); err != nil {
		return err
	}

	const query = `UPDATE spaces SET
		name = ?, description = ?, sort_order = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		space.Name, nullStr(space.Description), space.SortOrder, space.ID)
	if err != nil {
		return fmt.Errorf("updating space %s: %w", space.ID, err)
	}
	return requireRow(result, ErrSpaceNotFound)
}

// DeleteSpace removes a space.
func (r *SQLiteRepository) DeleteSpace(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting space %s: %w", id, err)
	}
	return requireRow(result, ErrSpaceNotFound)
}

// querySpaces executes a query and returns a slice of Space.
func (r *SQLiteRepository) querySpaces(ctx context.Context, query string, args ...any) ([]Space, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying spaces: %w", err)
	}
	defer rows.Close()

	var spaces []Space
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning space row: %w", err)
		}
		spaces = append(spaces, *sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating space rows: %w", err)
	}
	return spaces, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(scanner rowScanner) (*Site, error) {
	var s Site
	var address sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(&s.ID, &s.Name, &address, &s.Timezone, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if address.Valid {
		s.Address = &address.String
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

func scanSpace(scanner rowScanner) (*Space, error) {
	var sp Space
	var description sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(&sp.ID, &sp.SiteID, &sp.Name, &description,
		&sp.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		sp.Description = &description.String
	}
	sp.CreatedAt = parseTime(createdAt)
	sp.UpdatedAt = parseTime(updatedAt)
	return &sp, nil
}

// requireRow converts a zero-row update or delete into notFound.
func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// parseTime parses an RFC3339 timestamp, returning the zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
