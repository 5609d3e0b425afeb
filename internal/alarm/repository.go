package alarm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const maxNameLength = 100

// Repository defines the interface for alarm zone persistence.
type Repository interface {
	CreateZone(ctx context.Context, zone *Zone) error
	GetZone(ctx context.Context, id string) (*Zone, error)
	ListZones(ctx context.Context) ([]Zone, error)
	ListZonesBySite(ctx context.Context, siteID string) ([]Zone, error)
	UpdateZone(ctx context.Context, zone *Zone) error
	DeleteZone(ctx context.Context, id string) error

	// SetArmedState transitions a zone and maintains its timestamps:
	// arming stamps last_armed_at, triggering stamps triggered_at, and
	// disarming clears triggered_at.
	SetArmedState(ctx context.Context, id string, state ArmedState) error

	// SetZoneDevices replaces a zone's device membership.
	SetZoneDevices(ctx context.Context, zoneID string, deviceIDs []string) error
	GetZoneDeviceIDs(ctx context.Context, zoneID string) ([]string, error)

	// ListArmedZonesForDevice returns armed zones containing the device.
	// Used by trigger evaluation; triggered and disarmed zones are not
	// re-triggered.
	ListArmedZonesForDevice(ctx context.Context, deviceID string) ([]Zone, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed alarm zone repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const zoneSelect = `SELECT id, site_id, name, armed_state, last_armed_at, triggered_at,
	created_at, updated_at FROM alarm_zones`

// CreateZone inserts a new zone. New zones start disarmed.
func (r *SQLiteRepository) CreateZone(ctx context.Context, zone *Zone) error {
	if err := validateName(zone.Name); err != nil {
		return err
	}
	if zone.ArmedState == "" {
		zone.ArmedState = ArmedStateDisarmed
	}

	const query = `INSERT INTO alarm_zones (id, site_id, name, armed_state)
		VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		zone.ID, zone.SiteID, zone.Name, string(zone.ArmedState))
	if err != nil {
		return fmt.Errorf("inserting zone %s: %w", zone.ID, err)
	}
	return nil
}

// GetZone returns a single zone by ID.
func (r *SQLiteRepository) GetZone(ctx context.Context, id string) (*Zone, error) {
	row := r.db.QueryRowContext(ctx, zoneSelect+` WHERE id = ?`, id)
	zone, err := scanZone(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("scanning zone: %w", err)
	}
	return zone, nil
}

// ListZones returns all zones ordered by name.
func (r *SQLiteRepository) ListZones(ctx context.Context) ([]Zone, error) {
	return r.queryZones(ctx, zoneSelect+` ORDER BY name`)
}

// ListZonesBySite returns zones for a specific site.
func (r *SQLiteRepository) ListZonesBySite(ctx context.Context, siteID string) ([]Zone, error) {
	return r.queryZones(ctx, zoneSelect+` WHERE site_id = ? ORDER BY name`, siteID)
}

// UpdateZone updates a zone's name. Armed state moves only through
// SetArmedState.
func (r *SQLiteRepository) UpdateZone(ctx context.Context, zone *Zone) error {
	if err := validateName(zone.Name); err != nil {
		return err
	}

	const query = `UPDATE alarm_zones SET
		name = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, zone.Name, zone.ID)
	if err != nil {
		return fmt.Errorf("updating zone %s: %w", zone.ID, err)
	}
	return requireRow(result)
}

// DeleteZone removes a zone and its device membership (cascade).
func (r *SQLiteRepository) DeleteZone(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alarm_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting zone %s: %w", id, err)
	}
	return requireRow(result)
}

// SetArmedState transitions a zone's armed state and stamps the
// associated timestamps.
func (r *SQLiteRepository) SetArmedState(ctx context.Context, id string, state ArmedState) error {
	var query string
	switch state {
	case ArmedStateArmed:
		query = `UPDATE alarm_zones SET armed_state = ?,
			last_armed_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			triggered_at = NULL,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			WHERE id = ?`
	case ArmedStateTriggered:
		query = `UPDATE alarm_zones SET armed_state = ?,
			triggered_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			WHERE id = ?`
	case ArmedStateDisarmed:
		query = `UPDATE alarm_zones SET armed_state = ?,
			triggered_at = NULL,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			WHERE id = ?`
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransition, state)
	}

	result, err := r.db.ExecContext(ctx, query, string(state), id)
	if err != nil {
		return fmt.Errorf("setting zone %s armed state: %w", id, err)
	}
	return requireRow(result)
}

// SetZoneDevices replaces the device membership for a zone in a single
// transaction.
func (r *SQLiteRepository) SetZoneDevices(ctx context.Context, zoneID string, deviceIDs []string) error {
	if zoneID == "" {
		return fmt.Errorf("zone id is required")
	}

	unique := dedupe(deviceIDs)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM alarm_zones WHERE id = ?`, zoneID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking zone: %w", err)
	}
	if exists == 0 {
		return ErrZoneNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM alarm_zone_devices WHERE zone_id = ?`, zoneID); err != nil {
		return fmt.Errorf("clearing zone devices: %w", err)
	}
	for _, deviceID := range unique {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO alarm_zone_devices (zone_id, device_id) VALUES (?, ?)`,
			zoneID, deviceID)
		if err != nil {
			return fmt.Errorf("adding device %s to zone: %w", deviceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetZoneDeviceIDs returns device IDs assigned to a zone.
func (r *SQLiteRepository) GetZoneDeviceIDs(ctx context.Context, zoneID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT device_id FROM alarm_zone_devices WHERE zone_id = ? ORDER BY device_id`,
		zoneID)
	if err != nil {
		return nil, fmt.Errorf("querying zone device ids: %w", err)
	}
	defer rows.Close()

	var deviceIDs []string
	for rows.Next() {
		var deviceID string
		if err := rows.Scan(&deviceID); err != nil {
			return nil, fmt.Errorf("scanning zone device id: %w", err)
		}
		deviceIDs = append(deviceIDs, deviceID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone device ids: %w", err)
	}
	return deviceIDs, nil
}

// ListArmedZonesForDevice returns armed zones that contain the device.
func (r *SQLiteRepository) ListArmedZonesForDevice(ctx context.Context, deviceID string) ([]Zone, error) {
	const query = `SELECT z.id, z.site_id, z.name, z.armed_state,
		z.last_armed_at, z.triggered_at, z.created_at, z.updated_at
		FROM alarm_zones z
		JOIN alarm_zone_devices zd ON zd.zone_id = z.id
		WHERE zd.device_id = ? AND z.armed_state = ?
		ORDER BY z.name`

	return r.queryZones(ctx, query, deviceID, string(ArmedStateArmed))
}

// queryZones executes a query and returns a slice of Zone.
func (r *SQLiteRepository) queryZones(ctx context.Context, query string, args ...any) ([]Zone, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying zones: %w", err)
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning zone row: %w", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone rows: %w", err)
	}
	return zones, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(scanner rowScanner) (*Zone, error) {
	var z Zone
	var armedState string
	var lastArmedAt, triggeredAt sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(&z.ID, &z.SiteID, &z.Name, &armedState,
		&lastArmedAt, &triggeredAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	z.ArmedState = ArmedState(armedState)
	z.LastArmedAt = timePtr(lastArmedAt)
	z.TriggeredAt = timePtr(triggeredAt)
	z.CreatedAt = parseTime(createdAt)
	z.UpdatedAt = parseTime(updatedAt)
	return &z, nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrZoneNotFound
	}
	return nil
}

func timePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
