package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/argus-security/argus-core/internal/connector"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Upsert inserts or updates a device keyed on (connector_id, device_id).
	// Upserting the same key twice leaves exactly one row carrying the
	// latest field values.
	Upsert(ctx context.Context, dev *Device) error

	// GetByID retrieves a device by its internal identifier.
	// Returns ErrNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// GetByKey retrieves a device by its (connectorID, deviceID) composite.
	// Returns ErrNotFound if no such device exists.
	GetByKey(ctx context.Context, connectorID, deviceID string) (*Device, error)

	// List retrieves all devices ordered by name.
	List(ctx context.Context) ([]Device, error)

	// ListByConnector retrieves all devices owned by one connector.
	ListByConnector(ctx context.Context, connectorID string) ([]Device, error)

	// ListEnriched retrieves all devices joined with connector metadata,
	// Piko server details, and bidirectional association counts.
	ListEnriched(ctx context.Context) ([]EnrichedDevice, error)

	// GetEnriched retrieves one enriched device by internal identifier.
	// Returns ErrNotFound if the device does not exist.
	GetEnriched(ctx context.Context, id string) (*EnrichedDevice, error)
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

// Upsert inserts or updates a device keyed on (connector_id, device_id).
func (r *SQLiteRepository) Upsert(ctx context.Context, dev *Device) error {
	if strings.TrimSpace(dev.Name) == "" {
		return ErrInvalidName
	}

	now := time.Now().UTC()
	if dev.CreatedAt.IsZero() {
		dev.CreatedAt = now
	}
	dev.UpdatedAt = now

	query := `
		INSERT INTO devices (
			id, connector_id, device_id, name, raw_type,
			standardized_type, standardized_subtype, status, model, vendor,
			url, server_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(connector_id, device_id) DO UPDATE SET
			name = excluded.name,
			raw_type = excluded.raw_type,
			standardized_type = excluded.standardized_type,
			standardized_subtype = excluded.standardized_subtype,
			status = excluded.status,
			model = excluded.model,
			vendor = excluded.vendor,
			url = excluded.url,
			server_id = excluded.server_id,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		dev.ID,
		dev.ConnectorID,
		dev.DeviceID,
		dev.Name,
		dev.RawType,
		string(dev.Type),
		nullableSubtype(dev.Subtype),
		nullableString(dev.Status),
		nullableString(dev.Model),
		nullableString(dev.Vendor),
		nullableString(dev.URL),
		nullableString(dev.ServerID),
		dev.CreatedAt.Format(time.RFC3339),
		dev.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting device: %w", err)
	}

	return nil
}

// GetByID retrieves a device by its internal identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := deviceSelect + ` WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	dev, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return dev, nil
}

// GetByKey retrieves a device by its (connectorID, deviceID) composite.
func (r *SQLiteRepository) GetByKey(ctx context.Context, connectorID, deviceID string) (*Device, error) {
	query := deviceSelect + ` WHERE connector_id = ? AND device_id = ?`

	row := r.db.QueryRowContext(ctx, query, connectorID, deviceID)
	dev, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying device by key: %w", err)
	}
	return dev, nil
}

// List retrieves all devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, deviceSelect+` ORDER BY name`)
}

// ListByConnector retrieves all devices owned by one connector.
func (r *SQLiteRepository) ListByConnector(ctx context.Context, connectorID string) ([]Device, error) {
	return r.queryDevices(ctx, deviceSelect+` WHERE connector_id = ? ORDER BY name`, connectorID)
}

// ListEnriched retrieves all devices joined with connector name/category
// and Piko server details, plus per-device association counts.
//
// The two association-count aggregates are read-only and independent, so
// they run concurrently and their results are summed per device id - a
// device could appear as both the source and the target of a link.
func (r *SQLiteRepository) ListEnriched(ctx context.Context) ([]EnrichedDevice, error) {
	query := enrichedSelect + ` ORDER BY d.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying enriched devices: %w", err)
	}
	defer rows.Close()

	var devices []EnrichedDevice
	for rows.Next() {
		dev, err := scanEnrichedDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning enriched device: %w", err)
		}
		devices = append(devices, *dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enriched devices: %w", err)
	}

	counts, err := r.associationCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		devices[i].AssociationCount = counts[devices[i].Device.ID]
	}

	return devices, nil
}

// GetEnriched retrieves one enriched device by internal identifier.
//
// The association count is direction-aware: a Piko device is counted as a
// camera target, anything else as a link source.
func (r *SQLiteRepository) GetEnriched(ctx context.Context, id string) (*EnrichedDevice, error) {
	query := enrichedSelect + ` WHERE d.id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	dev, err := scanEnrichedDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying enriched device: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM camera_associations WHERE device_id = ?`
	if dev.ConnectorCategory == connector.CategoryPiko {
		countQuery = `SELECT COUNT(*) FROM camera_associations WHERE piko_camera_id = ?`
	}
	if err := r.db.QueryRowContext(ctx, countQuery, id).Scan(&dev.AssociationCount); err != nil {
		return nil, fmt.Errorf("counting associations: %w", err)
	}

	return dev, nil
}

// associationCounts computes per-device association counts for the full
// device set in two grouped queries, one per link direction.
func (r *SQLiteRepository) associationCounts(ctx context.Context) (map[string]int, error) {
	var sourceCounts, targetCounts map[string]int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sourceCounts, err = r.groupedCounts(gctx,
			`SELECT device_id, COUNT(*) FROM camera_associations GROUP BY device_id`)
		return err
	})
	g.Go(func() error {
		var err error
		targetCounts, err = r.groupedCounts(gctx,
			`SELECT piko_camera_id, COUNT(*) FROM camera_associations GROUP BY piko_camera_id`)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(sourceCounts)+len(targetCounts))
	for id, n := range sourceCounts {
		counts[id] += n
	}
	for id, n := range targetCounts {
		counts[id] += n
	}
	return counts, nil
}

// groupedCounts runs a two-column (id, count) aggregate query into a map.
func (r *SQLiteRepository) groupedCounts(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying association counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning association count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating association counts: %w", err)
	}
	return counts, nil
}

// queryDevices executes a query and returns a slice of devices.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *dev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

const deviceSelect = `
	SELECT id, connector_id, device_id, name, raw_type,
		standardized_type, standardized_subtype, status, model, vendor,
		url, server_id, created_at, updated_at
	FROM devices`

const enrichedSelect = `
	SELECT d.id, d.connector_id, d.device_id, d.name, d.raw_type,
		d.standardized_type, d.standardized_subtype, d.status, d.model, d.vendor,
		d.url, d.server_id, d.created_at, d.updated_at,
		c.name, c.category,
		s.server_id, s.connector_id, s.name, s.status, s.version, s.os_platform, s.url,
		s.created_at, s.updated_at
	FROM devices d
	JOIN connectors c ON c.id = d.connector_id
	LEFT JOIN piko_servers s ON s.server_id = d.server_id`

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a row or rows result into a Device.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var standardizedType string
	var subtype, status, model, vendor, url, serverID sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&d.ID, &d.ConnectorID, &d.DeviceID, &d.Name, &d.RawType,
		&standardizedType, &subtype, &status, &model, &vendor,
		&url, &serverID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Type = StandardizedType(standardizedType)
	if subtype.Valid {
		d.Subtype = StandardizedSubtype(subtype.String)
	}
	d.Status = stringPtr(status)
	d.Model = stringPtr(model)
	d.Vendor = stringPtr(vendor)
	d.URL = stringPtr(url)
	d.ServerID = stringPtr(serverID)

	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &d, nil
}

// scanEnrichedDevice scans a joined row into an EnrichedDevice.
func scanEnrichedDevice(scanner rowScanner) (*EnrichedDevice, error) {
	var e EnrichedDevice
	var standardizedType string
	var subtype, status, model, vendor, url, serverID sql.NullString
	var createdAt, updatedAt string
	var connectorCategory string
	var srvID, srvConnectorID, srvName sql.NullString
	var srvStatus, srvVersion, srvOSPlatform, srvURL sql.NullString
	var srvCreatedAt, srvUpdatedAt sql.NullString

	err := scanner.Scan(
		&e.Device.ID, &e.Device.ConnectorID, &e.Device.DeviceID, &e.Device.Name, &e.Device.RawType,
		&standardizedType, &subtype, &status, &model, &vendor,
		&url, &serverID, &createdAt, &updatedAt,
		&e.ConnectorName, &connectorCategory,
		&srvID, &srvConnectorID, &srvName, &srvStatus, &srvVersion, &srvOSPlatform, &srvURL,
		&srvCreatedAt, &srvUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Device.Type = StandardizedType(standardizedType)
	if subtype.Valid {
		e.Device.Subtype = StandardizedSubtype(subtype.String)
	}
	e.Device.Status = stringPtr(status)
	e.Device.Model = stringPtr(model)
	e.Device.Vendor = stringPtr(vendor)
	e.Device.URL = stringPtr(url)
	e.Device.ServerID = stringPtr(serverID)
	e.ConnectorCategory = connector.Category(connectorCategory)

	if e.Device.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.Device.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	if srvID.Valid {
		srv := PikoServer{
			ServerID:    srvID.String,
			ConnectorID: srvConnectorID.String,
			Name:        srvName.String,
			Status:      stringPtr(srvStatus),
			Version:     stringPtr(srvVersion),
			OSPlatform:  stringPtr(srvOSPlatform),
			URL:         stringPtr(srvURL),
		}
		if srvCreatedAt.Valid {
			if srv.CreatedAt, err = time.Parse(time.RFC3339, srvCreatedAt.String); err != nil {
				return nil, fmt.Errorf("parsing server created_at: %w", err)
			}
		}
		if srvUpdatedAt.Valid {
			if srv.UpdatedAt, err = time.Parse(time.RFC3339, srvUpdatedAt.String); err != nil {
				return nil, fmt.Errorf("parsing server updated_at: %w", err)
			}
		}
		e.Server = &srv
	}

	return &e, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableSubtype returns a sql.NullString for an optional subtype.
func nullableSubtype(s StandardizedSubtype) sql.NullString {
	if s == SubtypeNone {
		return sql.NullString{}
	}
	return sql.NullString{String: string(s), Valid: true}
}

// stringPtr converts a sql.NullString to an optional string pointer.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
