package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/argus-security/argus-core/internal/connector"
)

// AssociationRepository defines persistence operations for camera
// associations.
type AssociationRepository interface {
	// Create links a device to a Piko camera. Rows are not deduplicated;
	// counting logic sums both directions per device id.
	Create(ctx context.Context, assoc *CameraAssociation) error

	// Delete removes all links between the device and camera pair.
	Delete(ctx context.Context, deviceID, pikoCameraID string) error

	// ListForDevice retrieves all links where the device appears as the
	// source.
	ListForDevice(ctx context.Context, deviceID string) ([]CameraAssociation, error)

	// CountForDevice counts links for one device, direction-aware:
	// a Piko device (a camera) is counted as the link target, anything
	// else as the source.
	CountForDevice(ctx context.Context, deviceID string, category connector.Category) (int, error)
}

// SQLiteAssociationRepository implements AssociationRepository using SQLite.
type SQLiteAssociationRepository struct {
	db *sql.DB
}

// NewSQLiteAssociationRepository creates a new SQLite-backed association
// repository.
func NewSQLiteAssociationRepository(db *sql.DB) *SQLiteAssociationRepository {
	return &SQLiteAssociationRepository{db: db}
}

// Create links a device to a Piko camera.
func (r *SQLiteAssociationRepository) Create(ctx context.Context, assoc *CameraAssociation) error {
	if assoc.CreatedAt.IsZero() {
		assoc.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO camera_associations (device_id, piko_camera_id, created_at)
		VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		assoc.DeviceID,
		assoc.PikoCameraID,
		assoc.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting camera association: %w", err)
	}

	return nil
}

// Delete removes all links between the device and camera pair.
func (r *SQLiteAssociationRepository) Delete(ctx context.Context, deviceID, pikoCameraID string) error {
	query := `DELETE FROM camera_associations WHERE device_id = ? AND piko_camera_id = ?`

	_, err := r.db.ExecContext(ctx, query, deviceID, pikoCameraID)
	if err != nil {
		return fmt.Errorf("deleting camera association: %w", err)
	}

	return nil
}

// ListForDevice retrieves all links where the device appears as the source.
func (r *SQLiteAssociationRepository) ListForDevice(ctx context.Context, deviceID string) ([]CameraAssociation, error) {
	query := `
		SELECT device_id, piko_camera_id, created_at
		FROM camera_associations
		WHERE device_id = ?`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("querying camera associations: %w", err)
	}
	defer rows.Close()

	var associations []CameraAssociation
	for rows.Next() {
		var a CameraAssociation
		var createdAt string
		if err := rows.Scan(&a.DeviceID, &a.PikoCameraID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning camera association: %w", err)
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		associations = append(associations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating camera associations: %w", err)
	}

	return associations, nil
}

// CountForDevice counts links for one device, direction-aware.
func (r *SQLiteAssociationRepository) CountForDevice(ctx context.Context, deviceID string, category connector.Category) (int, error) {
	query := `SELECT COUNT(*) FROM camera_associations WHERE device_id = ?`
	if category == connector.CategoryPiko {
		query = `SELECT COUNT(*) FROM camera_associations WHERE piko_camera_id = ?`
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, deviceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting camera associations: %w", err)
	}
	return count, nil
}
