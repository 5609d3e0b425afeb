package connector

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the connectors table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE connectors (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_connectors_category ON connectors(category);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// testConnector creates a connector for testing.
func testConnector(id, name string, category Category) *Connector {
	return &Connector{
		ID:        id,
		Category:  category,
		Name:      name,
		RawConfig: `{"uaid":"ua-test","clientSecret":"cs-test"}`,
	}
}

func TestSQLiteRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates connector successfully", func(t *testing.T) {
		conn := testConnector("conn-001", "Office Sensors", CategoryYoLink)

		err := repo.Create(ctx, conn)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "conn-001")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Name != "Office Sensors" {
			t.Errorf("Name = %q, want %q", got.Name, "Office Sensors")
		}
		if got.Category != CategoryYoLink {
			t.Errorf("Category = %q, want %q", got.Category, CategoryYoLink)
		}
		if got.RawConfig != conn.RawConfig {
			t.Errorf("RawConfig = %q, want %q", got.RawConfig, conn.RawConfig)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt is zero")
		}
	})

	t.Run("returns error for duplicate ID", func(t *testing.T) {
		conn := testConnector("conn-duplicate", "First", CategoryPiko)
		if err := repo.Create(ctx, conn); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}

		conn2 := testConnector("conn-duplicate", "Second", CategoryPiko)
		err := repo.Create(ctx, conn2)
		if !errors.Is(err, ErrExists) {
			t.Errorf("Create() error = %v, want ErrExists", err)
		}
	})

	t.Run("rejects invalid category", func(t *testing.T) {
		conn := testConnector("conn-bad-cat", "Bad", Category("hue"))
		err := repo.Create(ctx, conn)
		if !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("Create() error = %v, want ErrInvalidCategory", err)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		conn := testConnector("conn-no-name", "   ", CategoryGenea)
		err := repo.Create(ctx, conn)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Create() error = %v, want ErrInvalidName", err)
		}
	})
}

func TestSQLiteRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testConnector("conn-b", "Beta", CategoryPiko)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, testConnector("conn-a", "Alpha", CategoryYoLink)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	connectors, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(connectors) != 2 {
		t.Fatalf("List() returned %d connectors, want 2", len(connectors))
	}
	// Ordered by name
	if connectors[0].Name != "Alpha" || connectors[1].Name != "Beta" {
		t.Errorf("List() order = [%q, %q], want [Alpha, Beta]", connectors[0].Name, connectors[1].Name)
	}
}

func TestSQLiteRepository_ListByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testConnector("conn-y", "Sensors", CategoryYoLink)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, testConnector("conn-p", "Cameras", CategoryPiko)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	connectors, err := repo.ListByCategory(ctx, CategoryPiko)
	if err != nil {
		t.Fatalf("ListByCategory() error = %v", err)
	}
	if len(connectors) != 1 {
		t.Fatalf("ListByCategory() returned %d connectors, want 1", len(connectors))
	}
	if connectors[0].ID != "conn-p" {
		t.Errorf("ID = %q, want %q", connectors[0].ID, "conn-p")
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	conn := testConnector("conn-upd", "Original", CategoryGenea)
	if err := repo.Create(ctx, conn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	conn.Name = "Renamed"
	conn.RawConfig = `{"apiKey":"new","customerUuid":"cust"}`
	if err := repo.Update(ctx, conn); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "conn-upd")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want %q", got.Name, "Renamed")
	}
	if got.RawConfig != conn.RawConfig {
		t.Errorf("RawConfig = %q, want %q", got.RawConfig, conn.RawConfig)
	}
}

func TestSQLiteRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	conn := testConnector("conn-ghost", "Ghost", CategoryYoLink)
	err := repo.Update(context.Background(), conn)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testConnector("conn-del", "Doomed", CategoryYoLink)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, "conn-del"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.GetByID(ctx, "conn-del")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_Delete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
