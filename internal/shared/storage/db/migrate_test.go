package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"calorievision-backend/internal/catalog"
)

func TestRunMigrationsSeedsCatalogOnSQLite(t *testing.T) {
	target, err := Resolve("sqlite://" + filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	database, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := RunMigrations(ctx, database, target.Dialect); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	c := catalog.Load(ctx, &catalog.SQLSource{DB: database})
	if c.Source() != "sql" {
		t.Fatalf("expected sql-backed catalog, got %q", c.Source())
	}
	got := c.All()
	want := catalog.Default().All()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].Confidence != want[i].Confidence || got[i].Calories != want[i].Calories {
			t.Fatalf("record %d mismatch: %+v vs %+v", i, got[i], want[i])
		}
		if len(got[i].Ingredients) != len(want[i].Ingredients) {
			t.Fatalf("record %d ingredients mismatch", i)
		}
	}
}

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, "sqlite3"); err != nil {
		t.Fatalf("expected nil database to be a no-op, got %v", err)
	}
}
