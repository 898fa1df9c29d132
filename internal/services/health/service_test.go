package health

import (
	"context"
	"errors"
	"testing"

	"calorievision-backend/internal/catalog"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(ctx context.Context) error { return s.err }

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want string
	}{
		{name: "no database", db: nil, want: "disabled"},
		{name: "database up", db: stubPinger{}, want: "up"},
		{name: "database down", db: stubPinger{err: errors.New("refused")}, want: "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &Service{DB: tt.db, Catalog: catalog.Default()}
			got := svc.Status(context.Background())
			if !got.OK {
				t.Fatalf("expected ok")
			}
			if got.Database != tt.want {
				t.Fatalf("expected database %q, got %q", tt.want, got.Database)
			}
			if got.Catalog.Source != "builtin" || got.Catalog.Entries != 10 {
				t.Fatalf("unexpected catalog status %+v", got.Catalog)
			}
		})
	}
}

func TestNewServiceWithNilDB(t *testing.T) {
	svc := NewService(nil, catalog.Default())
	if svc.DB != nil {
		t.Fatalf("expected nil pinger for nil db")
	}
	if got := svc.Status(context.Background()); got.Database != "disabled" {
		t.Fatalf("expected disabled, got %q", got.Database)
	}
}
