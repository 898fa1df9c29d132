package health

import (
	"context"
	"database/sql"
	"time"

	"calorievision-backend/internal/catalog"
)

const pingTimeout = 2 * time.Second

// Pinger is the part of *sql.DB the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB      Pinger
	Catalog *catalog.Catalog
}

// Report is the /health payload. OK stays true when the catalog database is
// down because the compiled-in catalog keeps the service usable.
type Report struct {
	OK       bool          `json:"ok"`
	Catalog  CatalogStatus `json:"catalog"`
	Database string        `json:"database"`
}

type CatalogStatus struct {
	Source  string `json:"source"`
	Entries int    `json:"entries"`
}

// NewService constructs a new health service. db may be nil.
func NewService(db *sql.DB, c *catalog.Catalog) *Service {
	s := &Service{Catalog: c}
	if db != nil {
		s.DB = db
	}
	return s
}

// Status reports liveness plus catalog and database state.
func (s *Service) Status(ctx context.Context) Report {
	r := Report{OK: true, Database: "disabled"}
	if s.Catalog != nil {
		r.Catalog = CatalogStatus{Source: s.Catalog.Source(), Entries: s.Catalog.Len()}
	}
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			r.Database = "down"
		} else {
			r.Database = "up"
		}
	}
	return r
}
