package health

import (
	"context"
	"database/sql"
	"time"

	"glucowizard-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. database may be nil when the
// in-memory repositories are in use.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database}
}

// Status reports overall health and the state of each dependency.
func (s *Service) Status(ctx context.Context) (bool, map[string]string) {
	checks := map[string]string{"database": "memory"}
	if s.DB == nil {
		return true, checks
	}
	if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
		checks["database"] = "down"
		return false, checks
	}
	checks["database"] = "up"
	return true, checks
}
