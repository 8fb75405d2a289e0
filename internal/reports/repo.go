package reports

import (
	"context"
	"time"

	"glucowizard-backend/internal/inference"
)

// Repo defines persistence operations for reports.
//
// The mutating methods only apply to reports that are not yet terminal and
// return ErrInvalidTransition otherwise.
type Repo interface {
	Create(ctx context.Context, report Report) error
	GetForOwner(ctx context.Context, ownerID, reportID string) (Report, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Report, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListCreatedSince(ctx context.Context, ownerID string, since time.Time) ([]Report, error)
	AttachDocument(ctx context.Context, reportID, documentRef string) (Report, error)
	MarkDone(ctx context.Context, reportID string, outcome inference.Outcome) (Report, error)
	MarkError(ctx context.Context, reportID, detail string) (Report, error)
}
