package reports

import (
	"context"
	"sort"
	"sync"
	"time"

	"glucowizard-backend/internal/inference"
)

// MemoryRepo stores reports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Report
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Report),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the report.
func (r *MemoryRepo) Create(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = r.now()
	}
	if report.UpdatedAt.IsZero() {
		report.UpdatedAt = report.CreatedAt
	}
	if report.Readings == nil {
		report.Readings = map[string]any{}
	}
	r.byID[report.ID] = report
	return nil
}

// GetForOwner returns a report owned by ownerID.
func (r *MemoryRepo) GetForOwner(ctx context.Context, ownerID, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.byID[reportID]
	if !ok || report.OwnerID != ownerID {
		return Report{}, ErrNotFound
	}
	return report, nil
}

// ListByOwner returns reports for an owner, newest first, with limit/offset.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	owned := r.owned(ownerID)
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset >= len(owned) {
		return []Report{}, nil
	}
	end := len(owned)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return owned[offset:end], nil
}

// CountByOwner returns the number of reports owned by ownerID.
func (r *MemoryRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(r.owned(ownerID)), nil
}

// ListCreatedSince returns an owner's reports created at or after since, oldest first.
func (r *MemoryRepo) ListCreatedSince(ctx context.Context, ownerID string, since time.Time) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	owned := r.owned(ownerID)
	out := make([]Report, 0, len(owned))
	for _, report := range owned {
		if !report.CreatedAt.Before(since) {
			out = append(out, report)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AttachDocument sets the document reference of a report that has none.
func (r *MemoryRepo) AttachDocument(ctx context.Context, reportID, documentRef string) (Report, error) {
	return r.update(ctx, reportID, func(report *Report) bool {
		if report.DocumentRef != "" {
			return false
		}
		report.DocumentRef = documentRef
		return true
	})
}

// MarkDone records a successful analysis.
func (r *MemoryRepo) MarkDone(ctx context.Context, reportID string, outcome inference.Outcome) (Report, error) {
	return r.update(ctx, reportID, func(report *Report) bool {
		report.InferenceID = outcome.InferenceID
		report.SummaryText = outcome.SummaryText
		report.RawResult = outcome.Raw
		report.Status = StatusDone
		report.ErrorDetail = ""
		return true
	})
}

// MarkError records a failed analysis.
func (r *MemoryRepo) MarkError(ctx context.Context, reportID, detail string) (Report, error) {
	return r.update(ctx, reportID, func(report *Report) bool {
		report.Status = StatusError
		report.ErrorDetail = detail
		return true
	})
}

func (r *MemoryRepo) update(ctx context.Context, reportID string, apply func(*Report) bool) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.byID[reportID]
	if !ok {
		return Report{}, ErrNotFound
	}
	if report.Terminal() || !apply(&report) {
		return Report{}, ErrInvalidTransition
	}
	report.UpdatedAt = r.now()
	r.byID[reportID] = report
	return report, nil
}

func (r *MemoryRepo) owned(ownerID string) []Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Report, 0)
	for _, report := range r.byID {
		if report.OwnerID == ownerID {
			out = append(out, report)
		}
	}
	return out
}
