package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"glucowizard-backend/internal/inference"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const reportColumns = `id, user_id, diabetic_values, pdf_file, ai_summary_text, ai_raw,
       openai_response_id, status, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new report.
func (r *PGRepo) Create(ctx context.Context, report Report) error {
	const query = `
INSERT INTO reports (id, user_id, diabetic_values, pdf_file, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	readings, err := marshalJSONB(report.Readings)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		report.ID,
		report.OwnerID,
		readings,
		report.DocumentRef,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

// GetForOwner returns a report owned by ownerID.
func (r *PGRepo) GetForOwner(ctx context.Context, ownerID, reportID string) (Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE id = $1 AND user_id = $2
LIMIT 1`
	report, err := scanReport(r.DB.QueryRowContext(ctx, query, reportID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// ListByOwner returns reports for an owner, newest first, with limit/offset.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Report, error) {
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.DB.QueryContext(ctx, query, ownerID, lim, offset)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

// CountByOwner returns the number of reports owned by ownerID.
func (r *PGRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reports WHERE user_id = $1`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListCreatedSince returns an owner's reports created at or after since, oldest first.
func (r *PGRepo) ListCreatedSince(ctx context.Context, ownerID string, since time.Time) ([]Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE user_id = $1 AND created_at >= $2
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, since)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

// AttachDocument sets the document reference of a report that has none.
func (r *PGRepo) AttachDocument(ctx context.Context, reportID, documentRef string) (Report, error) {
	query := `
UPDATE reports
SET pdf_file = $2, updated_at = now()
WHERE id = $1 AND pdf_file = '' AND status IN ('created', 'processing')
RETURNING ` + reportColumns
	return r.transition(ctx, reportID, query, reportID, documentRef)
}

// MarkDone records a successful analysis in one statement.
func (r *PGRepo) MarkDone(ctx context.Context, reportID string, outcome inference.Outcome) (Report, error) {
	raw, err := marshalJSONB(outcome.Raw)
	if err != nil {
		return Report{}, err
	}
	query := `
UPDATE reports
SET status = 'done', openai_response_id = $2, ai_summary_text = $3, ai_raw = $4,
    error_message = '', updated_at = now()
WHERE id = $1 AND status IN ('created', 'processing')
RETURNING ` + reportColumns
	return r.transition(ctx, reportID, query, reportID, outcome.InferenceID, outcome.SummaryText, raw)
}

// MarkError records a failed analysis.
func (r *PGRepo) MarkError(ctx context.Context, reportID, detail string) (Report, error) {
	query := `
UPDATE reports
SET status = 'error', error_message = $2, updated_at = now()
WHERE id = $1 AND status IN ('created', 'processing')
RETURNING ` + reportColumns
	return r.transition(ctx, reportID, query, reportID, detail)
}

func (r *PGRepo) transition(ctx context.Context, reportID, query string, args ...any) (Report, error) {
	report, err := scanReport(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Report{}, err
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`, reportID).Scan(&exists); err != nil {
		return Report{}, err
	}
	if !exists {
		return Report{}, ErrNotFound
	}
	return Report{}, ErrInvalidTransition
}

func collectReports(rows *sql.Rows) ([]Report, error) {
	defer rows.Close()
	out := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func scanReport(row rowScanner) (Report, error) {
	var report Report
	var readings []byte
	var raw []byte
	err := row.Scan(
		&report.ID,
		&report.OwnerID,
		&readings,
		&report.DocumentRef,
		&report.SummaryText,
		&raw,
		&report.InferenceID,
		&report.Status,
		&report.ErrorDetail,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return Report{}, err
	}
	report.Readings = map[string]any{}
	if len(readings) > 0 {
		if err := json.Unmarshal(readings, &report.Readings); err != nil {
			return Report{}, fmt.Errorf("decode diabetic_values for report %s: %w", report.ID, err)
		}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &report.RawResult); err != nil {
			report.RawResult = nil
		}
	}
	return report, nil
}

func marshalJSONB(value any) ([]byte, error) {
	if m, ok := value.(map[string]any); value == nil || (ok && m == nil) {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}
