package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"glucowizard-backend/internal/shared/metrics"
	"glucowizard-backend/internal/shared/telemetry"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	PeriodWeek  = "week"
	PeriodMonth = "month"
)

var periodWindows = map[string]time.Duration{
	PeriodWeek:  7 * 24 * time.Hour,
	PeriodMonth: 30 * 24 * time.Hour,
}

// List returns one page of the owner's reports, newest first.
func (s *Service) List(ctx context.Context, ownerID string, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	count, err := s.Repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return Page{}, fmt.Errorf("count reports: %w", err)
	}
	if page-1 > math.MaxInt/pageSize {
		return Page{Count: count, Page: page, PageSize: pageSize, Results: []View{}}, nil
	}
	items, err := s.Repo.ListByOwner(ctx, ownerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list reports: %w", err)
	}

	results := make([]View, 0, len(items))
	for _, item := range items {
		results = append(results, s.view(ctx, item))
	}
	return Page{Count: count, Page: page, PageSize: pageSize, Results: results}, nil
}

// Get returns one of the owner's reports. Unknown ids and reports owned by
// someone else are both ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID, reportID string) (View, error) {
	if _, err := uuid.Parse(reportID); err != nil {
		return View{}, ErrNotFound
	}
	report, err := s.Repo.GetForOwner(ctx, ownerID, reportID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, report), nil
}

// Stats projects the owner's insulin series over a trailing window.
func (s *Service) Stats(ctx context.Context, ownerID, period string) (Stats, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = PeriodWeek
	}
	window, ok := periodWindows[period]
	if !ok {
		return Stats{}, wrap(ErrValidation, fmt.Errorf("period must be %q or %q", PeriodWeek, PeriodMonth))
	}

	items, err := s.Repo.ListCreatedSince(ctx, ownerID, s.now().Add(-window))
	if err != nil {
		return Stats{}, fmt.Errorf("list reports: %w", err)
	}
	data := make([]StatsPoint, 0, len(items))
	for _, item := range items {
		data = append(data, StatsPoint{
			ID:                item.ID,
			CreatedAt:         item.CreatedAt,
			BolusRatio:        numericSeries(item.Readings["bolus_ratio"]),
			BasalRates:        numericSeries(item.Readings["basal_rates"]),
			CorrectionFactors: numericSeries(item.Readings["correction_factors"]),
		})
	}
	return Stats{Period: period, Count: len(data), Data: data}, nil
}

// view signs the document URL. A signing failure only drops the URL.
func (s *Service) view(ctx context.Context, report Report) View {
	v := View{Report: report}
	if report.DocumentRef == "" || s.Store == nil {
		return v
	}
	url, err := s.Store.SignedURL(ctx, report.DocumentRef, s.urlTTL())
	if err != nil {
		metrics.IncSignFailure()
		telemetry.Warn("reports.sign_url_failed", map[string]any{
			"report_id":  report.ID,
			"user_id":    report.OwnerID,
			"request_id": telemetry.RequestIDFromContext(ctx),
			"err":        err,
		})
		return v
	}
	v.PDFURL = url
	return v
}

func numericSeries(v any) []float64 {
	out := []float64{}
	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if f, ok := toFloat(item); ok {
				out = append(out, f)
			}
		}
	case []float64:
		for _, item := range val {
			if f, ok := toFloat(item); ok {
				out = append(out, f)
			}
		}
	default:
		if f, ok := toFloat(val); ok {
			out = append(out, f)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	// NaN and Inf have no JSON encoding.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
