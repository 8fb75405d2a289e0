package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"glucowizard-backend/internal/inference"
	"glucowizard-backend/internal/queue"
	"glucowizard-backend/internal/shared/metrics"
	"glucowizard-backend/internal/shared/storage/object"
	"glucowizard-backend/internal/shared/telemetry"
)

const (
	stageStorage   = "storage"
	stagePrompt    = "prompt"
	stageInference = "inference"

	defaultDocumentName = "report.pdf"
	defaultURLTTL       = time.Hour
)

// PolicySource supplies the admin instructions appended to every prompt.
type PolicySource interface {
	ActiveInstructions(ctx context.Context) (string, error)
}

// Service runs the report workflow and answers report queries.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Inference inference.Client
	Policies  PolicySource
	Events    queue.Client
	Now       func() time.Time
	URLTTL    time.Duration
}

// Submit validates a submission, persists it, stages the document, runs the
// analysis and records the outcome. After the record exists every failure is
// written onto it and the failed report is returned together with the error.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Report, error) {
	if in.OwnerID == "" {
		return Report{}, wrap(ErrValidation, errors.New("owner is required"))
	}
	readings, err := ParseReadings(in.Readings)
	if err != nil {
		return Report{}, err
	}

	metrics.IncReportSubmitted()
	start := s.now()
	report := Report{
		ID:        uuid.NewString(),
		OwnerID:   in.OwnerID,
		Readings:  readings,
		Status:    StatusProcessing,
		CreatedAt: start,
		UpdatedAt: start,
	}
	if err := s.Repo.Create(ctx, report); err != nil {
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	telemetry.Info("reports.created", map[string]any{
		"report_id":    report.ID,
		"user_id":      report.OwnerID,
		"request_id":   telemetry.RequestIDFromContext(ctx),
		"has_document": hasDocument(in.Document),
	})

	// The outcome is recorded even if the caller goes away mid-flight.
	ctx = context.WithoutCancel(ctx)

	var doc *Document
	if hasDocument(in.Document) {
		doc = in.Document
		staged, err := s.stageDocument(ctx, report, doc)
		if err != nil {
			return s.fail(ctx, report, stageStorage, wrap(ErrStorage, err), start)
		}
		report = staged
	}

	instructions, err := s.policyInstructions(ctx)
	if err != nil {
		return s.fail(ctx, report, stagePrompt, wrap(ErrInference, err), start)
	}
	parts, err := BuildPrompt(report.Readings, instructions, doc)
	if err != nil {
		return s.fail(ctx, report, stagePrompt, wrap(ErrInference, err), start)
	}

	outcome, err := s.analyze(ctx, parts)
	if err != nil {
		return s.fail(ctx, report, stageInference, wrap(ErrInference, err), start)
	}

	done, err := s.Repo.MarkDone(ctx, report.ID, outcome)
	if err != nil {
		return s.fail(ctx, report, stageInference, fmt.Errorf("record analysis: %w", err), start)
	}
	s.finish(ctx, done, "", start)
	return done, nil
}

func (s *Service) stageDocument(ctx context.Context, report Report, doc *Document) (Report, error) {
	if s.Store == nil {
		return Report{}, errors.New("object store not configured")
	}
	name := doc.FileName
	if name == "" {
		name = defaultDocumentName
	}
	key, err := DocumentKey(report.OwnerID, report.CreatedAt, name)
	if err != nil {
		return Report{}, fmt.Errorf("document key: %w", err)
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if _, err := s.Store.SaveWithKey(ctx, key, contentType, bytes.NewReader(doc.Data)); err != nil {
		return Report{}, fmt.Errorf("upload document: %w", err)
	}
	staged, err := s.Repo.AttachDocument(ctx, report.ID, key)
	if err != nil {
		return Report{}, fmt.Errorf("attach document: %w", err)
	}
	telemetry.Info("reports.document_staged", map[string]any{
		"report_id":  report.ID,
		"user_id":    report.OwnerID,
		"request_id": telemetry.RequestIDFromContext(ctx),
		"key":        key,
		"size_bytes": len(doc.Data),
	})
	return staged, nil
}

func (s *Service) policyInstructions(ctx context.Context) (string, error) {
	if s.Policies == nil {
		return "", nil
	}
	return s.Policies.ActiveInstructions(ctx)
}

func (s *Service) analyze(ctx context.Context, parts []inference.Part) (inference.Outcome, error) {
	if s.Inference == nil {
		return inference.Outcome{}, errors.New("inference client not configured")
	}
	result, err := s.Inference.Generate(ctx, parts)
	if err != nil {
		return inference.Outcome{}, err
	}
	return inference.Normalize(result)
}

// fail records cause on the report and returns the failed report with cause.
func (s *Service) fail(ctx context.Context, report Report, stage string, cause error, start time.Time) (Report, error) {
	detail := errorDetail(cause)
	failed, err := s.Repo.MarkError(ctx, report.ID, detail)
	if err != nil {
		telemetry.Error("reports.mark_error_failed", map[string]any{
			"report_id":  report.ID,
			"user_id":    report.OwnerID,
			"request_id": telemetry.RequestIDFromContext(ctx),
			"err":        err,
		})
		failed = report
		failed.Status = StatusError
		failed.ErrorDetail = detail
	}
	telemetry.Warn("reports.failed", map[string]any{
		"report_id":  report.ID,
		"user_id":    report.OwnerID,
		"request_id": telemetry.RequestIDFromContext(ctx),
		"stage":      stage,
		"err":        detail,
	})
	s.finish(ctx, failed, stage, start)
	return failed, cause
}

func (s *Service) finish(ctx context.Context, report Report, stage string, start time.Time) {
	metrics.IncReportOutcome(report.Status, stage)
	metrics.ObserveReportDuration(s.now().Sub(start))
	if report.Status == StatusDone {
		telemetry.Info("reports.done", map[string]any{
			"report_id":    report.ID,
			"user_id":      report.OwnerID,
			"request_id":   telemetry.RequestIDFromContext(ctx),
			"inference_id": report.InferenceID,
			"duration_ms":  s.now().Sub(start).Milliseconds(),
		})
	}
	if s.Events == nil {
		return
	}
	msg := queue.Message{
		ReportID:   report.ID,
		OwnerID:    report.OwnerID,
		Status:     report.Status,
		Stage:      stage,
		RequestID:  telemetry.RequestIDFromContext(ctx),
		OccurredAt: s.now().Format(time.RFC3339Nano),
		Version:    queue.MessageVersion,
	}
	if err := s.Events.Send(ctx, msg); err != nil {
		telemetry.Warn("reports.event_failed", map[string]any{
			"report_id":  report.ID,
			"request_id": msg.RequestID,
			"err":        err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) urlTTL() time.Duration {
	if s.URLTTL > 0 {
		return s.URLTTL
	}
	return defaultURLTTL
}

func hasDocument(doc *Document) bool {
	return doc != nil && len(doc.Data) > 0
}
