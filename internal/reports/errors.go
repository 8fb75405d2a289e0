package reports

import (
	"errors"
	"fmt"

	"glucowizard-backend/internal/shared/util"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrStorage           = errors.New("storage error")
	ErrInference         = errors.New("inference error")
	ErrNotFound          = errors.New("report not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

const maxErrorDetail = 1000

func wrap(kind error, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// errorDetail renders err the way it is persisted on a failed report.
func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return util.SingleLine(err.Error(), maxErrorDetail)
}
