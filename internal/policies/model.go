package policies

import "time"

// Policy holds operator-authored instructions appended to every analysis prompt.
type Policy struct {
	ID                 int64
	IsActive           bool
	CustomInstructions string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
