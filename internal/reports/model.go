package reports

import "time"

const (
	StatusCreated    = "created"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// Report is one submission of readings, its optional document and the analysis outcome.
type Report struct {
	ID          string
	OwnerID     string
	Readings    map[string]any
	DocumentRef string
	SummaryText string
	RawResult   map[string]any
	InferenceID string
	Status      string
	ErrorDetail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Terminal reports whether the status can no longer change.
func (r Report) Terminal() bool {
	return r.Status == StatusDone || r.Status == StatusError
}

// Document is an uploaded attachment awaiting staging.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SubmitInput is the payload of a report submission.
//
// Readings may be nil, a map, a JSON string, []byte or json.RawMessage.
type SubmitInput struct {
	OwnerID  string
	Readings any
	Document *Document
}

// View is a report decorated for callers. PDFURL is a freshly signed
// document URL, empty when there is no document or signing failed.
type View struct {
	Report
	PDFURL string
}

// Page is one page of an owner's reports.
type Page struct {
	Count    int
	Page     int
	PageSize int
	Results  []View
}

// StatsPoint is the projection of one report into the trend series.
type StatsPoint struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	BolusRatio        []float64 `json:"bolus_ratio"`
	BasalRates        []float64 `json:"basal_rates"`
	CorrectionFactors []float64 `json:"correction_factors"`
}

// Stats aggregates an owner's reports over a trailing window.
type Stats struct {
	Period string       `json:"period"`
	Count  int          `json:"count"`
	Data   []StatsPoint `json:"data"`
}
