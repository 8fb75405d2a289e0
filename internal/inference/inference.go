package inference

import (
	"context"
	"errors"
	"fmt"
)

// PartKind distinguishes prompt parts.
type PartKind string

const (
	PartText     PartKind = "text"
	PartDocument PartKind = "document"
)

// Part is one piece of a prompt: free text or an inline document.
type Part struct {
	Kind     PartKind
	Text     string
	FileName string
	MimeType string
	Data     []byte
}

// TextPart returns a text prompt part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// DocumentPart returns an inline document prompt part.
func DocumentPart(fileName, mimeType string, data []byte) Part {
	return Part{Kind: PartDocument, FileName: fileName, MimeType: mimeType, Data: data}
}

// Capability is the API surface a client talks to, fixed at construction.
type Capability string

const (
	CapabilityResponses Capability = "responses"
	CapabilityChat      Capability = "chat"
)

// Result is either *StructuredResponse or *ChatResponse.
type Result interface {
	isResult()
}

// StructuredResponse is returned by clients with CapabilityResponses.
type StructuredResponse struct {
	ID         string
	OutputText string
	Raw        map[string]any
}

// ChatResponse is returned by clients with CapabilityChat.
type ChatResponse struct {
	ID      string
	Content string
	Raw     map[string]any
}

func (*StructuredResponse) isResult() {}
func (*ChatResponse) isResult()       {}

// Outcome is the provider-neutral view of a completed inference.
type Outcome struct {
	InferenceID string
	SummaryText string
	Raw         map[string]any
}

// Client generates a completion for a prompt.
type Client interface {
	Capability() Capability
	Generate(ctx context.Context, parts []Part) (Result, error)
}

// ErrUnknownResult is returned by Normalize for nil or unrecognized results.
var ErrUnknownResult = errors.New("unknown inference result")

// Normalize maps either result variant onto an Outcome.
func Normalize(r Result) (Outcome, error) {
	switch v := r.(type) {
	case *StructuredResponse:
		if v == nil {
			return Outcome{}, ErrUnknownResult
		}
		return Outcome{InferenceID: v.ID, SummaryText: v.OutputText, Raw: v.Raw}, nil
	case *ChatResponse:
		if v == nil {
			return Outcome{}, ErrUnknownResult
		}
		return Outcome{InferenceID: v.ID, SummaryText: v.Content, Raw: v.Raw}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %T", ErrUnknownResult, r)
	}
}
