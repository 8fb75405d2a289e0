package inference

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	raw := map[string]any{"id": "x"}
	tests := []struct {
		name    string
		in      Result
		want    Outcome
		wantErr bool
	}{
		{
			name: "structured",
			in:   &StructuredResponse{ID: "resp_1", OutputText: "summary", Raw: raw},
			want: Outcome{InferenceID: "resp_1", SummaryText: "summary", Raw: raw},
		},
		{
			name: "chat",
			in:   &ChatResponse{ID: "chatcmpl_1", Content: "hello", Raw: raw},
			want: Outcome{InferenceID: "chatcmpl_1", SummaryText: "hello", Raw: raw},
		},
		{name: "nil interface", in: nil, wantErr: true},
		{name: "typed nil", in: (*ChatResponse)(nil), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownResult) {
					t.Fatalf("expected ErrUnknownResult, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got.InferenceID != tt.want.InferenceID || got.SummaryText != tt.want.SummaryText || got.Raw["id"] != "x" {
				t.Fatalf("unexpected outcome: %+v", got)
			}
		})
	}
}

func TestPartConstructors(t *testing.T) {
	if p := TextPart("hi"); p.Kind != PartText || p.Text != "hi" {
		t.Fatalf("unexpected text part: %+v", p)
	}
	p := DocumentPart("a.pdf", "application/pdf", []byte("%PDF"))
	if p.Kind != PartDocument || p.FileName != "a.pdf" || string(p.Data) != "%PDF" {
		t.Fatalf("unexpected document part: %+v", p)
	}
}
