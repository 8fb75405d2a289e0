package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: " lab results.pdf ", want: "lab_results.pdf"},
		{in: "a/b\\c.pdf", want: "a_b_c.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q)=%q,%v want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("upload failed:\n  status 500\tbody", 0); got != "upload failed: status 500 body" {
		t.Fatalf("unexpected single line: %q", got)
	}
	if got := SingleLine("abcdef", 3); got != "abc" {
		t.Fatalf("expected cap at 3, got %q", got)
	}
}
