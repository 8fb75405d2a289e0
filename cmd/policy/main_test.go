package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"glucowizard-backend/internal/policies"
)

func TestRunAddActivateList(t *testing.T) {
	ctx := context.Background()
	svc := &policies.Service{Repo: policies.NewMemoryRepo()}

	var out bytes.Buffer
	if err := run(ctx, svc, []string{"add", "-inactive", "Report", "values", "in", "mmol/L."}, &out); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out.String(), "active=false") {
		t.Fatalf("unexpected add output %q", out.String())
	}
	if got, _ := svc.ActiveInstructions(ctx); got != "" {
		t.Fatalf("expected no active policy, got %q", got)
	}

	out.Reset()
	if err := run(ctx, svc, []string{"activate", "1"}, &out); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, _ := svc.ActiveInstructions(ctx); got != "Report values in mmol/L." {
		t.Fatalf("unexpected active instructions %q", got)
	}

	out.Reset()
	if err := run(ctx, svc, []string{"list"}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Report values in mmol/L.") {
		t.Fatalf("unexpected list output %q", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	svc := &policies.Service{Repo: policies.NewMemoryRepo()}

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"purge"}},
		{name: "bad id", args: []string{"activate", "abc"}},
		{name: "missing id", args: []string{"deactivate"}},
		{name: "empty instructions", args: []string{"add"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if err := run(ctx, svc, tt.args, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}

	if err := run(ctx, svc, []string{"activate", "99"}, &bytes.Buffer{}); !errors.Is(err, policies.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
