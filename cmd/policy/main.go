package main

// Manage analysis policies:
//   go run ./cmd/policy list
//   go run ./cmd/policy add [-inactive] "instructions..."
//   go run ./cmd/policy activate <id>
//   go run ./cmd/policy deactivate <id>

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"glucowizard-backend/internal/policies"
	"glucowizard-backend/internal/shared/config"
	"glucowizard-backend/internal/shared/storage/db"
	"glucowizard-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		telemetry.Error("policy.connect_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	svc := &policies.Service{Repo: &policies.PGRepo{DB: sqlDB}}
	if err := run(ctx, svc, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *policies.Service, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: policy list|add|activate|deactivate")
	}
	switch args[0] {
	case "list":
		list, err := svc.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tACTIVE\tUPDATED\tINSTRUCTIONS")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%t\t%s\t%s\n", p.ID, p.IsActive, p.UpdatedAt.Format("2006-01-02 15:04"), preview(p.CustomInstructions))
		}
		return tw.Flush()
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		fs.SetOutput(out)
		inactive := fs.Bool("inactive", false, "store the policy without activating it")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		p, err := svc.Add(ctx, strings.Join(fs.Args(), " "), !*inactive)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added policy %d (active=%t)\n", p.ID, p.IsActive)
		return nil
	case "activate", "deactivate":
		if len(args) != 2 {
			return fmt.Errorf("usage: policy %s <id>", args[0])
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid policy id %q", args[1])
		}
		active := args[0] == "activate"
		if err := svc.SetActive(ctx, id, active); err != nil {
			return err
		}
		fmt.Fprintf(out, "policy %d active=%t\n", id, active)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}
