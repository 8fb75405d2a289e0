package config

import (
	"bufio"
	"os"
	"strings"

	"glucowizard-backend/internal/shared/telemetry"
)

// loadEnvFiles applies KEY=VALUE pairs from the first of the given files that
// exists. Variables already present in the process environment win, so a
// deployed secret is never shadowed by a stray .env file.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		applied := 0
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			key, val, ok := parseEnvLine(scanner.Text())
			if !ok {
				continue
			}
			if _, set := os.LookupEnv(key); set {
				continue
			}
			if os.Setenv(key, val) == nil {
				applied++
			}
		}
		_ = f.Close()
		telemetry.Info("config.env_file_loaded", map[string]any{"path": path, "applied": applied})
		return
	}
}

// parseEnvLine understands `KEY=value`, `export KEY=value`, quoted values and
// trailing `# comments` on unquoted values.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, val, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	val = strings.TrimSpace(val)
	if n := len(val); n >= 2 && (val[0] == '"' || val[0] == '\'') && val[n-1] == val[0] {
		return key, val[1 : n-1], true
	}
	if i := strings.Index(val, " #"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}
	return key, val, true
}
