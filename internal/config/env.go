package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognized at build time. Environment takes
// precedence over the static configuration file.
const (
	EnvFormat      = "DOCS_FORMAT"      // markdown|both enables the export
	EnvIncludeAPI  = "DOCS_INCLUDE_API" // include API reference pages
	EnvSingleFile  = "DOCS_SINGLE_FILE" // also emit the concatenated file
	EnvIncremental = "DOCS_INCREMENTAL" // skip unchanged sources
	EnvStructure   = "DOCS_STRUCTURE"   // mirror|collapsed
	EnvVerbose     = "DOCS_VERBOSE"     // debug logging
)

// LoadDotenv loads .env then .env.local into the process environment without
// overriding variables that are already set. Missing files are fine.
func LoadDotenv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "file", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "file", name)
	}
}

// ApplyEnvOverrides mutates cfg with any recognized environment overrides.
func ApplyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(EnvFormat); ok {
		switch strings.ToLower(v) {
		case "markdown", "both":
			cfg.Enabled = true
		case "html":
			cfg.Enabled = false
		default:
			slog.Warn("Unrecognized DOCS_FORMAT value", "value", v)
		}
	}
	if v, ok := os.LookupEnv(EnvIncludeAPI); ok {
		cfg.IncludeAPIReference = envBool(v)
	}
	if v, ok := os.LookupEnv(EnvSingleFile); ok {
		cfg.SingleFile = envBool(v)
	}
	if v, ok := os.LookupEnv(EnvIncremental); ok {
		cfg.Incremental = envBool(v)
	}
	if v, ok := os.LookupEnv(EnvStructure); ok {
		s := Structure(strings.ToLower(v))
		if s.IsValid() {
			cfg.Structure = s
		} else {
			slog.Warn("Invalid DOCS_STRUCTURE value, keeping configured structure",
				"value", v, "structure", cfg.Structure)
		}
	}
	if v, ok := os.LookupEnv(EnvVerbose); ok {
		cfg.Verbose = envBool(v)
	}
}

func envBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
