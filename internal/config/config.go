// Package config loads the mdexport configuration file and applies
// environment overrides. Environment always wins over the static file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Structure selects the layout of the exported tree.
type Structure string

const (
	// StructureMirror writes one file per page at a path matching its site URL.
	StructureMirror Structure = "mirror"

	// StructureCollapsed additionally merges solo-index directories into
	// single sibling files and rewrites cross-references.
	StructureCollapsed Structure = "collapsed"
)

// IsValid reports whether s is a recognized structure value.
func (s Structure) IsValid() bool {
	return s == StructureMirror || s == StructureCollapsed
}

// Config is the top-level mdexport configuration.
type Config struct {
	// Enabled gates the whole export; DOCS_FORMAT=markdown|both also enables.
	Enabled bool `yaml:"enabled"`

	// DocsDir is the aggregated docs source tree the walker reads.
	DocsDir string `yaml:"docs_dir"`

	// OutputDir is the root of the exported markdown tree.
	OutputDir string `yaml:"output_dir"`

	IncludeAPIReference bool      `yaml:"include_api_reference"`
	Structure           Structure `yaml:"structure"`
	Incremental         bool      `yaml:"incremental"`
	CacheFile           string    `yaml:"cache_file"`
	SingleFile          bool      `yaml:"single_file"`
	SingleFileName      string    `yaml:"single_file_name"`
	Verbose             bool      `yaml:"verbose"`

	CrossRepo CrossRepoConfig `yaml:"crossrepo"`
	RefPages  RefPagesConfig  `yaml:"refpages"`
}

// CrossRepoConfig configures cross-repository link normalization.
type CrossRepoConfig struct {
	// Projects are names that should be reachable at root level; relative
	// links into them are rewritten to absolute site paths.
	Projects []string `yaml:"projects"`

	// NestedPaths maps nested path prefixes to their root-level replacements,
	// e.g. "/framework/widgets/" -> "/widgets/".
	NestedPaths map[string]string `yaml:"nested_paths"`
}

// RefPagesConfig configures API reference stub generation.
type RefPagesConfig struct {
	Projects []RefProject `yaml:"projects"`
}

// RefProject describes one project to generate reference pages for.
type RefProject struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// APIDir is the reference directory name; defaults to "reference".
	APIDir string `yaml:"api_dir"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		Enabled:             false,
		DocsDir:             "docs",
		OutputDir:           "site/md",
		IncludeAPIReference: true,
		Structure:           StructureMirror,
		Incremental:         true,
		CacheFile:           ".markdown-export.cache",
		SingleFile:          false,
		SingleFileName:      "FULL.md",
	}
}

// Load reads the YAML configuration at path, fills defaults, and applies
// environment overrides. A missing file is not an error: defaults plus
// environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Config file is optional; environment can drive everything.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.fillDefaults()
	ApplyEnvOverrides(cfg)

	if !cfg.Structure.IsValid() {
		return nil, fmt.Errorf("invalid structure %q (want %q or %q)", cfg.Structure, StructureMirror, StructureCollapsed)
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.DocsDir == "" {
		c.DocsDir = d.DocsDir
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.Structure == "" {
		c.Structure = d.Structure
	}
	if c.CacheFile == "" {
		c.CacheFile = d.CacheFile
	}
	if c.SingleFileName == "" {
		c.SingleFileName = d.SingleFileName
	}
	for i := range c.RefPages.Projects {
		if c.RefPages.Projects[i].APIDir == "" {
			c.RefPages.Projects[i].APIDir = "reference"
		}
	}
}
