package config

import (
	"fmt"
	"strings"
)

// Styles accepted by pack.style.
var Styles = []string{"aastex", "arxiv"}

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	if c.Master == "" {
		errs = append(errs, "master must not be empty")
	} else if !strings.HasSuffix(c.Master, ".tex") {
		errs = append(errs, "master must be a .tex file")
	}
	if len(c.Exts) == 0 {
		errs = append(errs, "exts must list at least one extension")
	}

	if c.Tex.MaxIncludeDepth < 1 {
		errs = append(errs, "tex.max_include_depth must be >= 1")
	}
	if c.Tex.RootScanBytes < 64 {
		errs = append(errs, "tex.root_scan_bytes must be >= 64")
	}

	if c.Diff.LatexdiffType == "" {
		errs = append(errs, "diff.latexdiff_type must not be empty")
	}
	if c.Diff.BuildDir == "" {
		errs = append(errs, "diff.build_dir must not be empty")
	}

	validStyle := false
	for _, s := range Styles {
		if c.Pack.Style == s {
			validStyle = true
		}
	}
	if !validStyle {
		errs = append(errs, fmt.Sprintf("pack.style must be one of %v", Styles))
	}
	if c.Pack.MaxSizeMB <= 0 {
		errs = append(errs, "pack.max_size_mb must be > 0")
	}

	if c.Exec.MaxOutputSize < 1 {
		errs = append(errs, "exec.max_output_size must be >= 1")
	}
	if c.Exec.TimeoutSeconds < 1 {
		errs = append(errs, "exec.timeout_s must be >= 1")
	}
	if c.Exec.GracefulShutdownMs < 1 {
		errs = append(errs, "exec.graceful_shutdown_ms must be >= 1")
	}

	if c.Watch.DebounceMs < 0 {
		errs = append(errs, "watch.debounce_ms must be >= 0")
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, "ui.word_wrap must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
