package pack

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/dustin/go-humanize"
)

const (
	StyleAASTeX = "aastex"
	StyleArxiv  = "arxiv"
)

// Options controls one packaging run.
type Options struct {
	Master    string   // root document
	Name      string   // package directory under the build dir; default is the master's base name
	Style     string   // aastex, arxiv, or anything else to keep figure names
	Exts      []string // figure extensions in priority order
	JPEG      bool     // rasterise oversized figures (arxiv only)
	MaxSizeMB float64  // size above which a figure is rasterised
}

// OptionsFromConfig fills Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	exts := slices.Clone(cfg.Exts)
	for _, ext := range cfg.Pack.ExtraExts {
		if !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	return Options{
		Master:    cfg.Master,
		Style:     cfg.Pack.Style,
		Exts:      exts,
		JPEG:      cfg.Pack.JPEG,
		MaxSizeMB: cfg.Pack.MaxSizeMB,
	}
}

// Figure is one packaged \includegraphics target.
type Figure struct {
	Num        int
	Ref        string // path as written in the manuscript
	Source     string // file that was copied, "" when none was found
	Installed  string // path inside the package directory
	Size       int64  // bytes of Source
	Rasterized bool
}

// Report summarises a packaging run.
type Report struct {
	Name         string
	Style        string
	Dir          string
	Output       string
	Bibliography string // .bbl that was inlined, if any
	Figures      []Figure
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Package `%s`\n\n", r.Name)
	fmt.Fprintf(&b, "Wrote `%s` in %s style.\n\n", r.Output, r.Style)

	if len(r.Figures) > 0 {
		b.WriteString("| # | Reference | Installed | Size |\n")
		b.WriteString("|---|-----------|-----------|------|\n")
		for _, f := range r.Figures {
			installed, size := "missing", "-"
			if f.Source != "" {
				installed = "`" + f.Installed + "`"
				size = humanize.Bytes(uint64(f.Size))
				if f.Rasterized {
					size += " (rasterised)"
				}
			}
			fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", f.Num, f.Ref, installed, size)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No figures.\n\n")
	}

	if r.Bibliography != "" {
		fmt.Fprintf(&b, "Bibliography inlined from `%s`.\n", r.Bibliography)
	} else {
		b.WriteString("No bibliography inlined.\n")
	}
	return b.String()
}
