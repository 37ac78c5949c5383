package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden by the user dotfile,
// the project's preprint.json and -set flags, in that order.
// Missing keys are left at their previous values.
type Config struct {
	// Master is the root .tex document of the manuscript.
	Master string `json:"master"`
	// Exts lists the file extensions that trigger a rebuild in watch mode and
	// the figure formats considered when packaging.
	Exts []string `json:"exts"`
	// Cmd is the build command run by watch. {master} expands to Master.
	Cmd string `json:"cmd"`

	Tex   TexConfig   `json:"tex"`
	Diff  DiffConfig  `json:"diff"`
	Pack  PackConfig  `json:"pack"`
	Exec  ExecConfig  `json:"exec"`
	Watch WatchConfig `json:"watch"`
	UI    UIConfig    `json:"ui"`
}

type TexConfig struct {
	MaxIncludeDepth int   `json:"max_include_depth"` // Default: 64
	RootScanBytes   int64 `json:"root_scan_bytes"`   // Default: 2048
}

type DiffConfig struct {
	LatexdiffType string `json:"latexdiff_type"` // Default: CTRADITIONAL
	BuildDir      string `json:"build_dir"`      // Default: build
}

type PackConfig struct {
	Style     string   `json:"style"`       // Default: aastex
	MaxSizeMB float64  `json:"max_size_mb"` // Default: 2
	JPEG      bool     `json:"jpeg"`        // Default: false
	ExtraExts []string `json:"extra_exts"`  // Default: [png]
}

type ExecConfig struct {
	MaxOutputSize      int64 `json:"max_output_size"`      // Default: 10 * 1024 * 1024 (10MB)
	TimeoutSeconds     int   `json:"timeout_s"`            // Default: 600
	GracefulShutdownMs int   `json:"graceful_shutdown_ms"` // Default: 2000
}

type WatchConfig struct {
	DebounceMs int      `json:"debounce_ms"` // Default: 500
	Ignore     []string `json:"ignore"`      // Extra gitignore-style patterns
}

type UIConfig struct {
	HighlightStyle string `json:"highlight_style"` // Default: dracula
	WordWrap       int    `json:"word_wrap"`       // Default: 80
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Master: "paper.tex",
		Exts:   []string{"tex", "pdf", "eps"},
		Cmd:    "latexmk -f -pdf -bibtex-cond {master}",
		Tex: TexConfig{
			MaxIncludeDepth: 64,
			RootScanBytes:   2048,
		},
		Diff: DiffConfig{
			LatexdiffType: "CTRADITIONAL",
			BuildDir:      "build",
		},
		Pack: PackConfig{
			Style:     "aastex",
			MaxSizeMB: 2,
			ExtraExts: []string{"png"},
		},
		Exec: ExecConfig{
			MaxOutputSize:      10 * 1024 * 1024,
			TimeoutSeconds:     600,
			GracefulShutdownMs: 2000,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
			Ignore:     []string{},
		},
		UI: UIConfig{
			HighlightStyle: "dracula",
			WordWrap:       80,
		},
	}
}
