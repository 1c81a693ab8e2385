package diagfmt

import "github.com/Mo-Gul/asciidoctor-reducer/internal/diag"

// PrettyOpts controls the human-readable renderer.
type PrettyOpts struct {
	// Color enables ANSI styling.
	Color bool
	// Context prints the offending source line with an underline.
	Context bool
	// PathMode selects how file paths are rendered:
	// "absolute", "relative", "basename", "auto".
	PathMode string
	// MinSeverity filters diagnostics below the threshold.
	MinSeverity diag.Severity
}
