package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

var (
	fatalColor   = color.New(color.FgRed, color.Bold)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.Faint)
)

// Pretty renders diagnostics in a human-readable form, one block per
// diagnostic:
//
//	<path>:<line>: <SEVERITY> <CODE>: <message>
//	    <source line>
//	    ^~~~~~~~~~~~~
//	  note: included from <path>:<line>
//
// Callers wanting deterministic order should bag.Sort() beforehand.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		if d.Severity < opts.MinSeverity {
			continue
		}
		printDiagnostic(w, d, fs, opts)
	}
}

func printDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	path := formatPath(fs, d.Primary.File, opts)
	sev := severityLabel(d.Severity, opts.Color)
	fmt.Fprintf(w, "%s:%d: %s %s: %s\n", path, d.Primary.Line, sev, d.Code, d.Message)

	if opts.Context {
		line := fs.Get(d.Primary.File).GetLine(d.Primary.Line)
		if trimmed := strings.TrimRight(line, " \t"); trimmed != "" {
			fmt.Fprintf(w, "    %s\n", trimmed)
			fmt.Fprintf(w, "    %s\n", underline(trimmed, opts.Color))
		}
	}

	for _, n := range d.Notes {
		msg := n.Msg
		if opts.Color {
			msg = noteColor.Sprint(msg)
		}
		fmt.Fprintf(w, "  note: %s\n", msg)
	}
}

// underline builds a ^~~~ marker matching the display width of the line.
func underline(line string, colored bool) string {
	width := runewidth.StringWidth(line)
	if width < 1 {
		width = 1
	}
	marker := "^" + strings.Repeat("~", width-1)
	if colored {
		return errorColor.Sprint(marker)
	}
	return marker
}

func severityLabel(s diag.Severity, colored bool) string {
	label := s.String()
	if !colored {
		return label
	}
	switch s {
	case diag.SevFatal:
		return fatalColor.Sprint(label)
	case diag.SevError:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

func formatPath(fs *source.FileSet, id source.FileID, opts PrettyOpts) string {
	mode := opts.PathMode
	if mode == "" {
		mode = "auto"
	}
	return fs.Get(id).FormatPath(mode, fs.BaseDir())
}
