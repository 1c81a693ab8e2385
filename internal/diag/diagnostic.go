package diag

import (
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

// Note attaches secondary context to a diagnostic, typically one step of the
// "included from" chain.
type Note struct {
	Pos source.Pos
	Msg string
}

// Diagnostic is one reduction finding anchored to a file line. The trail of
// notes is captured at emission time; later buffer rewrites cannot change it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Pos
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Pos, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Pos, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewFatal(code Code, primary source.Pos, msg string) Diagnostic {
	return New(SevFatal, code, primary, msg)
}

func (d Diagnostic) WithNote(pos source.Pos, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}
