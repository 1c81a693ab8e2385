package reduce

import (
	"fmt"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
)

// SafeMode controls how far include targets may reach on the filesystem.
type SafeMode uint8

const (
	// ModeUnconstrained resolves any readable target.
	ModeUnconstrained SafeMode = iota
	// ModeJailedWithEscape confines targets to the root document's
	// directory tree, except targets inside the configured include root.
	ModeJailedWithEscape
	// ModeStrict confines targets to the jail and forbids parent-directory
	// traversal entirely.
	ModeStrict
)

func (m SafeMode) String() string {
	switch m {
	case ModeUnconstrained:
		return "unsafe"
	case ModeJailedWithEscape:
		return "safe"
	case ModeStrict:
		return "secure"
	}
	return "unknown"
}

// ParseSafeMode maps a CLI/config name to a SafeMode.
func ParseSafeMode(name string) (SafeMode, error) {
	switch name {
	case "unsafe", "unconstrained":
		return ModeUnconstrained, nil
	case "safe", "jailed":
		return ModeJailedWithEscape, nil
	case "secure", "strict":
		return ModeStrict, nil
	}
	return ModeUnconstrained, fmt.Errorf("unknown safe mode: %s", name)
}

const (
	defaultMaxDepth       = 64
	defaultMaxDiagnostics = 100
)

// Options is the configuration bundle for one reduction call. The zero value
// is usable: unconstrained resolution, no preset attributes, built-in
// evaluator.
type Options struct {
	// Attributes are caller-supplied attributes. They are locked: the
	// document cannot override them. A name with a trailing '!' locks the
	// attribute as unset.
	Attributes map[string]string

	// PreserveConditionals keeps conditional directive lines and their
	// guarded content verbatim while includes are still resolved.
	PreserveConditionals bool

	SafeMode SafeMode

	// IncludeRoot is the alternate root that jailed mode may escape into.
	IncludeRoot string

	// Placeholders replaces unresolvable include directives with an
	// "Unresolved directive" comment line instead of splicing to nothing.
	Placeholders bool

	// RelaxResolution downgrades missing-file and jail-violation
	// diagnostics from fatal to warning for every directive.
	RelaxResolution bool

	// MaxDepth caps include nesting independently of cycle detection.
	MaxDepth int

	// MaxDiagnostics caps the diagnostic bag.
	MaxDiagnostics int

	// Reporter, when set, receives each diagnostic as it is emitted, in
	// addition to the result bag. It is not subject to MaxDiagnostics.
	Reporter diag.Reporter

	// Evaluator decides ifeval expressions; nil selects CompareEvaluator.
	Evaluator Evaluator

	// IncludeProcessors are per-call include hooks, consulted in order
	// before filesystem resolution.
	IncludeProcessors []IncludeProcessor
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = defaultMaxDiagnostics
	}
	if o.Evaluator == nil {
		o.Evaluator = CompareEvaluator{}
	}
	return o
}

// IncludeProcessor intercepts include targets before filesystem resolution.
// Registrations are per reduction call; there is no process-global registry,
// so concurrent reductions never share processor state unless the caller
// passes the same instance to both.
type IncludeProcessor interface {
	// Handles reports whether the processor claims the target.
	Handles(target string) bool
	// Process returns the content lines for the target.
	Process(target string, attrs *AttributeSet) ([]string, error)
}
