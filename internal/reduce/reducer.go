package reduce

import (
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

// Result is the outcome of one reduction: the flattened line sequence with
// provenance, and every diagnostic emitted along the way. The buffer has
// been handed off; Lines is safe to keep.
type Result struct {
	Lines []Line
	Bag   *diag.Bag
}

// Text renders the flattened document.
func (r *Result) Text() string {
	if len(r.Lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := range r.Lines {
		sb.WriteString(r.Lines[i].Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Failed reports whether the reduction crossed the fatal threshold. The
// flattened text is still available as a best effort, but must not be
// trusted as equivalent to a full parse.
func (r *Result) Failed() bool {
	return r.Bag.HasFatal()
}

// Reducer drives one reduction pass: scan, resolve or evaluate, splice,
// resume from the splice point, until no directive remains. A Reducer owns
// its buffer, frame stack, attribute set, and bag; nothing is shared across
// calls, so independent documents may be reduced concurrently.
type Reducer struct {
	fileSet *source.FileSet
	opts    Options
	attrs   *AttributeSet
	buf     *Buffer
	scanner *Scanner
	bag     *diag.Bag
	frames  []condFrame

	jailRoot   string
	escapeRoot string
}

// New creates a reducer over fileSet with the given options.
func New(fileSet *source.FileSet, opts Options) *Reducer {
	opts = opts.withDefaults()
	return &Reducer{
		fileSet: fileSet,
		opts:    opts,
		attrs:   NewAttributeSet(opts.Attributes),
		bag:     diag.NewBag(opts.MaxDiagnostics),
	}
}

// Attributes exposes the attribute set accumulated so far. Useful to
// extensions and tests; the engine itself owns mutation during a pass.
func (r *Reducer) Attributes() *AttributeSet {
	return r.attrs
}

// Reduce flattens the document rooted at root and returns the result.
func (r *Reducer) Reduce(root source.FileID) *Result {
	rootFile := r.fileSet.Get(root)
	if abs, err := filepath.Abs(filepath.Dir(rootFile.Path)); err == nil {
		r.jailRoot = abs
	}
	if r.opts.IncludeRoot != "" {
		if abs, err := filepath.Abs(r.opts.IncludeRoot); err == nil {
			r.escapeRoot = abs
		}
	}

	raw := rootFile.Lines()
	seed := make([]Line, len(raw))
	for i, text := range raw {
		lineNum, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		seed[i] = Line{Text: text, Ref: Ref{File: root, Line: lineNum}}
	}
	r.buf = NewBuffer(seed)
	r.scanner = NewScanner(r.buf, r.trackLine)

	pos := 0
	for {
		d, ok := r.scanner.Next(pos)
		if !ok {
			break
		}
		ref := r.buf.At(d.Index).Ref
		switch d.Kind {
		case DirInclude:
			pos = r.handleInclude(d, ref)
		case DirIfDef, DirIfNDef, DirIfEval:
			pos = r.handleConditionalOpen(d, ref)
		case DirEndIf:
			pos = r.handleEndIf(d, ref)
		}
	}

	if len(r.frames) > 0 {
		open := r.frames[0]
		r.report(diag.NewFatal(diag.CondUnbalanced, open.open.Pos(),
			fmt.Sprintf("%s::%s[] has no matching endif at document end", open.kind, open.target)), open.open)
	}

	return &Result{Lines: r.buf.Lines(), Bag: r.bag}
}

// trackLine accumulates attribute entries as the scanner passes ordinary
// lines. Entries in dropped conditional regions never reach this point, so
// only attributes visible at the current position take effect; caller
// attributes stay locked.
func (r *Reducer) trackLine(line Line) {
	name, value, unset, ok := parseAttributeEntry(line.Text)
	if !ok {
		return
	}
	if unset {
		r.attrs.Unset(name)
		return
	}
	r.attrs.Set(name, value)
}

// report emits a diagnostic, attaching the "included from" trail of the ref
// it cites. Diagnostics snapshot their trail at emission time. Structural
// codes are fatal no matter what severity the call site chose; no option
// may downgrade them.
func (r *Reducer) report(d diag.Diagnostic, ref Ref) {
	if d.Code.Structural() && d.Severity < diag.SevFatal {
		d.Severity = diag.SevFatal
	}
	for i := len(ref.Stack) - 1; i >= 0; i-- {
		frame := ref.Stack[i]
		path := r.fileSet.Get(frame.File).Path
		d = d.WithNote(source.Pos{File: frame.File, Line: frame.Line},
			fmt.Sprintf("included from %s:%d", path, frame.Line))
	}
	if r.opts.Reporter != nil {
		r.opts.Reporter.Report(d)
	}
	r.bag.Add(d)
}

// failureSplice is what an unresolvable include leaves behind.
func (r *Reducer) failureSplice(d Directive, ref Ref) []Line {
	if !r.opts.Placeholders {
		return nil
	}
	site := filepath.Base(r.fileSet.Get(ref.File).Path)
	return []Line{{
		Text: fmt.Sprintf("Unresolved directive in %s - %s", site, d.Raw),
		Ref:  ref,
	}}
}

func (r *Reducer) handleInclude(d Directive, ref Ref) int {
	target, missing := r.attrs.Substitute(d.Target)
	if len(missing) > 0 {
		r.report(diag.New(diag.SevWarning, diag.IncUnresolvedAttr, ref.Pos(),
			fmt.Sprintf("include target %s references undefined attribute(s): %s",
				d.Target, strings.Join(missing, ", "))), ref)
		r.buf.Replace(d.Index, d.Index+1, r.failureSplice(d, ref))
		return d.Index
	}

	// the attrlist is part of the directive line: selector values like
	// lines={sel} see the attribute set accumulated so far
	attrlist, attrMissing := r.attrs.Substitute(d.Text)
	if len(attrMissing) > 0 {
		r.report(diag.New(diag.SevWarning, diag.IncUnresolvedAttr, ref.Pos(),
			fmt.Sprintf("include attrlist %s references undefined attribute(s): %s",
				d.Text, strings.Join(attrMissing, ", "))), ref)
	}

	_, named := parseAttrList(attrlist)
	optional := strings.Contains(named["opts"], "optional") || strings.Contains(named["opt"], "optional")

	req := IncludeRequest{
		Target:   target,
		Raw:      d.Raw,
		Named:    named,
		Site:     ref,
		Optional: optional,
	}
	lines, ok := r.resolveInclude(req)
	if !ok {
		lines = r.failureSplice(d, ref)
	}
	r.buf.Replace(d.Index, d.Index+1, lines)
	return d.Index
}

func (r *Reducer) handleConditionalOpen(d Directive, ref Ref) int {
	if r.opts.PreserveConditionals {
		if d.Block() {
			r.frames = append(r.frames, condFrame{kind: d.Kind, target: d.Target, open: ref, active: true})
		}
		return d.Index + 1
	}

	active := r.evalCondition(d, ref)

	if !d.Block() {
		// single-line form: the brackets carry the guarded text
		var repl []Line
		if active {
			repl = []Line{{Text: d.Text, Ref: ref}}
		}
		r.buf.Replace(d.Index, d.Index+1, repl)
		return d.Index
	}

	if active {
		r.frames = append(r.frames, condFrame{kind: d.Kind, target: d.Target, open: ref, active: true})
		r.buf.Replace(d.Index, d.Index+1, nil)
		return d.Index
	}

	end := findEndIf(r.buf, d.Index)
	if end < 0 {
		r.report(diag.NewFatal(diag.CondUnbalanced, ref.Pos(),
			fmt.Sprintf("%s::%s[] has no matching endif", d.Kind, d.Target)), ref)
		r.buf.Replace(d.Index, d.Index+1, nil)
		return d.Index
	}
	// drop the whole region in one splice; nested directives inside are
	// never evaluated
	r.buf.Replace(d.Index, end+1, nil)
	return d.Index
}

func (r *Reducer) handleEndIf(d Directive, ref Ref) int {
	if r.opts.PreserveConditionals {
		if len(r.frames) > 0 {
			r.frames = r.frames[:len(r.frames)-1]
		}
		return d.Index + 1
	}

	if len(r.frames) == 0 {
		r.report(diag.NewFatal(diag.CondStrayEndIf, ref.Pos(),
			"endif without a matching conditional open"), ref)
		r.buf.Replace(d.Index, d.Index+1, nil)
		return d.Index
	}

	top := r.frames[len(r.frames)-1]
	if d.Target != "" && d.Target != top.target {
		r.report(diag.NewFatal(diag.CondMismatchedEndIf, ref.Pos(),
			fmt.Sprintf("endif::%s[] does not match open %s::%s[]", d.Target, top.kind, top.target)).
			WithNote(top.open.Pos(), "opened here"), ref)
	}
	r.frames = r.frames[:len(r.frames)-1]
	r.buf.Replace(d.Index, d.Index+1, nil)
	return d.Index
}

// evalCondition decides a conditional-open directive. Malformed ifeval
// expressions are fatal and evaluate false.
func (r *Reducer) evalCondition(d Directive, ref Ref) bool {
	if d.Kind == DirIfEval {
		expr, missing := r.attrs.Substitute(d.Text)
		if len(missing) > 0 {
			r.report(diag.NewFatal(diag.CondBadExpr, ref.Pos(),
				fmt.Sprintf("ifeval expression references undefined attribute(s): %s",
					strings.Join(missing, ", "))), ref)
			return false
		}
		result, err := r.opts.Evaluator.Eval(expr)
		if err != nil {
			r.report(diag.NewFatal(diag.CondBadExpr, ref.Pos(), err.Error()), ref)
			return false
		}
		return result
	}
	return evalDefined(d.Kind, d.Target, r.attrs)
}
