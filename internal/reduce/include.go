package reduce

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

// IncludeRequest is one include directive ready for resolution. Target has
// attribute references substituted already.
type IncludeRequest struct {
	Target   string
	Raw      string
	Named    map[string]string
	Site     Ref
	Optional bool
}

// resolveInclude turns a request into the lines to splice over the directive.
// Failures are reported into the bag; ok is false when the directive should
// splice to its failure replacement (placeholder or nothing).
func (r *Reducer) resolveInclude(req IncludeRequest) (lines []Line, ok bool) {
	for _, p := range r.opts.IncludeProcessors {
		if !p.Handles(req.Target) {
			continue
		}
		content, err := p.Process(req.Target, r.attrs)
		if err != nil {
			r.report(diag.NewFatal(diag.IncProcessorError, req.Site.Pos(),
				fmt.Sprintf("include processor failed for %s: %v", req.Target, err)), req.Site)
			return nil, false
		}
		id, err := r.fileSet.AddVirtual(req.Target, []byte(strings.Join(content, "\n")))
		if err != nil {
			r.report(diag.NewError(diag.IOReadError, req.Site.Pos(),
				fmt.Sprintf("include processor produced unreadable content for %s: %v", req.Target, err)), req.Site)
			return nil, false
		}
		return r.includedLines(id, req), true
	}

	resolved, ok := r.resolvePath(req)
	if !ok {
		return nil, false
	}

	if r.cyclic(resolved, req.Site) {
		r.report(diag.NewFatal(diag.IncCycle, req.Site.Pos(),
			fmt.Sprintf("include cycle detected: %s", req.Target)), req.Site)
		return nil, false
	}
	if req.Site.Depth()+1 > r.opts.MaxDepth {
		r.report(diag.NewFatal(diag.IncDepthExceeded, req.Site.Pos(),
			fmt.Sprintf("maximum include depth (%d) exceeded at %s", r.opts.MaxDepth, req.Target)), req.Site)
		return nil, false
	}

	id, err := r.fileSet.Load(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			sev := diag.SevFatal
			msg := fmt.Sprintf("include target not found: %s", req.Target)
			switch {
			case req.Optional:
				sev = diag.SevInfo
				msg = fmt.Sprintf("optional include dropped, target not found: %s", req.Target)
			case r.opts.RelaxResolution:
				sev = diag.SevWarning
			}
			r.report(diag.New(sev, diag.IncNotFound, req.Site.Pos(), msg), req.Site)
			// optional includes splice to nothing without the placeholder
			if req.Optional {
				return nil, true
			}
			return nil, false
		}
		r.report(diag.NewError(diag.IOReadError, req.Site.Pos(),
			fmt.Sprintf("cannot read include target %s: %v", req.Target, err)), req.Site)
		return nil, false
	}

	return r.selectLines(id, req), true
}

// resolvePath resolves the target against the including file's directory and
// enforces the safe-mode jail.
func (r *Reducer) resolvePath(req IncludeRequest) (string, bool) {
	target := filepath.FromSlash(req.Target)
	var candidate string
	if filepath.IsAbs(target) {
		candidate = filepath.Clean(target)
	} else {
		baseDir := filepath.Dir(r.fileSet.Get(req.Site.File).Path)
		candidate = filepath.Join(baseDir, target)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		r.report(diag.NewError(diag.IOReadError, req.Site.Pos(),
			fmt.Sprintf("cannot resolve include target %s: %v", req.Target, err)), req.Site)
		return "", false
	}

	switch r.opts.SafeMode {
	case ModeUnconstrained:
		return abs, true

	case ModeJailedWithEscape:
		if within(r.jailRoot, abs) {
			return abs, true
		}
		if r.escapeRoot != "" && within(r.escapeRoot, abs) {
			return abs, true
		}

	case ModeStrict:
		if !hasParentTraversal(req.Target) && within(r.jailRoot, abs) {
			return abs, true
		}
	}

	sev := diag.SevFatal
	if r.opts.RelaxResolution {
		sev = diag.SevWarning
	}
	r.report(diag.New(sev, diag.IncJailViolation, req.Site.Pos(),
		fmt.Sprintf("include target %s escapes the %s jail", req.Target, r.opts.SafeMode)), req.Site)
	return "", false
}

// within reports whether path is inside root (or equals it).
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasParentTraversal(target string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(target), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// cyclic reports whether the resolved identity already appears in the active
// inclusion lineage (the site's file or any of its ancestors).
func (r *Reducer) cyclic(resolved string, site Ref) bool {
	resolved = filepath.ToSlash(filepath.Clean(resolved))
	if r.samePath(resolved, site.File) {
		return true
	}
	for _, frame := range site.Stack {
		if r.samePath(resolved, frame.File) {
			return true
		}
	}
	return false
}

func (r *Reducer) samePath(resolved string, id source.FileID) bool {
	other := r.fileSet.Get(id).Path
	if abs, err := filepath.Abs(other); err == nil {
		other = filepath.ToSlash(abs)
	}
	return resolved == other
}

// includedLines re-tags every line of the included file with a fresh Ref:
// the parent's lineage plus one frame for this inclusion.
func (r *Reducer) includedLines(id source.FileID, req IncludeRequest) []Line {
	raw := r.fileSet.Get(id).Lines()
	stack := req.Site.push()
	out := make([]Line, len(raw))
	for i, text := range raw {
		lineNum, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		out[i] = Line{
			Text: text,
			Ref:  Ref{File: id, Line: lineNum, Stack: stack},
		}
	}
	return out
}

// selectLines applies lines=/tag=/tags= selectors to the included file. The
// whole file is always read; selectors only restrict what gets spliced.
func (r *Reducer) selectLines(id source.FileID, req IncludeRequest) []Line {
	all := r.includedLines(id, req)

	if spec, ok := req.Named["lines"]; ok {
		ranges, err := parseLineRanges(spec)
		if err != nil {
			r.report(diag.New(diag.SevWarning, diag.IncBadSelector, req.Site.Pos(),
				fmt.Sprintf("ignoring malformed lines selector %q: %v", spec, err)), req.Site)
			return all
		}
		var out []Line
		for _, l := range all {
			if ranges.contains(int(l.Ref.Line)) {
				out = append(out, l)
			}
		}
		return out
	}

	var tagSpec []string
	if tag, ok := req.Named["tag"]; ok {
		tagSpec = []string{tag}
	} else if tags, ok := req.Named["tags"]; ok {
		tagSpec = splitQuoted(tags, ';')
		if len(tagSpec) == 1 {
			tagSpec = splitQuoted(tags, ',')
		}
	}
	if tagSpec == nil {
		return all
	}

	texts := make([]string, len(all))
	for i := range all {
		texts[i] = all[i].Text
	}
	selected, missing := selectTags(texts, tagSpec)
	for _, name := range missing {
		r.report(diag.New(diag.SevWarning, diag.IncBadSelector, req.Site.Pos(),
			fmt.Sprintf("tag %q not found in include target %s", name, req.Target)), req.Site)
	}
	out := make([]Line, 0, len(selected))
	for _, idx := range selected {
		out = append(out, all[idx])
	}
	return out
}

// lineRanges is a parsed lines= selector.
type lineRanges []lineRange

type lineRange struct {
	start int
	end   int // -1 means end of file
}

func (rs lineRanges) contains(line int) bool {
	for _, r := range rs {
		if line >= r.start && (r.end == -1 || line <= r.end) {
			return true
		}
	}
	return false
}

// parseLineRanges parses selectors like "1..5;7;10..-1". Entries are
// separated by ';' or ','.
func parseLineRanges(spec string) (lineRanges, error) {
	sep := ";"
	if !strings.Contains(spec, ";") && strings.Contains(spec, ",") {
		sep = ","
	}
	var out lineRanges
	for _, entry := range strings.Split(spec, sep) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if start, end, found := strings.Cut(entry, ".."); found {
			s, err := strconv.Atoi(strings.TrimSpace(start))
			if err != nil || s < 1 {
				return nil, fmt.Errorf("bad range start %q", start)
			}
			e, err := strconv.Atoi(strings.TrimSpace(end))
			if err != nil || (e != -1 && e < s) {
				return nil, fmt.Errorf("bad range end %q", end)
			}
			out = append(out, lineRange{start: s, end: e})
			continue
		}
		n, err := strconv.Atoi(entry)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad line number %q", entry)
		}
		out = append(out, lineRange{start: n, end: n})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	return out, nil
}
