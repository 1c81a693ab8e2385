package reduce

import "testing"

func TestEvalDefined(t *testing.T) {
	attrs := NewAttributeSet(map[string]string{"a": "", "b": ""})

	cases := []struct {
		kind   DirectiveKind
		target string
		want   bool
	}{
		{DirIfDef, "a", true},
		{DirIfDef, "missing", false},
		{DirIfDef, "a,missing", true},      // any
		{DirIfDef, "missing,also", false},  // any
		{DirIfDef, "a+b", true},            // all
		{DirIfDef, "a+missing", false},     // all
		{DirIfNDef, "missing", true},
		{DirIfNDef, "a", false},
		{DirIfNDef, "a,missing", false},    // none defined required
		{DirIfNDef, "missing,also", true},  // none defined
		{DirIfNDef, "a+missing", true},     // at least one undefined
		{DirIfNDef, "a+b", false},          // all defined
	}
	for _, c := range cases {
		if got := evalDefined(c.kind, c.target, attrs); got != c.want {
			t.Errorf("evalDefined(%s, %q): expected %v, got %v", c.kind, c.target, c.want, got)
		}
	}
}

func TestFindEndIf(t *testing.T) {
	b := NewBuffer(mkLines(
		"ifdef::a[]",       // 0
		"text",             // 1
		"ifndef::b[]",      // 2
		"nested",           // 3
		"endif::[]",        // 4
		"ifdef::c[inline]", // 5: single-line form, no endif
		"endif::[]",        // 6
		"tail",             // 7
	))

	if got := findEndIf(b, 0); got != 6 {
		t.Errorf("expected outer endif at 6, got %d", got)
	}
	if got := findEndIf(b, 2); got != 4 {
		t.Errorf("expected inner endif at 4, got %d", got)
	}
}

func TestFindEndIfUnbalanced(t *testing.T) {
	b := NewBuffer(mkLines("ifdef::a[]", "text"))
	if got := findEndIf(b, 0); got != -1 {
		t.Errorf("expected -1 for missing endif, got %d", got)
	}
}

func TestSplitConditionNames(t *testing.T) {
	names, all := splitConditionNames("a, b ,c")
	if all || len(names) != 3 || names[1] != "b" {
		t.Errorf("unexpected comma split: %v all=%v", names, all)
	}
	names, all = splitConditionNames("a+b")
	if !all || len(names) != 2 {
		t.Errorf("unexpected plus split: %v all=%v", names, all)
	}
	names, all = splitConditionNames("solo")
	if all || len(names) != 1 || names[0] != "solo" {
		t.Errorf("unexpected single split: %v all=%v", names, all)
	}
}
