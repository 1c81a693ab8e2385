package reduce

import "testing"

func TestCompareEvaluator(t *testing.T) {
	e := CompareEvaluator{}

	cases := []struct {
		expr string
		want bool
	}{
		{"1 == 1", true},
		{"1 != 1", false},
		{"2 > 1", true},
		{"2 >= 2", true},
		{"1 < 0.5", false},
		{"1.5 <= 1.5", true},
		{`"a" == "a"`, true},
		{`"a" != "b"`, true},
		{`'left' == "left"`, true},
		{"3 == three", false}, // mixed operands compare as strings
		{`"10" < "9"`, true},  // quoted numbers are strings
		{"10 < 9", false},
	}
	for _, c := range cases {
		got, err := e.Eval(c.expr)
		if err != nil {
			t.Errorf("Eval(%q) failed: %v", c.expr, err)
			continue
		}
		if got != c.want {
			t.Errorf("Eval(%q): expected %v, got %v", c.expr, c.want, got)
		}
	}
}

func TestCompareEvaluatorMalformed(t *testing.T) {
	e := CompareEvaluator{}
	for _, expr := range []string{
		"no operator here",
		"== 2",
		"2 ==",
		"",
		"{undefined} == 2",
	} {
		if _, err := e.Eval(expr); err == nil {
			t.Errorf("Eval(%q): expected error", expr)
		}
	}
}

func TestFindOperatorSkipsQuotes(t *testing.T) {
	op, idx := findOperator(`"a==b" == "a==b"`)
	if op != "==" || idx != 7 {
		t.Errorf("expected operator outside quotes at 7, got %q at %d", op, idx)
	}
}
