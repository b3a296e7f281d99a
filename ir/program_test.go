package ir

import "testing"

func TestProcedureVariables(t *testing.T) {
	proc := Procedure{
		Name: "f",
		Statements: []Statement{
			{ID: 0, Kind: KindAssign, Defs: []string{"x"}},
			{ID: 1, Kind: KindAssign, Defs: []string{"y"}, Uses: []string{"x", "z"}},
			{ID: 2, Kind: KindReturn, Uses: []string{"y"}},
		},
	}

	got := proc.Variables()
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("Variables() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Variables()[%d] = %s, expected %s", i, got[i], want[i])
		}
	}
}

func TestKindValid(t *testing.T) {
	for kind := range kinds {
		if !kind.Valid() {
			t.Errorf("%s should be valid", kind)
		}
	}
	if Kind("lambda").Valid() {
		t.Error("unknown kind reported valid")
	}
}

func TestKindTerminates(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected bool
	}{
		{KindReturn, true},
		{KindBreak, true},
		{KindContinue, true},
		{KindGoto, true},
		{KindIfGoto, false},
		{KindAssign, false},
		{KindWhile, false},
	}

	for _, test := range tests {
		if got := test.kind.Terminates(); got != test.expected {
			t.Errorf("%s.Terminates() = %v, expected %v", test.kind, got, test.expected)
		}
	}
}

func TestProgramProcedureLookup(t *testing.T) {
	prog := Program{Procedures: []Procedure{{Name: "main"}, {Name: "helper"}}}

	if p, ok := prog.Procedure("helper"); !ok || p.Name != "helper" {
		t.Errorf("Procedure(helper) = %v, %v", p, ok)
	}
	if _, ok := prog.Procedure("missing"); ok {
		t.Error("lookup of missing procedure succeeded")
	}
}
