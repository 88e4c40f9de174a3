package env

import "testing"

// fakeScanner claims a fixed set of suffixes.
type fakeScanner struct {
	keys []string
}

func (s *fakeScanner) Keys() []string { return s.keys }

func TestGetScanner(t *testing.T) {
	cSc := &fakeScanner{keys: []string{".c", ".h"}}
	dSc := &fakeScanner{keys: []string{".d"}}

	e := newTestEnv(t)

	err := e.Set("SCANNERS", []any{NewOpaque(cSc), NewOpaque(dSc)})
	if err != nil {
		t.Fatalf("Set(SCANNERS) error: %v", err)
	}

	got, ok := e.GetScanner(".c")
	if !ok || got != Scanner(cSc) {
		t.Errorf("GetScanner(.c) = %v, %v, want the C scanner", got, ok)
	}

	got, ok = e.GetScanner(".d")
	if !ok || got != Scanner(dSc) {
		t.Errorf("GetScanner(.d) = %v, %v, want the D scanner", got, ok)
	}

	if _, ok := e.GetScanner(".go"); ok {
		t.Error("GetScanner(.go) found a scanner for an unclaimed suffix")
	}
}

func TestGetScanner_FirstListedWins(t *testing.T) {
	first := &fakeScanner{keys: []string{".c"}}
	second := &fakeScanner{keys: []string{".c", ".cc"}}

	e := newTestEnv(t)

	err := e.Set("SCANNERS", []any{NewOpaque(first), NewOpaque(second)})
	if err != nil {
		t.Fatalf("Set(SCANNERS) error: %v", err)
	}

	got, ok := e.GetScanner(".c")
	if !ok || got != Scanner(first) {
		t.Errorf("GetScanner(.c) = %v, want the first listed scanner", got)
	}

	got, ok = e.GetScanner(".cc")
	if !ok || got != Scanner(second) {
		t.Errorf("GetScanner(.cc) = %v, want the second scanner", got)
	}
}

func TestGetScanner_TracksAssignment(t *testing.T) {
	cSc := &fakeScanner{keys: []string{".c"}}
	dSc := &fakeScanner{keys: []string{".d"}}

	e := newTestEnv(t)

	if err := e.Set("SCANNERS", []any{NewOpaque(cSc)}); err != nil {
		t.Fatal(err)
	}

	if _, ok := e.GetScanner(".c"); !ok {
		t.Fatal("GetScanner(.c) missed after assignment")
	}

	// Reassignment drops the memoized mapping.
	if err := e.Set("SCANNERS", []any{NewOpaque(dSc)}); err != nil {
		t.Fatal(err)
	}

	if _, ok := e.GetScanner(".c"); ok {
		t.Error("GetScanner(.c) still resolves after reassignment")
	}

	if _, ok := e.GetScanner(".d"); !ok {
		t.Error("GetScanner(.d) missed after reassignment")
	}

	// Removing the variable empties the mapping.
	if err := e.Delete("SCANNERS"); err != nil {
		t.Fatal(err)
	}

	if _, ok := e.GetScanner(".d"); ok {
		t.Error("GetScanner(.d) still resolves after Delete")
	}
}

func TestGetScanner_IgnoresNonScanners(t *testing.T) {
	cSc := &fakeScanner{keys: []string{".c"}}

	e := newTestEnv(t)

	err := e.Set("SCANNERS", []any{
		"not a scanner",
		NewOpaque(42),
		NewOpaque(cSc),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := e.GetScanner(".c"); !ok {
		t.Error("GetScanner(.c) missed with junk entries present")
	}
}

func TestGetScanner_Win32FoldsCase(t *testing.T) {
	cSc := &fakeScanner{keys: []string{".C"}}

	e := newTestEnv(t)

	if err := e.Set("PLATFORM", "win32"); err != nil {
		t.Fatal(err)
	}

	if err := e.Set("SCANNERS", []any{NewOpaque(cSc)}); err != nil {
		t.Fatal(err)
	}

	if _, ok := e.GetScanner(".c"); !ok {
		t.Error("GetScanner(.c) missed a case-folded suffix")
	}

	if _, ok := e.GetScanner(".C"); !ok {
		t.Error("GetScanner(.C) missed a case-folded suffix")
	}
}
