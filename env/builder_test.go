package env

import (
	"errors"
	"testing"
)

func nopBuilder() Builder {
	return BuilderFunc(func(Environment, []any, []any, Vars, ...any) ([]Node, error) {
		return nil, nil
	})
}

func TestBuilderArgs(t *testing.T) {
	tests := []struct {
		name   string
		args   []any
		target []any
		source []any
		rest   []any
		kw     Vars
	}{
		{
			name: "no arguments",
			args: nil,
		},
		{
			name:   "one positional is the source",
			args:   []any{"main.c"},
			source: []any{"main.c"},
		},
		{
			name:   "two positionals are target then source",
			args:   []any{"prog", "main.c"},
			target: []any{"prog"},
			source: []any{"main.c"},
		},
		{
			name:   "extra positionals trail in rest",
			args:   []any{"prog", "main.c", "x", "y"},
			target: []any{"prog"},
			source: []any{"main.c"},
			rest:   []any{"x", "y"},
		},
		{
			name:   "string slices spread",
			args:   []any{[]string{"a", "b"}, []string{"a.c"}},
			target: []any{"a", "b"},
			source: []any{"a.c"},
		},
		{
			name:   "keywords are never positional",
			args:   []any{Vars{"CC": "clang"}, "main.c"},
			source: []any{"main.c"},
			kw:     Vars{"CC": "clang"},
		},
		{
			name:   "later keywords win",
			args:   []any{"prog", Vars{"CC": "gcc"}, "main.c", Vars{"CC": "clang"}},
			target: []any{"prog"},
			source: []any{"main.c"},
			kw:     Vars{"CC": "clang"},
		},
		{
			name:   "nil source stays nil",
			args:   []any{"prog", nil},
			target: []any{"prog"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, source, rest, kw := builderArgs(tt.args)

			assertAnySlice(t, "target", target, tt.target)
			assertAnySlice(t, "source", source, tt.source)
			assertAnySlice(t, "rest", rest, tt.rest)

			if len(kw) != len(tt.kw) {
				t.Fatalf("kw = %v, want %v", kw, tt.kw)
			}

			for k, want := range tt.kw {
				if kw[k] != want {
					t.Errorf("kw[%q] = %v, want %v", k, kw[k], want)
				}
			}
		})
	}
}

func assertAnySlice(t *testing.T, label string, got, want []any) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}

	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %v, want %v", label, i, got[i], want[i])
		}
	}
}

func TestBuilderNodeArg(t *testing.T) {
	if got := builderNodeArg(nil); got != nil {
		t.Errorf("builderNodeArg(nil) = %v, want nil", got)
	}

	if got := builderNodeArg(Value{}); got != nil {
		t.Errorf("builderNodeArg(invalid value) = %v, want nil", got)
	}

	got := builderNodeArg(NewStrings("a", "b"))
	if len(got) != 2 {
		t.Fatalf("sequence value spread to %v, want two elements", got)
	}

	if v, ok := got[0].(Value); !ok || v.Scalar != "a" {
		t.Errorf("first spread element = %v, want scalar a", got[0])
	}

	got = builderNodeArg(NewScalar("one"))
	if len(got) != 1 {
		t.Fatalf("scalar value wrapped to %v, want one element", got)
	}

	got = builderNodeArg(42)
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("builderNodeArg(42) = %v, want [42]", got)
	}
}

func TestBuilderRegistry(t *testing.T) {
	r := newBuilderRegistry()

	r.set("Object", nopBuilder())
	r.set("Program", nopBuilder())
	r.set("Library", nopBuilder())

	want := []string{"Object", "Program", "Library"}
	assertStrings(t, "order()", r.order(), want)

	// Re-registering keeps the original position.
	r.set("Object", nopBuilder())
	assertStrings(t, "order() after re-set", r.order(), want)

	if r.delete("Missing") {
		t.Error("delete(Missing) = true, want false")
	}

	if !r.delete("Program") {
		t.Error("delete(Program) = false, want true")
	}

	assertStrings(t, "order() after delete", r.order(), []string{"Object", "Library"})

	if _, ok := r.get("Program"); ok {
		t.Error("deleted builder still resolves")
	}

	c := r.clone()
	c.set("Archive", nopBuilder())

	if _, ok := r.get("Archive"); ok {
		t.Error("addition to clone leaked into the original")
	}

	view := r.view()
	if view.Kind != KindMap {
		t.Fatalf("view kind = %v, want %v", view.Kind, KindMap)
	}

	assertStrings(t, "view keys", view.Dict.Keys(), []string{"Object", "Library"})
}

func assertStrings(t *testing.T, label string, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}

	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %q, want %q", label, i, got[i], want[i])
		}
	}
}

func TestCoerceBuilders(t *testing.T) {
	t.Run("nil yields an empty registry", func(t *testing.T) {
		reg, err := coerceBuilders(nil)
		if err != nil || len(reg.order()) != 0 {
			t.Errorf("coerceBuilders(nil) = %v, %v", reg.order(), err)
		}
	})

	t.Run("map of builders sorts names", func(t *testing.T) {
		reg, err := coerceBuilders(map[string]Builder{
			"Zip": nopBuilder(),
			"Arc": nopBuilder(),
		})
		if err != nil {
			t.Fatalf("coerceBuilders() error: %v", err)
		}

		assertStrings(t, "order()", reg.order(), []string{"Arc", "Zip"})
	})

	t.Run("registry input clones", func(t *testing.T) {
		orig := newBuilderRegistry()
		orig.set("Object", nopBuilder())

		reg, err := coerceBuilders(orig)
		if err != nil {
			t.Fatalf("coerceBuilders() error: %v", err)
		}

		reg.set("Extra", nopBuilder())

		if _, ok := orig.get("Extra"); ok {
			t.Error("coerced registry shares state with its input")
		}
	})

	t.Run("mapping view round-trips", func(t *testing.T) {
		orig := newBuilderRegistry()
		orig.set("Object", nopBuilder())
		orig.set("Program", nopBuilder())

		reg, err := coerceBuilders(orig.view())
		if err != nil {
			t.Fatalf("coerceBuilders(view) error: %v", err)
		}

		assertStrings(t, "order()", reg.order(), []string{"Object", "Program"})
	})

	t.Run("non-builder entry fails", func(t *testing.T) {
		_, err := coerceBuilders(map[string]any{"Bad": "not a builder"})
		if !errors.Is(err, ErrNotABuilder) {
			t.Errorf("coerceBuilders() error = %v, want ErrNotABuilder", err)
		}
	})

	t.Run("non-mapping value fails", func(t *testing.T) {
		_, err := coerceBuilders(42)
		if !errors.Is(err, ErrNotABuilder) {
			t.Errorf("coerceBuilders(42) error = %v, want ErrNotABuilder", err)
		}
	})
}

func TestAddRemoveBuilder(t *testing.T) {
	e := newTestEnv(t)

	if err := e.AddBuilder("Program", nopBuilder()); err != nil {
		t.Fatalf("AddBuilder() error: %v", err)
	}

	if _, err := e.InvokeBuilder("Program", "main.c"); err != nil {
		t.Errorf("InvokeBuilder() after AddBuilder error: %v", err)
	}

	if _, ok := e.Get("BUILDERS").Dict.Get("Program"); !ok {
		t.Error("BUILDERS view missing the added builder")
	}

	if err := e.AddBuilder("Bad", nil); !errors.Is(err, ErrNotABuilder) {
		t.Errorf("AddBuilder(nil) error = %v, want ErrNotABuilder", err)
	}

	if err := e.RemoveBuilder("Program"); err != nil {
		t.Fatalf("RemoveBuilder() error: %v", err)
	}

	if err := e.RemoveBuilder("Program"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("RemoveBuilder() of a missing name error = %v, want ErrKeyNotFound", err)
	}

	if _, err := e.InvokeBuilder("Program"); !errors.Is(err, ErrUnknownBuilder) {
		t.Errorf("InvokeBuilder() after removal error = %v, want ErrUnknownBuilder", err)
	}
}

func TestAddBuilder_ThroughOverride(t *testing.T) {
	e := newTestEnv(t)

	ov, err := e.Override(Vars{"CC": "clang"})
	if err != nil {
		t.Fatalf("Override() error: %v", err)
	}

	if err := ov.AddBuilder("Object", nopBuilder()); err != nil {
		t.Fatalf("AddBuilder() error: %v", err)
	}

	// Registration lands at the root, so the base sees it too.
	if _, err := e.InvokeBuilder("Object", "a.c"); err != nil {
		t.Errorf("base InvokeBuilder() error: %v", err)
	}

	if err := ov.RemoveBuilder("Object"); err != nil {
		t.Fatalf("RemoveBuilder() error: %v", err)
	}

	if _, err := e.InvokeBuilder("Object"); !errors.Is(err, ErrUnknownBuilder) {
		t.Errorf("InvokeBuilder() after proxy removal error = %v, want ErrUnknownBuilder", err)
	}
}
