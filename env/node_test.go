package env

import "testing"

func TestPathFactory_Interning(t *testing.T) {
	f := &PathFactory{}

	if f.File("src/a.c") != f.File("src/a.c") {
		t.Error("File() returned distinct nodes for the same path")
	}

	// All four constructors share one namespace.
	if f.File("out") != f.Alias("out") || f.Dir("out") != f.Entry("out") {
		t.Error("constructors interned the same name to different nodes")
	}

	if f.File("a") == f.File("b") {
		t.Error("File() interned different paths to one node")
	}

	// Factories do not share their intern tables.
	other := &PathFactory{}
	if f.File("a") == other.File("a") {
		t.Error("separate factories returned the same node")
	}
}

func TestPathNode_String(t *testing.T) {
	f := &PathFactory{}

	if got := f.File("src/a.c").String(); got != "src/a.c" {
		t.Errorf("String() = %q, want %q", got, "src/a.c")
	}
}

func TestPathNode_Dependencies(t *testing.T) {
	f := &PathFactory{}

	n, ok := f.File("out.o").(*PathNode)
	if !ok {
		t.Fatalf("File() = %T, want *PathNode", f.File("out.o"))
	}

	a, h := f.File("a.c"), f.File("a.h")
	n.AddDependency(a)
	n.AddDependency(h)

	deps := n.Dependencies()
	if len(deps) != 2 || deps[0] != a || deps[1] != h {
		t.Fatalf("Dependencies() = %v, want [a.c, a.h] in order", deps)
	}

	// The returned slice is a copy.
	deps[0] = f.File("other.c")

	if got := n.Dependencies(); got[0] != a {
		t.Error("mutating the returned slice changed the node")
	}
}
