// Package env implements construction environments: ordered, typed
// key/value stores that carry the variables, builders, and policies a
// build graph is constructed under.
//
// # Philosophy
//
// A construction environment answers one question: with what settings
// is this file built? Everything else follows from keeping that answer
// cheap to derive and safe to specialize. An environment is created
// once with [New], copied wholesale with [Base.Clone] when a variant
// diverges for good, and layered with [Base.Override] when a variant
// exists only for one builder call.
//
// Values are modeled by [Value], a small algebra over strings,
// sequences, name/argument pairs, ordered mappings, and opaque Go
// objects. The merge operations understand all of them, so appending a
// mapping onto a list or a string onto a mapping does something
// sensible rather than failing at the bottom of a build.
//
// # Basic Usage
//
//	e, err := env.New(
//		env.WithVars(env.Vars{"CC": "gcc", "CCFLAGS": []string{"-O2"}}),
//	)
//	if err != nil {
//		...
//	}
//
//	err = e.Append(env.Vars{"CCFLAGS": "-g"})
//	cc := e.Get("CC").String()
//
// # Layering
//
// Clone produces an independent copy: mutating either environment never
// disturbs the other. Override produces a proxy that reads through to
// its subject but keeps every write in its own layer:
//
//	debug, err := e.Override(env.Vars{"CCFLAGS": "-g -O0"})
//	if err != nil {
//		...
//	}
//
//	debug.Get("CCFLAGS") // -g -O0
//	e.Get("CCFLAGS")     // untouched
//
// Overrides nest arbitrarily. Whatever is not a construction variable,
// such as attached methods, registered builders, and change deciders,
// lives on the [Base] at the bottom of the chain.
//
// # Merging
//
// Append, Prepend, and their Unique variants combine new values with
// existing ones by shape. The unique variants deduplicate, optionally
// moving a matching element to the incoming end. CPPDEFINES receives
// special handling throughout: its entries normalize to name or
// name/value definition pairs so the same macro spelled differently
// still deduplicates.
//
// # Flags
//
// [Base.ParseFlags] classifies GNU-style command-line flags into the
// construction variables a toolchain would consume them from, and
// [Base.MergeFlags] merges such a classification into the store:
//
//	err := e.MergeFlags("-I/opt/include -L/opt/lib -lfoo", true)
//
// [Base.ParseConfig] composes the two with command execution, feeding
// the output of a {foo}-config script through ParseFlags into the
// environment.
//
// # Change Decision
//
// Targets decide whether dependencies changed through the policy set
// with [Base.Decider]: content signatures by default, or timestamp
// disciplines for make-compatible behavior. [FileSignature] computes
// the content signature the built-in policies compare.
package env
