package env

import (
	"log/slog"
	"sort"
)

// Builder produces target nodes from source nodes under a given
// environment. Build always receives normalized arguments: target and
// source arrive as flat slices or nil, per-call variable overrides
// arrive in kw, and extra positional arguments trail in rest. The
// environment passed to Build is the one the builder was invoked
// through, so override proxies flow through naturally.
type Builder interface {
	Build(e Environment, target, source []any, kw Vars, rest ...any) ([]Node, error)
}

// BuilderFunc adapts a plain function to the Builder interface.
type BuilderFunc func(e Environment, target, source []any, kw Vars, rest ...any) ([]Node, error)

// Build implements Builder.
func (f BuilderFunc) Build(e Environment, target, source []any, kw Vars, rest ...any) ([]Node, error) {
	return f(e, target, source, kw, rest...)
}

// builderArgs splits builder call arguments into their roles. Vars
// values collect into keyword overrides and are never positional. Of
// the positional arguments, one alone names the sources; otherwise the
// first two are target then source and the remainder passes through.
func builderArgs(args []any) (target, source, rest []any, kw Vars) {
	positional := make([]any, 0, len(args))

	for _, arg := range args {
		if v, ok := arg.(Vars); ok {
			if kw == nil {
				kw = Vars{}
			}

			for name, value := range v {
				kw[name] = value
			}

			continue
		}

		positional = append(positional, arg)
	}

	switch len(positional) {
	case 0:
	case 1:
		source = builderNodeArg(positional[0])
	default:
		target = builderNodeArg(positional[0])
		source = builderNodeArg(positional[1])
		rest = positional[2:]
	}

	return target, source, rest, kw
}

// builderNodeArg flattens one target or source argument: nil stays
// nil, sequences spread, anything else wraps as a single element.
func builderNodeArg(arg any) []any {
	switch t := arg.(type) {
	case nil:
		return nil

	case []any:
		return t

	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}

		return out

	case []Node:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}

		return out

	case []Value:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}

		return out

	case Value:
		switch t.Kind {
		case KindInvalid:
			return nil

		case KindSeq:
			out := make([]any, len(t.Seq))
			for i, v := range t.Seq {
				out[i] = v
			}

			return out
		}

		return []any{t}

	default:
		return []any{arg}
	}
}

// builderRegistry is the live value held behind the BUILDERS variable.
// It preserves registration order so views of it are deterministic.
type builderRegistry struct {
	builders map[string]Builder
	names    []string
}

func newBuilderRegistry() *builderRegistry {
	return &builderRegistry{builders: map[string]Builder{}}
}

func (r *builderRegistry) get(name string) (Builder, bool) {
	if r == nil {
		return nil, false
	}

	b, ok := r.builders[name]

	return b, ok
}

func (r *builderRegistry) set(name string, b Builder) {
	if _, ok := r.builders[name]; !ok {
		r.names = append(r.names, name)
	}

	r.builders[name] = b
}

func (r *builderRegistry) delete(name string) bool {
	if r == nil {
		return false
	}

	if _, ok := r.builders[name]; !ok {
		return false
	}

	delete(r.builders, name)

	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)

			break
		}
	}

	return true
}

func (r *builderRegistry) order() []string {
	if r == nil {
		return nil
	}

	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}

func (r *builderRegistry) clone() *builderRegistry {
	c := newBuilderRegistry()
	if r == nil {
		return c
	}

	for _, name := range r.names {
		c.set(name, r.builders[name])
	}

	return c
}

// view renders the registry as an ordered mapping of opaque builders,
// the shape reads of the BUILDERS variable observe.
func (r *builderRegistry) view() Value {
	d := &Dict{}

	if r != nil {
		for _, name := range r.names {
			d.Set(name, NewOpaque(r.builders[name]))
		}
	}

	return Value{Kind: KindMap, Dict: d}
}

// coerceBuilders validates an assignment to the BUILDERS variable and
// folds it into a fresh registry. Accepted shapes are maps of names to
// Builder implementations and a previously read BUILDERS view.
func coerceBuilders(value any) (*builderRegistry, error) {
	reg := newBuilderRegistry()

	add := func(name string, v any) error {
		b, ok := v.(Builder)
		if !ok {
			return ErrNotABuilder.With(
				slog.String("name", name),
				slog.Any("value", v),
			)
		}

		reg.set(name, b)

		return nil
	}

	switch t := value.(type) {
	case nil:
		return reg, nil

	case *builderRegistry:
		return t.clone(), nil

	case map[string]Builder:
		names := sortedKeys(t)
		for _, name := range names {
			reg.set(name, t[name])
		}

		return reg, nil

	case Vars:
		return coerceBuilders(map[string]any(t))

	case map[string]any:
		names := sortedKeys(t)
		for _, name := range names {
			err := add(name, t[name])
			if err != nil {
				return nil, err
			}
		}

		return reg, nil

	case Value:
		switch t.Kind {
		case KindMap:
			for _, name := range t.Dict.Keys() {
				v, _ := t.Dict.Get(name)

				err := add(name, v.Opaque)
				if err != nil {
					return nil, err
				}
			}

			return reg, nil

		case KindOpaque:
			return coerceBuilders(t.Opaque)

		case KindInvalid:
			return reg, nil
		}
	}

	return nil, ErrNotABuilder.With(slog.Any("value", value))
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
