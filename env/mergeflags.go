package env

import "strings"

// MergeFlags merges command-line flags into construction variables.
//
// Arguments that are not already a variable-to-flags mapping go
// through ParseFlags first. Without unique, every entry appends as-is.
// With unique, the combined elements deduplicate: variables whose name
// ends in PATH keep the first occurrence of each element, all others
// keep the last.
func (e *Base) MergeFlags(args any, unique bool) error {
	return mergeFlags(e, args, unique)
}

func mergeFlags(env Environment, args any, unique bool) error {
	dist, err := flagMapping(env, args)
	if err != nil {
		return err
	}

	if !unique {
		kw := make(Vars, len(dist))

		for key, value := range dist {
			kw[key] = value
		}

		return env.Append(kw)
	}

	for _, key := range sortedKeys(dist) {
		value := dist[key]
		if value.falsy() {
			continue
		}

		incoming := rawSplit(value)
		if len(incoming) == 0 {
			continue
		}

		elems := mergedFlagElems(env, key, incoming)

		if strings.HasSuffix(key, "PATH") {
			elems = deleteDuplicates(elems, false)
		} else {
			elems = deleteDuplicates(elems, true)
		}

		err := env.Set(key, NewSeq(elems...))
		if err != nil {
			return err
		}
	}

	return nil
}

// flagMapping coerces the MergeFlags argument into a distribution of
// flags over construction variables.
func flagMapping(env Environment, args any) (map[string]Value, error) {
	switch t := args.(type) {
	case map[string]Value:
		return t, nil

	case Vars:
		out := make(map[string]Value, len(t))
		for key, value := range t {
			out[key] = Wrap(value)
		}

		return out, nil

	case map[string]any:
		out := make(map[string]Value, len(t))
		for key, value := range t {
			out[key] = Wrap(value)
		}

		return out, nil

	default:
		return env.ParseFlags(args)
	}
}

// mergedFlagElems joins the existing value of a variable with incoming
// flag elements. CPPDEFINES values normalize to definition pairs on
// both sides so equivalent spellings deduplicate.
func mergedFlagElems(env Environment, key string, incoming []Value) []Value {
	orig, exists := env.Lookup(key)
	if !exists || orig.falsy() {
		if key == defines {
			return definePairs(NewSeq(incoming...))
		}

		return incoming
	}

	if key == defines {
		return append(definePairs(orig), definePairs(NewSeq(incoming...))...)
	}

	switch orig.Kind {
	case KindSeq:
		return append(append([]Value{}, orig.Seq...), incoming...)

	default:
		// A scalar or other existing value joins as one element, so a
		// flags string like "-pipe -Wall" stays intact.
		return append([]Value{orig}, incoming...)
	}
}

// rawSplit flattens a value into flag elements without variable
// expansion: sequences contribute their elements and scalars split on
// whitespace.
func rawSplit(v Value) []Value {
	switch v.Kind {
	case KindInvalid:
		return nil

	case KindSeq:
		return append([]Value{}, v.Seq...)

	case KindScalar:
		fields := strings.Fields(v.Scalar)

		out := make([]Value, 0, len(fields))
		for _, f := range fields {
			out = append(out, NewScalar(f))
		}

		return out

	default:
		return []Value{v}
	}
}
