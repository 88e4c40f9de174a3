package env

// The merge operations below grow construction variables instead of
// replacing them. Each one accepts loosely typed increments and decides
// placement from the shapes of the existing and incoming values, so a
// scalar can join a list, a list can extend a list, and mapping entries
// can accumulate, all through one call site.
//
// CPPDEFINES is special throughout: preprocessor definitions normalize
// to name/argument pairs before they combine, so "NAME", ["NAME"],
// ("NAME",) and {NAME: nil} all describe the same definition.

const defines = "CPPDEFINES"

// ----
// Append / Prepend
// ----

// Append adds values to the end of construction variables. Variables
// not already set are created. Incompatible shapes coalesce into a
// sequence rather than failing, and invalid increments are ignored.
func (e *Base) Append(kw Vars) error { return appendVars(e, kw) }

func appendVars(env Environment, kw Vars) error {
	for _, key := range sortedKeys(kw) {
		val := Wrap(kw[key]).Copy()

		orig, exists := env.Lookup(key)

		if key == defines {
			if exists && orig.Kind == KindScalar {
				orig = NewSeq(orig)
			}

			if !exists && val.Kind == KindScalar {
				val = NewSeq(val)
			}
		}

		var merged Value

		switch {
		case !exists:
			merged = val

		case orig.Kind == KindMap:
			merged = mergeIntoMap(key, orig.Dict, val, true)

		default:
			merged = appendValue(orig, val)
		}

		err := env.Set(key, merged)
		if err != nil {
			return err
		}
	}

	return nil
}

// Prepend adds values to the front of construction variables. It
// mirrors Append with the increment placed before the existing value.
func (e *Base) Prepend(kw Vars) error { return prependVars(e, kw) }

func prependVars(env Environment, kw Vars) error {
	for _, key := range sortedKeys(kw) {
		val := Wrap(kw[key]).Copy()

		orig, exists := env.Lookup(key)

		if key == defines {
			if exists && orig.Kind == KindScalar {
				orig = NewSeq(orig)
			}

			if !exists && val.Kind == KindScalar {
				val = NewSeq(val)
			}
		}

		var merged Value

		switch {
		case !exists:
			merged = val

		case orig.Kind == KindMap:
			merged = mergeIntoMap(key, orig.Dict, val, false)

		default:
			merged = prependValue(orig, val)
		}

		err := env.Set(key, merged)
		if err != nil {
			return err
		}
	}

	return nil
}

// appendValue combines orig followed by val. Matching shapes add
// directly; otherwise the values coalesce into a sequence, dropping
// whichever side is empty.
func appendValue(orig, val Value) Value {
	if sum, ok := addValues(orig, val); ok {
		return sum
	}

	switch {
	case val.Kind == KindInvalid:
		return orig

	case orig.Kind == KindSeq:
		if val.falsy() {
			return orig
		}

		return NewSeq(append(append([]Value{}, orig.Seq...), val)...)

	case val.Kind == KindSeq:
		if orig.falsy() {
			return val
		}

		return NewSeq(append([]Value{orig}, val.Seq...)...)

	case orig.falsy():
		return val

	default:
		return NewSeq(orig, val)
	}
}

// prependValue combines val followed by orig.
func prependValue(orig, val Value) Value {
	if sum, ok := addValues(val, orig); ok {
		return sum
	}

	switch {
	case val.Kind == KindInvalid:
		return orig

	case orig.Kind == KindSeq:
		if val.falsy() {
			return orig
		}

		return NewSeq(append([]Value{val}, orig.Seq...)...)

	case val.Kind == KindSeq:
		if orig.falsy() {
			return val
		}

		return NewSeq(append(append([]Value{}, val.Seq...), orig)...)

	case orig.falsy():
		return val

	default:
		return NewSeq(val, orig)
	}
}

// addValues adds two values of the same additive shape: scalars
// concatenate and sequences join into a fresh sequence. All other
// combinations report false.
func addValues(a, b Value) (Value, bool) {
	switch {
	case a.Kind == KindScalar && b.Kind == KindScalar:
		return NewScalar(a.Scalar + b.Scalar), true

	case a.Kind == KindSeq && b.Kind == KindSeq:
		joined := make([]Value, 0, len(a.Seq)+len(b.Seq))
		joined = append(joined, a.Seq...)
		joined = append(joined, b.Seq...)

		return NewSeq(joined...), true

	default:
		return Value{}, false
	}
}

// mergeIntoMap merges an increment into an existing mapping variable.
//
// For CPPDEFINES the mapping explodes into definition pairs and the
// increment joins the resulting sequence, at the end when last is set
// and at the front otherwise. Every other mapping absorbs the
// increment as entries: mappings merge, pairs bind their argument, and
// remaining elements become bare keys.
func mergeIntoMap(key string, orig *Dict, val Value, last bool) Value {
	if key == defines && (val.Kind == KindSeq || val.Kind == KindScalar || val.Kind == KindPair) {
		pairs := orig.pairs()

		incoming := seqOf(val)
		if val.Kind != KindSeq {
			incoming = []Value{val}
		}

		if last {
			return NewSeq(append(pairs, incoming...)...)
		}

		return NewSeq(append(append([]Value{}, incoming...), pairs...)...)
	}

	merged := orig.copy()

	setEntries(merged, val)

	return Value{Kind: KindMap, Dict: merged}
}

// setEntries writes an increment into a mapping: map entries copy
// over, a pair binds its name to its argument, a sequence contributes
// each element, and a scalar becomes a key with no value. Invalid
// increments write nothing.
func setEntries(d *Dict, val Value) {
	switch val.Kind {
	case KindMap:
		for _, k := range val.Dict.Keys() {
			entry, _ := val.Dict.Get(k)
			d.Set(k, entry)
		}

	case KindPair:
		if val.Arg != nil {
			d.Set(val.Name, *val.Arg)
		} else {
			d.Set(val.Name, Value{})
		}

	case KindSeq:
		for _, elem := range val.Seq {
			setEntries(d, elem)
		}

	case KindScalar:
		d.Set(val.Scalar, Value{})
	}
}

// ----
// AppendUnique / PrependUnique
// ----

// AppendUnique adds values to construction variables, skipping
// elements already present. With deleteExisting set, matching elements
// are removed from the existing value first so the increment moves to
// the end.
func (e *Base) AppendUnique(kw Vars, deleteExisting bool) error {
	return appendUniqueVars(e, kw, deleteExisting)
}

func appendUniqueVars(env Environment, kw Vars, deleteExisting bool) error {
	for _, key := range sortedKeys(kw) {
		val := Wrap(kw[key]).Copy()

		if val.Kind == KindSeq {
			val = NewSeq(deleteDuplicates(val.Seq, deleteExisting)...)
		}

		merged := mergeUnique(env, key, val, deleteExisting, true)

		err := env.Set(key, merged)
		if err != nil {
			return err
		}
	}

	return nil
}

// PrependUnique adds values to the front of construction variables,
// skipping elements already present. With deleteExisting set, matching
// elements are removed from the existing value first so the increment
// moves to the front.
func (e *Base) PrependUnique(kw Vars, deleteExisting bool) error {
	return prependUniqueVars(e, kw, deleteExisting)
}

func prependUniqueVars(env Environment, kw Vars, deleteExisting bool) error {
	for _, key := range sortedKeys(kw) {
		val := Wrap(kw[key]).Copy()

		if val.Kind == KindSeq {
			val = NewSeq(deleteDuplicates(val.Seq, !deleteExisting)...)
		}

		merged := mergeUnique(env, key, val, deleteExisting, false)

		err := env.Set(key, merged)
		if err != nil {
			return err
		}
	}

	return nil
}

// mergeUnique combines an increment with the existing value under
// uniqueness rules. The last flag picks which end of the result the
// increment lands on.
func mergeUnique(env Environment, key string, val Value, deleteExisting, last bool) Value {
	orig, exists := env.Lookup(key)

	switch {
	case !exists || orig.emptySentinel():
		return val

	case orig.Kind == KindMap && val.Kind == KindMap:
		merged := orig.Dict.copy()
		setEntries(merged, val)

		return Value{Kind: KindMap, Dict: merged}
	}

	// Two scalars under a non-definition variable concatenate rather
	// than forming a list.
	if key != defines && orig.Kind == KindScalar && val.Kind == KindScalar {
		if deleteExisting && orig.Equal(val) {
			return val
		}

		if last {
			return NewScalar(orig.Scalar + val.Scalar)
		}

		return NewScalar(val.Scalar + orig.Scalar)
	}

	// Both sides flatten to element lists. CPPDEFINES elements
	// normalize to definition pairs first so equivalent spellings
	// compare equal.
	var elems, incoming []Value

	if key == defines {
		elems = definePairs(orig)
		incoming = definePairs(val)
	} else {
		elems = seqOf(orig)
		if orig.Kind != KindSeq {
			elems = []Value{orig}
		}

		incoming = seqOf(val)
		if val.Kind != KindSeq {
			incoming = []Value{val}
		}
	}

	if deleteExisting {
		elems = filterNotIn(elems, incoming)
	} else {
		incoming = filterNotIn(incoming, elems)
	}

	var merged []Value

	if last {
		merged = append(elems, incoming...)
	} else {
		merged = append(incoming, elems...)
	}

	return NewSeq(merged...)
}

// definePairs normalizes a CPPDEFINES value into a flat list of
// definition pairs. A two-element sequence becomes a name/argument
// pair, a one-element sequence a bare name, mappings explode into
// their entries, and scalars become bare names.
func definePairs(v Value) []Value {
	switch v.Kind {
	case KindInvalid:
		return nil

	case KindScalar:
		return []Value{NewPair(v.Scalar)}

	case KindPair:
		return []Value{v}

	case KindMap:
		return v.Dict.pairs()

	case KindSeq:
		out := make([]Value, 0, len(v.Seq))

		for _, elem := range v.Seq {
			switch elem.Kind {
			case KindSeq:
				switch {
				case len(elem.Seq) >= 2:
					out = append(out, NewPair(elem.Seq[0].String(), elem.Seq[1]))
				case len(elem.Seq) == 1:
					out = append(out, NewPair(elem.Seq[0].String()))
				}

			case KindPair:
				out = append(out, elem)

			case KindMap:
				out = append(out, elem.Dict.pairs()...)

			case KindScalar:
				out = append(out, NewPair(elem.Scalar))

			default:
				out = append(out, elem)
			}
		}

		return out

	default:
		return []Value{v}
	}
}

// ----
// Element helpers
// ----

// deleteDuplicates removes repeated elements, keeping the first
// occurrence of each, or the last when keepLast is set. Elements with
// no equality relation are always kept.
func deleteDuplicates(elems []Value, keepLast bool) []Value {
	if keepLast {
		reversed := make([]Value, len(elems))

		for i, v := range elems {
			reversed[len(elems)-1-i] = v
		}

		kept := deleteDuplicates(reversed, false)

		for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
			kept[i], kept[j] = kept[j], kept[i]
		}

		return kept
	}

	out := make([]Value, 0, len(elems))

	for _, v := range elems {
		if !v.comparable() || !containsValue(out, v) {
			out = append(out, v)
		}
	}

	return out
}

// containsValue reports whether elems holds a value equal to v.
func containsValue(elems []Value, v Value) bool {
	for _, e := range elems {
		if e.Equal(v) {
			return true
		}
	}

	return false
}

// filterNotIn returns the elements of keep that do not appear in drop.
func filterNotIn(keep, drop []Value) []Value {
	out := make([]Value, 0, len(keep))

	for _, v := range keep {
		if !containsValue(drop, v) {
			out = append(out, v)
		}
	}

	return out
}
