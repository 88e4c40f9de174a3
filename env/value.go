package env

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of a construction-variable Value.
type Kind int

const (
	// KindInvalid is the zero Kind. It marks an absent or explicitly
	// empty value, analogous to a nil entry.
	KindInvalid Kind = iota

	// KindScalar is a plain string value.
	KindScalar

	// KindSeq is an ordered sequence of values.
	KindSeq

	// KindPair is a name with an optional argument. It is the element
	// form of an exploded CPPDEFINES entry and of two-token flags such
	// as ("-include", "file.h").
	KindPair

	// KindMap is an ordered mapping from name to value.
	KindMap

	// KindOpaque is an arbitrary Go value held by reference: builders,
	// scanners, node handles, callables. Opaque values are shared, never
	// copied, and participate in merges through the singleton fallback.
	KindOpaque
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindScalar:
		return "Scalar"
	case KindSeq:
		return "Seq"
	case KindPair:
		return "Pair"
	case KindMap:
		return "Map"
	case KindOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// Value is the closed union of shapes a construction variable can take.
// Exactly one group of fields is meaningful based on Kind.
type Value struct {
	Seq    []Value // KindSeq
	Scalar string  // KindScalar
	Name   string  // KindPair: the pair's name
	Opaque any     // KindOpaque
	Arg    *Value  // KindPair: optional argument (nil for the 1-tuple form)
	Dict   *Dict   // KindMap
	Kind   Kind
}

// NewScalar creates a scalar string value.
func NewScalar(s string) Value {
	return Value{Kind: KindScalar, Scalar: s}
}

// NewSeq creates a sequence value from the given elements.
func NewSeq(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{Kind: KindSeq, Seq: elems}
}

// NewStrings creates a sequence of scalar values.
func NewStrings(items ...string) Value {
	elems := make([]Value, len(items))
	for i, s := range items {
		elems[i] = NewScalar(s)
	}

	return Value{Kind: KindSeq, Seq: elems}
}

// NewPair creates a pair value. At most one argument is used; with no
// argument the pair takes the 1-tuple form, e.g. ("NDEBUG").
func NewPair(name string, arg ...Value) Value {
	v := Value{Kind: KindPair, Name: name}
	if len(arg) > 0 {
		a := arg[0]
		v.Arg = &a
	}

	return v
}

// NewDict creates an ordered mapping value from pair-shaped entries,
// preserving their order. Non-pair entries are ignored.
func NewDict(entries ...Value) Value {
	d := &Dict{}

	for _, e := range entries {
		if e.Kind != KindPair {
			continue
		}

		if e.Arg != nil {
			d.Set(e.Name, *e.Arg)
		} else {
			d.Set(e.Name, Value{})
		}
	}

	return Value{Kind: KindMap, Dict: d}
}

// NewOpaque creates a value holding an arbitrary Go object by reference.
func NewOpaque(v any) Value {
	return Value{Kind: KindOpaque, Opaque: v}
}

// IsValid reports whether the value holds any shape at all.
func (v Value) IsValid() bool { return v.Kind != KindInvalid }

// Len returns the number of elements in a sequence or mapping,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.Kind {
	case KindSeq:
		return len(v.Seq)
	case KindMap:
		return v.Dict.Len()
	default:
		return 0
	}
}

// falsy reports whether the value is empty-like: invalid, an empty
// string, an empty sequence, an empty mapping, or a nil opaque.
func (v Value) falsy() bool {
	switch v.Kind {
	case KindInvalid:
		return true
	case KindScalar:
		return v.Scalar == ""
	case KindSeq:
		return len(v.Seq) == 0
	case KindMap:
		return v.Dict.Len() == 0
	case KindOpaque:
		return v.Opaque == nil
	default:
		return false
	}
}

// emptySentinel reports whether an existing value counts as "never set"
// for the Unique merge variants. Only a missing value or an empty string
// qualifies; an empty sequence does not.
func (v Value) emptySentinel() bool {
	return v.Kind == KindInvalid || (v.Kind == KindScalar && v.Scalar == "")
}

// comparable reports whether the value can participate in duplicate
// removal. Sequences and mappings cannot; opaque values can only when
// the underlying Go type is comparable.
func (v Value) comparable() bool {
	switch v.Kind {
	case KindInvalid, KindScalar:
		return true
	case KindPair:
		return v.Arg == nil || v.Arg.comparable()
	case KindOpaque:
		return v.Opaque == nil || reflect.TypeOf(v.Opaque).Comparable()
	default:
		return false
	}
}

// Equal reports deep equality of two values. Opaque values compare by
// Go equality when comparable, and never match otherwise.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	switch v.Kind {
	case KindInvalid:
		return true

	case KindScalar:
		return v.Scalar == o.Scalar

	case KindSeq:
		if len(v.Seq) != len(o.Seq) {
			return false
		}

		for i := range v.Seq {
			if !v.Seq[i].Equal(o.Seq[i]) {
				return false
			}
		}

		return true

	case KindPair:
		if v.Name != o.Name {
			return false
		}

		if (v.Arg == nil) != (o.Arg == nil) {
			return false
		}

		return v.Arg == nil || v.Arg.Equal(*o.Arg)

	case KindMap:
		return v.Dict.equal(o.Dict)

	case KindOpaque:
		if v.Opaque == nil || o.Opaque == nil {
			return v.Opaque == o.Opaque
		}

		if !reflect.TypeOf(v.Opaque).Comparable() ||
			!reflect.TypeOf(o.Opaque).Comparable() {
			return false
		}

		return v.Opaque == o.Opaque

	default:
		return false
	}
}

// Copy returns a structural copy of the value. Sequences, pairs, and
// mappings are duplicated recursively; opaque values are shared by
// reference, matching clone semantics for non-copyable members.
func (v Value) Copy() Value {
	switch v.Kind {
	case KindSeq:
		elems := make([]Value, len(v.Seq))
		for i := range v.Seq {
			elems[i] = v.Seq[i].Copy()
		}

		return Value{Kind: KindSeq, Seq: elems}

	case KindPair:
		c := Value{Kind: KindPair, Name: v.Name}
		if v.Arg != nil {
			a := v.Arg.Copy()
			c.Arg = &a
		}

		return c

	case KindMap:
		return Value{Kind: KindMap, Dict: v.Dict.copy()}

	default:
		return v
	}
}

// String returns a compact, human-readable rendering of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindInvalid:
		return "nil"

	case KindScalar:
		return v.Scalar

	case KindSeq:
		elems := make([]string, len(v.Seq))
		for i := range v.Seq {
			elems[i] = v.Seq[i].String()
		}

		return "[" + strings.Join(elems, ", ") + "]"

	case KindPair:
		if v.Arg == nil {
			return "(" + v.Name + ")"
		}

		return "(" + v.Name + ", " + v.Arg.String() + ")"

	case KindMap:
		var sb strings.Builder

		sb.WriteString("{")

		for i, k := range v.Dict.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}

			e, _ := v.Dict.Get(k)
			sb.WriteString(k + ": " + e.String())
		}

		sb.WriteString("}")

		return sb.String()

	case KindOpaque:
		return fmt.Sprintf("%v", v.Opaque)

	default:
		return "<unknown>"
	}
}

// Wrap converts a native Go value into a Value. Strings become scalars,
// slices become sequences, string-keyed maps become ordered mappings
// (sorted by key, since Go map iteration order is unspecified), numeric
// and boolean values become their decimal or true/false scalar text,
// nil becomes the invalid value, and anything else is held opaque.
// A Value passes through unchanged.
func Wrap(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case *Value:
		if t == nil {
			return Value{}
		}

		return *t
	case string:
		return NewScalar(t)
	case []string:
		return NewStrings(t...)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = Wrap(e)
		}

		return Value{Kind: KindSeq, Seq: elems}
	case []Value:
		return NewSeq(t...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		d := &Dict{}
		for _, k := range keys {
			d.Set(k, Wrap(t[k]))
		}

		return Value{Kind: KindMap, Dict: d}
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		d := &Dict{}
		for _, k := range keys {
			d.Set(k, NewScalar(t[k]))
		}

		return Value{Kind: KindMap, Dict: d}
	case bool:
		return NewScalar(strconv.FormatBool(t))
	case int:
		return NewScalar(strconv.Itoa(t))
	case int64:
		return NewScalar(strconv.FormatInt(t, 10))
	case uint64:
		return NewScalar(strconv.FormatUint(t, 10))
	case float64:
		return NewScalar(strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return NewOpaque(v)
	}
}

// Dict is an ordered mapping from name to Value. Insertion order is
// preserved; overwriting a name keeps its original position.
type Dict struct {
	vals map[string]Value
	keys []string
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Keys returns the entry names in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}

	keys := make([]string, len(d.keys))
	copy(keys, d.keys)

	return keys
}

// Get returns the value stored under name.
func (d *Dict) Get(name string) (Value, bool) {
	if d == nil || d.vals == nil {
		return Value{}, false
	}

	v, ok := d.vals[name]

	return v, ok
}

// Set stores a value under name, appending new names to the order.
func (d *Dict) Set(name string, v Value) {
	if d.vals == nil {
		d.vals = make(map[string]Value)
	}

	if _, ok := d.vals[name]; !ok {
		d.keys = append(d.keys, name)
	}

	d.vals[name] = v
}

// Del removes the entry stored under name, preserving the order of the
// remaining entries.
func (d *Dict) Del(name string) {
	if d == nil || d.vals == nil {
		return
	}

	if _, ok := d.vals[name]; !ok {
		return
	}

	delete(d.vals, name)

	for i, k := range d.keys {
		if k == name {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)

			break
		}
	}
}

func (d *Dict) copy() *Dict {
	c := &Dict{}
	if d == nil {
		return c
	}

	for _, k := range d.keys {
		c.Set(k, d.vals[k].Copy())
	}

	return c
}

func (d *Dict) equal(o *Dict) bool {
	if d.Len() != o.Len() {
		return false
	}

	for _, k := range d.Keys() {
		dv, _ := d.Get(k)

		ov, ok := o.Get(k)
		if !ok || !dv.Equal(ov) {
			return false
		}
	}

	return true
}

// pairs converts a mapping into the ordered pair-sequence form used by
// CPPDEFINES: each entry becomes (name) when its value is empty, or
// (name, value) otherwise.
func (d *Dict) pairs() []Value {
	if d == nil {
		return nil
	}

	out := make([]Value, 0, len(d.keys))

	for _, k := range d.keys {
		v := d.vals[k]
		if v.IsValid() {
			out = append(out, NewPair(k, v))
		} else {
			out = append(out, NewPair(k))
		}
	}

	return out
}
