package env

import "strings"

// Scanner claims file suffixes for implicit dependency scanning. An
// environment only needs the suffix keys; what a scanner does with a
// matching node is between it and its caller.
type Scanner interface {
	Keys() []string
}

// GetScanner returns the scanner registered for a suffix in the
// SCANNERS variable. On win32 suffix lookup is case-insensitive.
func (e *Base) GetScanner(skey string) (Scanner, bool) {
	if skey != "" && platformIsWin32(e) {
		skey = strings.ToLower(skey)
	}

	sc, ok := e.scannerMap()[skey]

	return sc, ok
}

func platformIsWin32(env Environment) bool {
	return env.Get("PLATFORM").Scalar == "win32"
}

// scannerMap builds the suffix-to-scanner mapping from the SCANNERS
// variable. The list is walked back to front so that when two scanners
// claim a suffix, the one listed first wins. The result is memoized
// until SCANNERS next changes.
func (e *Base) scannerMap() map[string]Scanner {
	if m := e.scanners.Load(); m != nil {
		return *m
	}

	win32 := platformIsWin32(e)

	list := seqOf(e.Get("SCANNERS"))
	m := make(map[string]Scanner, len(list))

	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Kind != KindOpaque {
			continue
		}

		sc, ok := list[i].Opaque.(Scanner)
		if !ok {
			continue
		}

		for _, k := range sc.Keys() {
			if win32 {
				k = strings.ToLower(k)
			}

			m[k] = sc
		}
	}

	e.scanners.Store(&m)

	return m
}

// scannerMapDelete drops the memoized suffix mapping. Called whenever
// the SCANNERS variable is assigned or removed.
func (e *Base) scannerMapDelete() {
	e.scanners.Store(nil)
}

// seqOf coerces a value to its element list: sequences yield their
// elements, the invalid value yields nothing, and anything else is a
// single-element list.
func seqOf(v Value) []Value {
	switch v.Kind {
	case KindSeq:
		return v.Seq
	case KindInvalid:
		return nil
	default:
		return []Value{v}
	}
}
