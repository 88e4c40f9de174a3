package env

import (
	"os"
	"path/filepath"
	"strings"
)

// pathListSeparator joins path lists rendered for the host, matching
// what spawned processes expect.
const pathListSeparator = string(os.PathListSeparator)

// pathConfig collects the settings accepted by AppendENVPath and
// PrependENVPath.
type pathConfig struct {
	envName        string
	sep            string
	deleteExisting bool
}

// PathOption adjusts how the ENVPath operations locate and merge a
// path entry.
type PathOption func(pathConfig) pathConfig

func applyPathOptions(cfg pathConfig, opts ...PathOption) pathConfig {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithPathVar returns an option that names the mapping variable
// holding the execution environment. The default is ENV.
func WithPathVar(name string) PathOption {
	return func(cfg pathConfig) pathConfig {
		if name != "" {
			cfg.envName = name
		}

		return cfg
	}
}

// WithPathSep returns an option that sets the separator used to split
// and join path strings. The default is the host path list separator.
func WithPathSep(sep string) PathOption {
	return func(cfg pathConfig) pathConfig {
		if sep != "" {
			cfg.sep = sep
		}

		return cfg
	}
}

// WithDeleteExisting returns an option that controls whether elements
// already on the path move to the incoming end. AppendENVPath defaults
// to keeping them in place, PrependENVPath to moving them.
func WithDeleteExisting(del bool) PathOption {
	return func(cfg pathConfig) pathConfig {
		cfg.deleteExisting = del

		return cfg
	}
}

// AppendENVPath appends dir to a path entry of the execution
// environment, once. An element already present stays where it is
// unless deleteExisting moves it to the end. The entry keeps its
// shape: list values stay lists, strings stay separator-joined
// strings.
func (e *Base) AppendENVPath(name string, dir any, opts ...PathOption) error {
	return appendENVPath(e, name, dir, opts...)
}

// PrependENVPath prepends dir to a path entry of the execution
// environment, once. An element already present moves to the front by
// default; WithDeleteExisting(false) leaves it where it is.
func (e *Base) PrependENVPath(name string, dir any, opts ...PathOption) error {
	return prependENVPath(e, name, dir, opts...)
}

func appendENVPath(env Environment, name string, dir any, opts ...PathOption) error {
	cfg := pathConfig{envName: "ENV", sep: pathListSeparator}
	cfg = applyPathOptions(cfg, opts...)

	orig := envPathValue(env, cfg.envName, name)
	merged := appendPath(env, orig, Wrap(dir), cfg.sep, cfg.deleteExisting)

	return setEnvPath(env, cfg.envName, name, merged)
}

func prependENVPath(env Environment, name string, dir any, opts ...PathOption) error {
	cfg := pathConfig{envName: "ENV", sep: pathListSeparator, deleteExisting: true}
	cfg = applyPathOptions(cfg, opts...)

	orig := envPathValue(env, cfg.envName, name)
	merged := prependPath(env, orig, Wrap(dir), cfg.sep, cfg.deleteExisting)

	return setEnvPath(env, cfg.envName, name, merged)
}

// envPathValue reads one entry of a mapping variable, or the empty
// value when the mapping or entry is missing.
func envPathValue(env Environment, envName, name string) Value {
	v, ok := env.Lookup(envName)
	if !ok || v.Kind != KindMap {
		return Value{}
	}

	entry, _ := v.Dict.Get(name)

	return entry
}

// setEnvPath writes one entry of a mapping variable, creating the
// mapping when missing and replacing it when it is not a mapping.
func setEnvPath(env Environment, envName, name string, v Value) error {
	var target *Dict

	existing, ok := env.Lookup(envName)
	if ok && existing.Kind == KindMap {
		target = existing.Dict.copy()
	} else {
		target = &Dict{}
	}

	target.Set(name, v)

	return env.Set(envName, Value{Kind: KindMap, Dict: target})
}

// appendPath merges incoming path elements onto the end of orig.
// Existing elements keep their positions and their duplicates; only
// incoming elements deduplicate against what is already there. With
// deleteExisting, matching existing elements are removed so the
// incoming ones settle at the end.
func appendPath(env Environment, orig, incoming Value, sep string, deleteExisting bool) Value {
	wasSeq := orig.Kind == KindSeq

	paths := splitPathElems(orig, sep)
	newpaths := canonicalizeAll(env, splitPathElems(incoming, sep))

	var merged []Value

	if deleteExisting {
		combined := append(append([]Value{}, paths...), newpaths...)
		merged = uniquePaths(env, combined, true)
	} else {
		seen := make([]string, 0, len(paths))
		merged = make([]Value, 0, len(paths)+len(newpaths))

		for _, p := range paths {
			text := p.String()
			if text == "" {
				continue
			}

			merged = append(merged, p)
			seen = append(seen, pathKey(env, text))
		}

		for _, p := range newpaths {
			text := p.String()
			if text == "" {
				continue
			}

			key := pathKey(env, text)
			if !containsString(seen, key) {
				merged = append(merged, p)
				seen = append(seen, key)
			}
		}
	}

	return joinPathElems(merged, sep, wasSeq)
}

// prependPath merges incoming path elements onto the front of orig.
func prependPath(env Environment, orig, incoming Value, sep string, deleteExisting bool) Value {
	wasSeq := orig.Kind == KindSeq

	paths := splitPathElems(orig, sep)
	newpaths := canonicalizeAll(env, splitPathElems(incoming, sep))

	var merged []Value

	if deleteExisting {
		combined := append(append([]Value{}, newpaths...), paths...)
		merged = uniquePaths(env, combined, false)
	} else {
		seen := make([]string, 0, len(paths))

		for _, p := range paths {
			if text := p.String(); text != "" {
				seen = append(seen, pathKey(env, text))
			}
		}

		fresh := make([]Value, 0, len(newpaths))

		for _, p := range newpaths {
			text := p.String()
			if text == "" {
				continue
			}

			key := pathKey(env, text)
			if !containsString(seen, key) {
				fresh = append(fresh, p)
				seen = append(seen, key)
			}
		}

		kept := make([]Value, 0, len(paths))

		for _, p := range paths {
			if p.String() != "" {
				kept = append(kept, p)
			}
		}

		merged = append(fresh, kept...)
	}

	return joinPathElems(merged, sep, wasSeq)
}

// uniquePaths drops empty elements and duplicates by comparison key,
// keeping the first occurrence, or the last when keepLast is set.
func uniquePaths(env Environment, elems []Value, keepLast bool) []Value {
	if keepLast {
		reversed := make([]Value, len(elems))

		for i, v := range elems {
			reversed[len(elems)-1-i] = v
		}

		kept := uniquePaths(env, reversed, false)

		for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
			kept[i], kept[j] = kept[j], kept[i]
		}

		return kept
	}

	seen := make([]string, 0, len(elems))
	out := make([]Value, 0, len(elems))

	for _, p := range elems {
		text := p.String()
		if text == "" {
			continue
		}

		key := pathKey(env, text)
		if !containsString(seen, key) {
			out = append(out, p)
			seen = append(seen, key)
		}
	}

	return out
}

// canonicalizeAll resolves incoming path elements: values that are not
// plain text stringify, and a leading # resolves through the node
// factory as a top-relative directory. Existing elements are never
// canonicalized.
func canonicalizeAll(env Environment, elems []Value) []Value {
	out := make([]Value, 0, len(elems))

	for _, v := range elems {
		text := v.String()
		if strings.HasPrefix(text, "#") {
			text = env.Context().factory.Dir(text).String()
		}

		out = append(out, NewScalar(text))
	}

	return out
}

// pathKey builds the comparison key used for path deduplication:
// cleaned, and case-folded under the win32 platform.
func pathKey(env Environment, text string) string {
	key := filepath.Clean(text)

	if platformIsWin32(env) {
		key = strings.ToLower(key)
	}

	return key
}

// splitPathElems flattens a path value into elements: sequences
// contribute their elements as they are, and strings split on the
// separator.
func splitPathElems(v Value, sep string) []Value {
	switch v.Kind {
	case KindInvalid:
		return nil

	case KindSeq:
		return append([]Value{}, v.Seq...)

	case KindScalar:
		parts := strings.Split(v.Scalar, sep)

		out := make([]Value, 0, len(parts))
		for _, p := range parts {
			out = append(out, NewScalar(p))
		}

		return out

	default:
		return []Value{v}
	}
}

// joinPathElems renders merged path elements back into the shape the
// entry had: a sequence when it was a sequence, a separator-joined
// string otherwise.
func joinPathElems(elems []Value, sep string, wasSeq bool) Value {
	if wasSeq {
		return NewSeq(elems...)
	}

	texts := make([]string, 0, len(elems))
	for _, v := range elems {
		texts = append(texts, v.String())
	}

	return NewScalar(strings.Join(texts, sep))
}

// containsString reports whether list holds s.
func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
