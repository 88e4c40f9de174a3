package env

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Dump serializes the named construction variables, or the entire
// store when no names are given.
//
// Format pretty renders one NAME: value line per variable with quoted
// strings, parenthesized pairs, and bracketed sequences. Format json
// renders a JSON object; values with no JSON shape, such as builder
// registries, serialize as their type name. Unknown names fail with
// ErrKeyNotFound and unknown formats with ErrDumpFormat.
func (e *Base) Dump(format string, names ...string) (string, error) {
	return dump(e, format, names...)
}

func dump(env Environment, format string, names ...string) (string, error) {
	cvars, err := env.Dictionary(names...)
	if err != nil {
		return "", err
	}

	keys := sortedKeys(cvars)

	switch strings.ToLower(format) {
	case "pretty":
		var b strings.Builder

		for _, name := range keys {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(reprValue(cvars[name]))
			b.WriteByte('\n')
		}

		return b.String(), nil

	case "json":
		m := make(map[string]any, len(cvars))
		for name, v := range cvars {
			m[name] = jsonValue(v)
		}

		out, err := json.MarshalIndent(m, "", "    ")
		if err != nil {
			return "", WrapError(err)
		}

		return string(out), nil

	default:
		return "", ErrDumpFormat.With(slog.String("format", format))
	}
}

// reprValue renders a value for the pretty dump format.
func reprValue(v Value) string {
	switch v.Kind {
	case KindInvalid:
		return "nil"

	case KindScalar:
		return strconv.Quote(v.Scalar)

	case KindSeq:
		parts := make([]string, 0, len(v.Seq))
		for _, elem := range v.Seq {
			parts = append(parts, reprValue(elem))
		}

		return "[" + strings.Join(parts, ", ") + "]"

	case KindPair:
		if v.Arg != nil && v.Arg.IsValid() {
			return "(" + v.Name + ", " + reprValue(*v.Arg) + ")"
		}

		return "(" + v.Name + ")"

	case KindMap:
		parts := make([]string, 0, v.Dict.Len())

		for _, name := range v.Dict.Keys() {
			entry, _ := v.Dict.Get(name)
			parts = append(parts, name+": "+reprValue(entry))
		}

		return "{" + strings.Join(parts, ", ") + "}"

	default:
		return "<" + fmt.Sprintf("%T", v.Opaque) + ">"
	}
}

// jsonValue converts a value to a JSON-encodable shape. Pairs become
// one- or two-element arrays and opaque values their type name.
func jsonValue(v Value) any {
	switch v.Kind {
	case KindInvalid:
		return nil

	case KindScalar:
		return v.Scalar

	case KindSeq:
		out := make([]any, 0, len(v.Seq))
		for _, elem := range v.Seq {
			out = append(out, jsonValue(elem))
		}

		return out

	case KindPair:
		if v.Arg != nil && v.Arg.IsValid() {
			return []any{v.Name, jsonValue(*v.Arg)}
		}

		return []any{v.Name}

	case KindMap:
		out := make(map[string]any, v.Dict.Len())

		for _, name := range v.Dict.Keys() {
			entry, _ := v.Dict.Get(name)
			out[name] = jsonValue(entry)
		}

		return out

	default:
		return fmt.Sprintf("%T", v.Opaque)
	}
}
