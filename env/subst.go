package env

import "strings"

// Expander performs construction variable expansion over text. The
// store itself never interprets values; environments delegate every
// expansion to the context's Expander so the substitution language
// stays pluggable.
type Expander interface {
	// Expand rewrites embedded variable references in text against the
	// given environment.
	Expand(e Environment, text string) (string, error)

	// ExpandOnce rewrites a value a single level deep, used when
	// override and clone variables are captured. The key names the
	// variable the value is destined for.
	ExpandOnce(e Environment, key string, value Value) (Value, error)
}

// identityExpander is the default Expander. It leaves text and values
// untouched, so references pass through verbatim until a substitution
// engine is plugged in.
type identityExpander struct{}

func (identityExpander) Expand(_ Environment, text string) (string, error) {
	return text, nil
}

func (identityExpander) ExpandOnce(_ Environment, _ string, value Value) (Value, error) {
	return value, nil
}

// Subst expands embedded variable references in the given text.
func (e *Base) Subst(text string) (string, error) {
	return e.ctx.expander.Expand(e, text)
}

// Split coerces a value into a list of expanded strings. Strings are
// expanded then split on whitespace, sequences expand element-wise,
// and any other value expands to a single-element list.
func (e *Base) Split(arg any) ([]string, error) {
	return split(e, arg)
}

func split(e Environment, arg any) ([]string, error) {
	expand := func(s string) (string, error) { return e.Subst(s) }

	switch v := Wrap(arg); v.Kind {
	case KindSeq:
		out := make([]string, 0, len(v.Seq))

		for _, elem := range v.Seq {
			s, err := expand(elem.String())
			if err != nil {
				return nil, err
			}

			out = append(out, s)
		}

		return out, nil

	case KindScalar:
		s, err := expand(v.Scalar)
		if err != nil {
			return nil, err
		}

		return strings.Fields(s), nil

	case KindInvalid:
		return nil, nil

	default:
		s, err := expand(v.String())
		if err != nil {
			return nil, err
		}

		return []string{s}, nil
	}
}
