package env

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// flagVars are the construction variables ParseFlags distributes
// arguments into. Every key appears in the result, empty or not.
var flagVars = []string{
	"ASFLAGS",
	"CFLAGS",
	"CCFLAGS",
	"CXXFLAGS",
	"CPPDEFINES",
	"CPPFLAGS",
	"CPPPATH",
	"FRAMEWORKPATH",
	"FRAMEWORKS",
	"LIBPATH",
	"LIBS",
	"LINKFLAGS",
	"RPATH",
}

// ParseFlags distributes command-line flags into the construction
// variables a GNU-style toolchain would consume them from, such as the
// output of a {foo}-config script. Strings beginning with a bang are
// run as commands first and their output is parsed in their place.
//
// The classification covers the flags config scripts are known to
// emit. Unrecognized options land in CCFLAGS, which still reaches the
// preprocessor in the usual tool setups, so most preprocessor options
// need no entry of their own.
func (e *Base) ParseFlags(flags ...any) (map[string]Value, error) {
	return parseFlags(e, flags...)
}

func parseFlags(env Environment, flags ...any) (map[string]Value, error) {
	p := flagParser{
		env:     env,
		mapping: make(map[string][]Value, len(flagVars)),
	}

	for _, key := range flagVars {
		p.mapping[key] = nil
	}

	for _, arg := range flags {
		err := p.parse(Wrap(arg))
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string]Value, len(p.mapping))
	for key, elems := range p.mapping {
		out[key] = NewSeq(elems...)
	}

	return out, nil
}

type flagParser struct {
	env     Environment
	mapping map[string][]Value
}

func (p *flagParser) add(key string, elems ...Value) {
	p.mapping[key] = append(p.mapping[key], elems...)
}

// addDefine records a -D style definition, splitting NAME=VALUE into a
// definition pair.
func (p *flagParser) addDefine(name string) {
	parts := strings.SplitN(name, "=", 2)
	if len(parts) == 1 {
		p.add("CPPDEFINES", NewScalar(name))

		return
	}

	p.add("CPPDEFINES", NewPair(parts[0], NewScalar(parts[1])))
}

// parse classifies one argument, recursing into sequences.
func (p *flagParser) parse(arg Value) error {
	if arg.falsy() {
		return nil
	}

	if arg.Kind == KindSeq {
		for _, elem := range arg.Seq {
			err := p.parse(elem)
			if err != nil {
				return err
			}
		}

		return nil
	}

	if arg.Kind != KindScalar {
		return nil
	}

	text := arg.Scalar

	if strings.HasPrefix(text, "!") {
		output, err := p.env.Backtick(text[1:])
		if err != nil {
			return err
		}

		text = output
	}

	params, err := shellquote.Split(text)
	if err != nil {
		return WrapError(err)
	}

	p.classify(params)

	return nil
}

// classify walks tokenized flags and files each one under its
// construction variable. Multi-word options set pending so the next
// token completes them.
func (p *flagParser) classify(params []string) {
	pending := ""

	for _, arg := range params {
		if pending != "" {
			p.completePending(pending, arg)
			pending = ""

			continue
		}

		if arg == "" {
			continue
		}

		switch {
		case arg[0] != '-' && arg[0] != '+':
			p.add("LIBS", NewOpaque(p.env.Context().factory.File(arg)))

		case arg == "-dylib_file":
			p.add("LINKFLAGS", NewScalar(arg))

			pending = "LINKFLAGS"

		case strings.HasPrefix(arg, "-L"):
			if arg[2:] != "" {
				p.add("LIBPATH", NewScalar(arg[2:]))
			} else {
				pending = "LIBPATH"
			}

		case strings.HasPrefix(arg, "-l"):
			if arg[2:] != "" {
				p.add("LIBS", NewScalar(arg[2:]))
			} else {
				pending = "LIBS"
			}

		case strings.HasPrefix(arg, "-I"):
			if arg[2:] != "" {
				p.add("CPPPATH", NewScalar(arg[2:]))
			} else {
				pending = "CPPPATH"
			}

		case strings.HasPrefix(arg, "-Wa,"):
			p.add("ASFLAGS", NewScalar(arg[4:]))
			p.add("CCFLAGS", NewScalar(arg))

		case strings.HasPrefix(arg, "-Wl,"):
			switch {
			case strings.HasPrefix(arg, "-Wl,-rpath="):
				p.add("RPATH", NewScalar(arg[11:]))

			case strings.HasPrefix(arg, "-Wl,-R,"):
				p.add("RPATH", NewScalar(arg[7:]))

			case strings.HasPrefix(arg, "-Wl,-R"):
				p.add("RPATH", NewScalar(arg[6:]))

			default:
				p.add("LINKFLAGS", NewScalar(arg))
			}

		case strings.HasPrefix(arg, "-Wp,"):
			p.add("CPPFLAGS", NewScalar(arg))

		case strings.HasPrefix(arg, "-D"):
			if arg[2:] != "" {
				p.addDefine(arg[2:])
			} else {
				pending = "CPPDEFINES"
			}

		case arg == "-framework":
			pending = "FRAMEWORKS"

		case strings.HasPrefix(arg, "-frameworkdir="):
			p.add("FRAMEWORKPATH", NewScalar(arg[14:]))

		case strings.HasPrefix(arg, "-F"):
			if arg[2:] != "" {
				p.add("FRAMEWORKPATH", NewScalar(arg[2:]))
			} else {
				pending = "FRAMEWORKPATH"
			}

		case arg == "-mno-cygwin" ||
			arg == "-pthread" ||
			arg == "-openmp" ||
			arg == "-fmerge-all-constants" ||
			arg == "-fopenmp" ||
			strings.HasPrefix(arg, "-fsanitize"):
			p.add("CCFLAGS", NewScalar(arg))
			p.add("LINKFLAGS", NewScalar(arg))

		case arg == "-mwindows":
			p.add("LINKFLAGS", NewScalar(arg))

		case strings.HasPrefix(arg, "-std="):
			if strings.Contains(arg[5:], "++") {
				p.add("CXXFLAGS", NewScalar(arg))
			} else {
				p.add("CFLAGS", NewScalar(arg))
			}

		case arg[0] == '+':
			p.add("CCFLAGS", NewScalar(arg))
			p.add("LINKFLAGS", NewScalar(arg))

		case arg == "-include" || arg == "-imacros" ||
			arg == "-isysroot" || arg == "-isystem" ||
			arg == "-iquote" || arg == "-idirafter" ||
			arg == "-arch" || arg == "--param":
			pending = arg

		default:
			p.add("CCFLAGS", NewScalar(arg))
		}
	}
}

// completePending consumes the token following a multi-word option.
// Header-style options pair the option with a file node or the literal
// argument; -isysroot and -arch reach the linker as well.
func (p *flagParser) completePending(pending, arg string) {
	switch pending {
	case "CPPDEFINES":
		p.addDefine(arg)

	case "-include", "-imacros":
		p.add("CCFLAGS", NewPair(pending, NewOpaque(p.env.Context().factory.File(arg))))

	case "-isysroot", "-arch":
		t := NewPair(pending, NewScalar(arg))
		p.add("CCFLAGS", t)
		p.add("LINKFLAGS", t)

	case "-isystem", "-iquote", "-idirafter", "--param":
		p.add("CCFLAGS", NewPair(pending, NewScalar(arg)))

	default:
		p.add(pending, NewScalar(arg))
	}
}
