package platform

import (
	_ "embed"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Spec describes a target platform: a name plus the baseline
// construction variables it seeds into a fresh environment.
type Spec struct {
	// Name identifies the platform, e.g. "posix" or "win32".
	Name string

	path []string
	env  map[string]string
	vars map[string]any
}

// String returns the platform name.
func (s Spec) String() string { return s.Name }

// Path returns the default executable search path, joined with the
// host's path list separator.
func (s Spec) Path() string { return s.env["PATH"] }

// Environ returns a copy of the execution environment seed, including
// the composed PATH.
func (s Spec) Environ() map[string]string {
	env := make(map[string]string, len(s.env))
	for k, v := range s.env {
		env[k] = v
	}

	return env
}

// Variables returns a freshly allocated copy of the platform's baseline
// construction variables. The execution environment seed is included
// under the ENV key.
func (s Spec) Variables() map[string]any {
	out := make(map[string]any, len(s.vars)+1)

	for k, v := range s.vars {
		out[k] = copyVar(v)
	}

	out["ENV"] = s.Environ()

	return out
}

func copyVar(v any) any {
	switch t := v.(type) {
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = copyVar(e)
		}

		return c
	case []string:
		c := make([]string, len(t))
		copy(c, t)

		return c
	default:
		return v
	}
}

// record is the on-disk shape of a defaults.yaml platform entry.
type record struct {
	Inherit      string            `yaml:"inherit"`
	Path         []string          `yaml:"path"`
	PathOptional []string          `yaml:"path-optional"`
	ImportEnv    []string          `yaml:"import-env"`
	Env          map[string]string `yaml:"env"`
	Vars         map[string]any    `yaml:"vars"`
}

// refinements adjusts each platform's static table with details that
// can only be determined on the running host.
var refinements = map[string]func(*Spec){
	"posix":  refinePosix,
	"darwin": refineDarwin,
	"cygwin": refineCygwin,
	"win32":  refineWin32,
}

var (
	loadOnce sync.Once
	registry map[string]Spec
)

func load() map[string]Spec {
	loadOnce.Do(func() {
		var records map[string]record

		err := yaml.Unmarshal(defaultsYAML, &records)
		if err != nil {
			panic("platform: invalid defaults table: " + err.Error())
		}

		registry = make(map[string]Spec, len(records))

		for name := range records {
			registry[name] = resolve(name, records, nil)
		}
	})

	return registry
}

// resolve builds the Spec for name, folding in inherited entries first.
// The chain guards against inheritance cycles in the defaults table.
func resolve(name string, records map[string]record, chain []string) Spec {
	rec := records[name]

	s := Spec{
		Name: name,
		env:  map[string]string{},
		vars: map[string]any{},
	}

	for _, seen := range chain {
		if seen == name {
			panic("platform: inheritance cycle through " + name)
		}
	}

	if rec.Inherit != "" {
		if _, ok := records[rec.Inherit]; ok {
			base := resolve(rec.Inherit, records, append(chain, name))
			s.path = append(s.path, base.path...)

			for k, v := range base.env {
				s.env[k] = v
			}

			for k, v := range base.vars {
				s.vars[k] = v
			}
		}
	}

	if len(rec.Path) > 0 {
		s.path = append([]string{}, rec.Path...)
	}

	for _, dir := range rec.PathOptional {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.path = append(s.path, dir)
		}
	}

	for _, key := range rec.ImportEnv {
		if val, ok := os.LookupEnv(key); ok {
			s.env[key] = val
		}
	}

	for k, v := range rec.Env {
		s.env[k] = v
	}

	for k, v := range rec.Vars {
		s.vars[k] = v
	}

	if refine, ok := refinements[name]; ok {
		refine(&s)
	}

	s.env["PATH"] = joinPath(s.path)

	return s
}

// joinPath composes a PATH-like string from the given entries using
// the host's path list separator.
func joinPath(items []string) string {
	if len(items) == 0 {
		return ""
	}

	return mung.Make(
		mung.WithSubjectItems(items...),
		mung.WithDelim(string(os.PathListSeparator)),
	).String()
}

// Host returns the platform matching the running host.
func Host() Spec {
	switch runtime.GOOS {
	case "windows":
		return mustByName("win32")
	case "darwin":
		return mustByName("darwin")
	default:
		return mustByName("posix")
	}
}

func mustByName(name string) Spec {
	s, ok := ByName(name)
	if !ok {
		panic("platform: missing defaults entry for " + name)
	}

	return s
}

// ByName returns the platform registered under name. Lookup is
// case-insensitive.
func ByName(name string) (Spec, bool) {
	s, ok := load()[strings.ToLower(name)]

	return s, ok
}

// Names returns the registered platform names in sorted order.
func Names() []string {
	reg := load()

	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// maxSuggestions bounds how many near-miss names Suggest returns.
const maxSuggestions = 3

// Suggest returns the registered platform names that most closely
// match the given name, best match first.
func Suggest(name string) []string {
	matches := fuzzy.Find(name, Names())

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}

	return out
}
