package env

import (
	"log/slog"
	"regexp"
	"sync/atomic"

	"github.com/ardnew/benv/platform"
)

// Reserved construction variable names. The build graph owns their
// values, so assignments are dropped with a warning.
var reservedNames = map[string]bool{
	"CHANGED_SOURCES":   true,
	"CHANGED_TARGETS":   true,
	"SOURCE":            true,
	"SOURCES":           true,
	"TARGET":            true,
	"TARGETS":           true,
	"UNCHANGED_SOURCES": true,
	"UNCHANGED_TARGETS": true,
}

// futureReservedNames are scheduled to join reservedNames. Assignments
// still succeed but draw a warning. Platform seeding writes around the
// policy, so only explicit assignments are flagged.
var futureReservedNames = map[string]bool{
	"HOST_OS":   true,
	"HOST_ARCH": true,
	"HOST_CPU":  true,
}

// validName matches the construction variable names accepted for new
// keys.
var validName = regexp.MustCompile(`^[_a-zA-Z]\w*$`)

// Base is a construction environment: an ordered store of construction
// variables plus the policies that interpret them. Create one with
// [New] and derive variants with Clone and Override.
//
// A Base is safe for concurrent reads. Writes require external
// coordination, with the exception of the internal memo caches, which
// tolerate concurrent refresh.
type Base struct {
	ctx  *Context
	vars *Dict

	methods methodRegistry

	scanners atomic.Pointer[map[string]Scanner]

	cacheDir            atomic.Pointer[cacheDirMemo]
	cacheDirPath        string
	cacheDirImpl        CacheDir
	cacheTimestampNewer bool

	decideTarget DeciderFunc
	decideSource DeciderFunc
	srcSigType   string
	tgtSigType   string
}

// New creates a construction environment.
//
// The store is seeded in a fixed order: the context's defaults table,
// a builder registry when the table does not provide one, the resolved
// platform's baseline variables, backstops for the host and target
// identifiers, then the caller's variables. Tools apply next, after
// which the caller's variables are reasserted so they win over
// anything a tool set. Flags given with WithFlags merge last.
func New(opts ...Option) (*Base, error) {
	cfg := defaultConfig()
	cfg = applyOptions(cfg, opts...)

	e := &Base{
		ctx:          cfg.ctx,
		vars:         &Dict{},
		decideTarget: builtinDecider(DecideContent),
		decideSource: builtinDecider(DecideContent),
	}

	for _, name := range sortedKeys(e.ctx.defaults) {
		e.rawSet(name, Wrap(e.ctx.defaults[name]).Copy())
	}

	if e.registry() == nil {
		e.rawSet("BUILDERS", NewOpaque(newBuilderRegistry()))
	}

	spec, err := resolvePlatform(cfg.platform)
	if err != nil {
		return nil, err
	}

	e.rawSet("PLATFORM", NewScalar(spec.Name))

	seed := spec.Variables()
	for _, name := range sortedKeys(seed) {
		e.rawSet(name, Wrap(seed[name]))
	}

	// The host and target identifiers always resolve, even if only to
	// an empty value.
	for _, name := range []string{"HOST_OS", "HOST_ARCH", "HOST_CPU", "TARGET_OS", "TARGET_ARCH"} {
		if !e.Has(name) {
			e.rawSet(name, Value{})
		}
	}

	err = e.Replace(cfg.vars)
	if err != nil {
		return nil, err
	}

	// Hold on to the caller's values across tool application.
	saved := make(map[string]Value, len(cfg.vars))

	for name := range cfg.vars {
		if v, ok := e.vars.Get(name); ok {
			saved[name] = v.Copy()
		}
	}

	tools := cfg.tools
	if tools == nil {
		tools = toolsFromVar(e.Get("TOOLS"))
	}

	err = applyTools(e, tools, cfg.toolArgs)
	if err != nil {
		return nil, err
	}

	for _, name := range sortedKeys(saved) {
		e.rawSet(name, saved[name])
	}

	if len(cfg.flags) > 0 {
		err = e.MergeFlags(cfg.flags, true)
		if err != nil {
			return nil, err
		}
	}

	return e, nil
}

// toolsFromVar reads a tool name list from the TOOLS variable, falling
// back to the default tool.
func toolsFromVar(v Value) []string {
	var names []string

	for _, elem := range seqOf(v) {
		if elem.Kind == KindScalar && elem.Scalar != "" {
			names = append(names, elem.Scalar)
		}
	}

	if len(names) == 0 {
		names = []string{DefaultToolName}
	}

	return names
}

func resolvePlatform(requested any) (platform.Spec, error) {
	switch t := requested.(type) {
	case nil:
		return platform.Host(), nil

	case platform.Spec:
		return t, nil

	case string:
		if t == "" {
			return platform.Host(), nil
		}

		spec, ok := platform.ByName(t)
		if !ok {
			return platform.Spec{}, ErrUnknownPlatform.With(
				slog.String("platform", t),
				slog.Any("suggest", platform.Suggest(t)),
			)
		}

		return spec, nil

	default:
		return platform.Spec{}, ErrUnknownPlatform.With(slog.Any("platform", requested))
	}
}

// Context returns the construction context the environment was created
// under.
func (e *Base) Context() *Context { return e.ctx }

// rawSet stores a value without the reserved-name policy or new-key
// validation. Internal seeding and post-tool reassertion write through
// here. BUILDERS keeps its registry shape and SCANNERS still drops the
// scanner memo.
func (e *Base) rawSet(name string, v Value) {
	if name == "BUILDERS" {
		if reg, err := coerceBuilders(v); err == nil {
			e.vars.Set(name, NewOpaque(reg))

			return
		}
	}

	e.vars.Set(name, v)

	if name == "SCANNERS" {
		e.scannerMapDelete()
	}
}

// registry returns the live builder registry behind BUILDERS.
func (e *Base) registry() *builderRegistry {
	v, ok := e.vars.Get("BUILDERS")
	if !ok || v.Kind != KindOpaque {
		return nil
	}

	reg, _ := v.Opaque.(*builderRegistry)

	return reg
}

// Lookup returns the value of a construction variable. Reads of the
// BUILDERS variable observe an ordered mapping view of the registry.
func (e *Base) Lookup(name string) (Value, bool) {
	v, ok := e.vars.Get(name)
	if !ok {
		return Value{}, false
	}

	if name == "BUILDERS" {
		if reg, isReg := v.Opaque.(*builderRegistry); isReg {
			return reg.view(), true
		}
	}

	return v, true
}

// Get returns the value of a construction variable, or the invalid
// value when the variable is not set.
func (e *Base) Get(name string) Value {
	v, _ := e.Lookup(name)

	return v
}

// Has reports whether a construction variable is set.
func (e *Base) Has(name string) bool {
	_, ok := e.vars.Get(name)

	return ok
}

// Set assigns a construction variable.
//
// Reserved names are dropped with a warning. Names scheduled to become
// reserved warn but assign. Assignments to BUILDERS validate that every
// entry implements Builder, and assignments to SCANNERS invalidate the
// scanner map. New names must be legal identifiers.
func (e *Base) Set(name string, value any) error {
	switch {
	case reservedNames[name]:
		e.ctx.warn(WarnReservedVariable,
			"ignoring attempt to set reserved variable",
			slog.String("name", name),
		)

		return nil

	case futureReservedNames[name]:
		e.ctx.warn(WarnFutureReservedVariable,
			"setting a variable scheduled to become reserved",
			slog.String("name", name),
		)
	}

	switch name {
	case "BUILDERS":
		reg, err := coerceBuilders(value)
		if err != nil {
			return err
		}

		e.vars.Set(name, NewOpaque(reg))

		return nil

	case "SCANNERS":
		e.vars.Set(name, Wrap(value).Copy())
		e.scannerMapDelete()

		return nil
	}

	if _, ok := e.vars.Get(name); !ok {
		if !validName.MatchString(name) {
			return ErrIllegalVariable.With(slog.String("name", name))
		}
	}

	e.vars.Set(name, Wrap(value).Copy())

	return nil
}

// Delete removes a construction variable. Removing SCANNERS drops the
// scanner memo along with the variable.
func (e *Base) Delete(name string) error {
	if _, ok := e.vars.Get(name); !ok {
		return ErrKeyNotFound.With(slog.String("name", name))
	}

	e.vars.Del(name)

	if name == "SCANNERS" {
		e.scannerMapDelete()
	}

	return nil
}

// Keys returns all construction variable names in insertion order.
func (e *Base) Keys() []string { return e.vars.Keys() }

// Values returns all construction variable values in insertion order.
func (e *Base) Values() []Value {
	keys := e.vars.Keys()
	vals := make([]Value, 0, len(keys))

	for _, name := range keys {
		v, _ := e.Lookup(name)
		vals = append(vals, v)
	}

	return vals
}

// Items returns all construction variables in insertion order.
func (e *Base) Items() []Item {
	keys := e.vars.Keys()
	items := make([]Item, 0, len(keys))

	for _, name := range keys {
		v, _ := e.Lookup(name)
		items = append(items, Item{Key: name, Value: v})
	}

	return items
}

// Dictionary returns a snapshot of the named construction variables,
// or of the entire store when no names are given. Unknown names fail
// the whole call.
func (e *Base) Dictionary(names ...string) (map[string]Value, error) {
	if len(names) == 0 {
		names = e.vars.Keys()
	}

	out := make(map[string]Value, len(names))

	for _, name := range names {
		v, ok := e.Lookup(name)
		if !ok {
			return nil, ErrKeyNotFound.With(slog.String("name", name))
		}

		out[name] = v
	}

	return out, nil
}

// Replace assigns all given variables, replacing prior values. Names
// are applied in sorted order so repeated runs build identical stores.
func (e *Base) Replace(kw Vars) error {
	for _, name := range sortedKeys(kw) {
		err := e.Set(name, kw[name])
		if err != nil {
			return err
		}
	}

	return nil
}

// SetDefault assigns only the variables that are not already set.
func (e *Base) SetDefault(kw Vars) error {
	missing := make(Vars, len(kw))

	for name, value := range kw {
		if !e.Has(name) {
			missing[name] = value
		}
	}

	return e.Replace(missing)
}

// InvokeBuilder runs a registered builder with this environment as its
// receiver. A single positional argument names the sources with no
// explicit target; two or more arguments are target then source, with
// any remainder passed through to the builder. Vars arguments supply
// per-call variable overrides and become an override layer for the
// invocation, mirroring how builders see per-invocation variables.
func (e *Base) InvokeBuilder(name string, args ...any) ([]Node, error) {
	return invokeBuilder(e, e, name, args)
}

func invokeBuilder(owner *Base, receiver Environment, name string, args []any) ([]Node, error) {
	b, ok := owner.registry().get(name)
	if !ok {
		return nil, ErrUnknownBuilder.With(
			slog.String("builder", name),
			slog.Any("suggest", suggestNames(name, owner.registry().order())),
		)
	}

	target, source, rest, kw := builderArgs(args)

	warnMisleading(owner.ctx, kw)

	callEnv := receiver

	if len(kw) > 0 {
		var err error

		callEnv, err = receiver.Override(kw)
		if err != nil {
			return nil, err
		}
	}

	return b.Build(callEnv, target, source, kw, rest...)
}

// AddBuilder registers a builder under name, replacing any prior
// registration. The builder becomes visible through InvokeBuilder and
// the BUILDERS view immediately.
func (e *Base) AddBuilder(name string, b Builder) error {
	if b == nil {
		return ErrNotABuilder.With(slog.String("name", name))
	}

	reg := e.registry()
	if reg == nil {
		reg = newBuilderRegistry()
		e.vars.Set("BUILDERS", NewOpaque(reg))
	}

	reg.set(name, b)

	return nil
}

// RemoveBuilder deletes the builder registered under name.
func (e *Base) RemoveBuilder(name string) error {
	if !e.registry().delete(name) {
		return ErrKeyNotFound.With(slog.String("builder", name))
	}

	return nil
}

// warnMisleading flags builder keywords that look like typos for the
// reserved node list variables.
func warnMisleading(ctx *Context, kw Vars) {
	for _, k := range []string{"targets", "sources"} {
		if _, ok := kw[k]; ok {
			ctx.warn(WarnMisleadingKeywords,
				"keyword shadows a reserved node list",
				slog.String("keyword", k),
			)
		}
	}
}
