package env

import "log/slog"

// Override returns a proxy environment whose reads prefer the given
// variables and whose writes land in the proxy layer, leaving this
// environment untouched.
//
// Building the proxy is far cheaper than Clone: nothing is copied, the
// proxy just consults its own layer before the environment it wraps.
// Reserved names are dropped with a warning, and when nothing remains
// to override, the environment itself is returned. Values expand one
// level against the wrapped environment as they are captured. The
// special key parse_flags is not stored; its value merges into the
// proxy the way MergeFlags would.
func (e *Base) Override(overrides Vars) (Environment, error) {
	return newOverride(e, e, overrides)
}

// overrideEnvironment layers a variable store over a subject
// environment. The subject may itself be an override, nesting
// arbitrarily; root is the Base at the bottom of the chain, which owns
// everything that is not a construction variable: attached methods,
// builders, scanners, deciders, and the cache directory.
type overrideEnvironment struct {
	subject   Environment
	overrides *Dict
	root      *Base
}

func newOverride(subject Environment, root *Base, kw Vars) (Environment, error) {
	if len(kw) == 0 {
		return subject, nil
	}

	kept := make(Vars, len(kw))

	for name, value := range kw {
		if reservedNames[name] {
			root.ctx.warn(WarnReservedVariable,
				"ignoring attempt to override reserved variable",
				slog.String("name", name),
			)

			continue
		}

		kept[name] = value
	}

	if len(kept) == 0 {
		return subject, nil
	}

	o := &overrideEnvironment{
		subject:   subject,
		overrides: &Dict{},
		root:      root,
	}

	var merges any

	for _, name := range sortedKeys(kept) {
		if name == "parse_flags" {
			merges = kept[name]

			continue
		}

		expanded, err := root.ctx.expander.ExpandOnce(subject, name, Wrap(kept[name]))
		if err != nil {
			return nil, err
		}

		err = o.Set(name, expanded)
		if err != nil {
			return nil, err
		}
	}

	if merges != nil {
		err := o.MergeFlags(merges, true)
		if err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Context returns the construction context of the chain's root.
func (o *overrideEnvironment) Context() *Context { return o.root.ctx }

// Lookup returns the value of a construction variable, preferring the
// override layer over the wrapped environment.
func (o *overrideEnvironment) Lookup(name string) (Value, bool) {
	v, ok := o.overrides.Get(name)
	if !ok {
		return o.subject.Lookup(name)
	}

	if name == "BUILDERS" {
		if reg, isReg := v.Opaque.(*builderRegistry); isReg {
			return reg.view(), true
		}
	}

	return v, true
}

// Get returns the value of a construction variable, or the invalid
// value when the variable is not set in the layer or below.
func (o *overrideEnvironment) Get(name string) Value {
	v, _ := o.Lookup(name)

	return v
}

// Set assigns a construction variable in the override layer. The
// wrapped environment never observes the assignment. The reserved name
// policy applies the same way it does on a Base, and every name is
// validated because the layer accepts keys the subject has never seen.
func (o *overrideEnvironment) Set(name string, value any) error {
	switch {
	case reservedNames[name]:
		o.root.ctx.warn(WarnReservedVariable,
			"ignoring attempt to set reserved variable",
			slog.String("name", name),
		)

		return nil

	case futureReservedNames[name]:
		o.root.ctx.warn(WarnFutureReservedVariable,
			"setting a variable scheduled to become reserved",
			slog.String("name", name),
		)
	}

	if !validName.MatchString(name) {
		return ErrIllegalVariable.With(slog.String("name", name))
	}

	if name == "BUILDERS" {
		reg, err := coerceBuilders(value)
		if err != nil {
			return err
		}

		o.overrides.Set(name, NewOpaque(reg))

		return nil
	}

	o.overrides.Set(name, Wrap(value).Copy())

	return nil
}

// Delete removes a construction variable from the override layer. A
// name that is only set in the wrapped environment is out of reach and
// reports ErrKeyNotFound.
func (o *overrideEnvironment) Delete(name string) error {
	if _, ok := o.overrides.Get(name); !ok {
		return ErrKeyNotFound.With(slog.String("name", name))
	}

	o.overrides.Del(name)

	return nil
}

// Has reports whether a construction variable is set in the layer or
// the wrapped environment.
func (o *overrideEnvironment) Has(name string) bool {
	if _, ok := o.overrides.Get(name); ok {
		return true
	}

	return o.subject.Has(name)
}

// Keys returns the wrapped environment's names in their order followed
// by the names only the layer holds.
func (o *overrideEnvironment) Keys() []string {
	keys := o.subject.Keys()

	for _, name := range o.overrides.Keys() {
		if !o.subject.Has(name) {
			keys = append(keys, name)
		}
	}

	return keys
}

// Values returns the values visible through the layer, in Keys order.
func (o *overrideEnvironment) Values() []Value {
	keys := o.Keys()
	vals := make([]Value, 0, len(keys))

	for _, name := range keys {
		v, _ := o.Lookup(name)
		vals = append(vals, v)
	}

	return vals
}

// Items returns all construction variables visible through the layer.
func (o *overrideEnvironment) Items() []Item {
	keys := o.Keys()
	items := make([]Item, 0, len(keys))

	for _, name := range keys {
		v, _ := o.Lookup(name)
		items = append(items, Item{Key: name, Value: v})
	}

	return items
}

// Dictionary returns a snapshot of the named construction variables as
// seen through the layer, or of everything visible when no names are
// given.
func (o *overrideEnvironment) Dictionary(names ...string) (map[string]Value, error) {
	if len(names) == 0 {
		names = o.Keys()
	}

	out := make(map[string]Value, len(names))

	for _, name := range names {
		v, ok := o.Lookup(name)
		if !ok {
			return nil, ErrKeyNotFound.With(slog.String("name", name))
		}

		out[name] = v
	}

	return out, nil
}

func (o *overrideEnvironment) Append(kw Vars) error  { return appendVars(o, kw) }
func (o *overrideEnvironment) Prepend(kw Vars) error { return prependVars(o, kw) }

func (o *overrideEnvironment) AppendUnique(kw Vars, deleteExisting bool) error {
	return appendUniqueVars(o, kw, deleteExisting)
}

func (o *overrideEnvironment) PrependUnique(kw Vars, deleteExisting bool) error {
	return prependUniqueVars(o, kw, deleteExisting)
}

// Replace assigns all given variables into the override layer.
func (o *overrideEnvironment) Replace(kw Vars) error {
	for _, name := range sortedKeys(kw) {
		err := o.Set(name, kw[name])
		if err != nil {
			return err
		}
	}

	return nil
}

// SetDefault assigns only the variables not visible through the layer.
func (o *overrideEnvironment) SetDefault(kw Vars) error {
	missing := make(Vars, len(kw))

	for name, value := range kw {
		if !o.Has(name) {
			missing[name] = value
		}
	}

	return o.Replace(missing)
}

func (o *overrideEnvironment) MergeFlags(args any, unique bool) error {
	return mergeFlags(o, args, unique)
}

func (o *overrideEnvironment) ParseFlags(args ...any) (map[string]Value, error) {
	return parseFlags(o, args...)
}

// Clone copies the wrapped environment. The override layer is not
// carried into the copy.
func (o *overrideEnvironment) Clone(opts ...Option) (*Base, error) {
	return o.subject.Clone(opts...)
}

// Override layers further variables over this proxy.
func (o *overrideEnvironment) Override(overrides Vars) (Environment, error) {
	return newOverride(o, o.root, overrides)
}

// AddMethod attaches a named callable to the chain's root, so it stays
// available after the proxy is discarded.
func (o *overrideEnvironment) AddMethod(name string, fn Method) {
	o.root.AddMethod(name, fn)
}

// RemoveMethod detaches a named callable from the chain's root.
func (o *overrideEnvironment) RemoveMethod(name string) {
	o.root.RemoveMethod(name)
}

// CallMethod invokes a callable attached to the chain's root with this
// proxy as its receiver, so the method reads overridden values.
func (o *overrideEnvironment) CallMethod(name string, args ...any) (any, error) {
	return callMethod(o.root, o, name, args...)
}

// InvokeBuilder runs a builder registered at the chain's root with
// this proxy as its receiver.
func (o *overrideEnvironment) InvokeBuilder(name string, args ...any) ([]Node, error) {
	return invokeBuilder(o.root, o, name, args)
}

// AddBuilder registers a builder at the chain's root.
func (o *overrideEnvironment) AddBuilder(name string, b Builder) error {
	return o.root.AddBuilder(name, b)
}

// RemoveBuilder deletes a builder registered at the chain's root.
func (o *overrideEnvironment) RemoveBuilder(name string) error {
	return o.root.RemoveBuilder(name)
}

// Decider selects the change policy on the chain's root, which owns
// dependency decisions for every environment layered over it.
func (o *overrideEnvironment) Decider(value any) error {
	return o.root.Decider(value)
}

// GetScanner resolves a suffix against the root's SCANNERS variable. A
// SCANNERS value in the override layer is visible to reads but does
// not take part in scanner resolution.
func (o *overrideEnvironment) GetScanner(skey string) (Scanner, bool) {
	return o.root.GetScanner(skey)
}

func (o *overrideEnvironment) Dump(format string, names ...string) (string, error) {
	return dump(o, format, names...)
}

// Subst expands embedded variable references against the layered view.
func (o *overrideEnvironment) Subst(text string) (string, error) {
	return o.root.ctx.expander.Expand(o, text)
}

func (o *overrideEnvironment) Split(arg any) ([]string, error) {
	return split(o, arg)
}

func (o *overrideEnvironment) Backtick(command string) (string, error) {
	return backtick(o, command)
}

func (o *overrideEnvironment) WhereIs(program string) string {
	return whereIs(o, program)
}

func (o *overrideEnvironment) Detect(progs ...string) string {
	return detect(o, progs...)
}

func (o *overrideEnvironment) AppendENVPath(name string, dir any, opts ...PathOption) error {
	return appendENVPath(o, name, dir, opts...)
}

func (o *overrideEnvironment) PrependENVPath(name string, dir any, opts ...PathOption) error {
	return prependENVPath(o, name, dir, opts...)
}

func (o *overrideEnvironment) ParseDepends(filename string, mustExist, onlyOne bool) error {
	return parseDepends(o, filename, mustExist, onlyOne)
}

func (o *overrideEnvironment) ParseConfig(command string, unique bool) error {
	return parseConfig(o, command, unique)
}

func (o *overrideEnvironment) Depends(target, dependency any) ([]Node, error) {
	return depends(o, target, dependency)
}

// SetCacheDir configures the derived-file cache on the chain's root.
func (o *overrideEnvironment) SetCacheDir(path any) error {
	return o.root.SetCacheDir(path)
}

// GetCacheDir resolves the derived-file cache of the chain's root.
func (o *overrideEnvironment) GetCacheDir() (CacheDir, error) {
	return o.root.GetCacheDir()
}
