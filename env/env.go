package env

// Vars is a bag of construction variable assignments keyed by name.
// Values take any native Go shape accepted by [Wrap].
type Vars map[string]any

// Item is a single construction variable and its value.
type Item struct {
	Key   string
	Value Value
}

// Method is a callable attached to an environment by name. The
// receiving environment is passed explicitly, so methods survive
// cloning without rebinding.
type Method func(e Environment, args ...any) (any, error)

// Environment is the layered construction variable store shared by
// [Base] and the read-through proxy returned by Override.
type Environment interface {
	// Context returns the construction context the environment was
	// created under.
	Context() *Context

	// Lookup returns the value of a construction variable.
	Lookup(name string) (Value, bool)

	// Get returns the value of a construction variable, or the invalid
	// value when the variable is not set.
	Get(name string) Value

	// Set assigns a construction variable, subject to the reserved
	// name policy and per-name validation.
	Set(name string, value any) error

	// Delete removes a construction variable.
	Delete(name string) error

	// Has reports whether a construction variable is set.
	Has(name string) bool

	// Keys returns all construction variable names in insertion order.
	Keys() []string

	// Values returns all construction variable values in insertion
	// order.
	Values() []Value

	// Items returns all construction variables in insertion order.
	Items() []Item

	// Dictionary returns a snapshot of the named construction
	// variables, or of the entire store when no names are given.
	Dictionary(names ...string) (map[string]Value, error)

	// Append merges each value onto the end of the named variable.
	Append(kw Vars) error

	// AppendUnique appends only elements not already present. When
	// deleteExisting is set, matching elements move to the end instead.
	AppendUnique(kw Vars, deleteExisting bool) error

	// Prepend merges each value onto the front of the named variable.
	Prepend(kw Vars) error

	// PrependUnique prepends only elements not already present. When
	// deleteExisting is set, matching elements move to the front
	// instead.
	PrependUnique(kw Vars, deleteExisting bool) error

	// Replace assigns all given variables, replacing prior values.
	Replace(kw Vars) error

	// SetDefault assigns only the variables that are not already set.
	SetDefault(kw Vars) error

	// MergeFlags classifies command-line flags and merges them into
	// the store. Strings are run through ParseFlags first.
	MergeFlags(args any, unique bool) error

	// ParseFlags classifies command-line flags into a bag of variable
	// assignments without touching the store.
	ParseFlags(args ...any) (map[string]Value, error)

	// Clone returns an independent copy of the environment with the
	// given options applied on top.
	Clone(opts ...Option) (*Base, error)

	// Override returns a proxy environment whose reads prefer the
	// given variables and whose writes land in the proxy layer.
	Override(overrides Vars) (Environment, error)

	// AddMethod attaches a named callable to the environment.
	AddMethod(name string, fn Method)

	// RemoveMethod detaches a named callable.
	RemoveMethod(name string)

	// CallMethod invokes an attached callable with this environment
	// as its receiver.
	CallMethod(name string, args ...any) (any, error)

	// InvokeBuilder runs a registered builder with this environment as
	// its receiver. One positional argument names the sources; two or
	// more are target then source. Vars arguments supply per-call
	// variable overrides.
	InvokeBuilder(name string, args ...any) ([]Node, error)

	// AddBuilder registers a builder under name, replacing any prior
	// registration.
	AddBuilder(name string, b Builder) error

	// RemoveBuilder deletes the builder registered under name.
	RemoveBuilder(name string) error

	// Decider selects how targets decide that dependencies changed,
	// by selector name or by custom function.
	Decider(value any) error

	// GetScanner returns the scanner registered for a suffix in the
	// SCANNERS variable.
	GetScanner(skey string) (Scanner, bool)

	// Dump serializes the named variables, or the entire store, in the
	// requested format.
	Dump(format string, names ...string) (string, error)

	// Subst expands embedded variable references in the given text.
	Subst(text string) (string, error)

	// Split coerces a value into a list of expanded strings.
	Split(arg any) ([]string, error)

	// Backtick runs a command and returns its standard output.
	Backtick(command string) (string, error)

	// WhereIs searches the execution environment's path for a program
	// and returns its full path.
	WhereIs(program string) string

	// Detect returns the name of the first program found on the
	// execution environment's path.
	Detect(progs ...string) string

	// AppendENVPath appends a directory to a path-valued entry of the
	// execution environment.
	AppendENVPath(name string, dir any, opts ...PathOption) error

	// PrependENVPath prepends a directory to a path-valued entry of
	// the execution environment.
	PrependENVPath(name string, dir any, opts ...PathOption) error

	// ParseDepends reads a Makefile-style dependency file and records
	// its edges through the node factory.
	ParseDepends(filename string, mustExist, onlyOne bool) error

	// ParseConfig runs a *-config style command and merges the flags
	// it prints.
	ParseConfig(command string, unique bool) error

	// Depends records an explicit dependency of target on dependency.
	Depends(target, dependency any) ([]Node, error)

	// SetCacheDir configures the derived-file cache location.
	SetCacheDir(path any) error

	// GetCacheDir resolves the configured derived-file cache.
	GetCacheDir() (CacheDir, error)
}
