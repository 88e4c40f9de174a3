package env

import (
	"os"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/benv/log"
)

// Context carries the construction-wide collaborators an environment
// needs: the logger, the expansion engine, the node factory, the tool
// registry, and warning controls. A single Context is typically shared
// by every environment in a build.
type Context struct {
	log          log.Logger
	expander     Expander
	factory      NodeFactory
	cacheDirFunc CacheDirFunc
	defaults     Vars
	tools        map[string]Tool
	toolsMu      sync.RWMutex
	warnings     warnState
}

// ContextOption configures a Context under construction.
type ContextOption func(*Context)

// NewContext creates a construction context. By default it logs
// warnings and errors as plain text on standard error, expands nothing,
// creates [PathNode] file handles, seeds new environments from the
// embedded defaults table, and knows only the default tool.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		log: log.Make(os.Stderr,
			log.WithFormat(log.FormatText),
			log.WithPretty(false),
			log.WithLevel(log.LevelWarn),
		),
		expander:     identityExpander{},
		factory:      &PathFactory{},
		cacheDirFunc: defaultCacheDirFunc,
		defaults:     baselineVars(),
		tools: map[string]Tool{
			DefaultToolName: ToolFunc(func(Environment, Vars) error { return nil }),
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

var (
	defaultCtxMu sync.Mutex
	defaultCtx   *Context
)

// DefaultContext returns the shared context used when New is not given
// one explicitly. The context is created on first use and reused until
// [ResetDefaultContext] discards it.
func DefaultContext() *Context {
	defaultCtxMu.Lock()
	defer defaultCtxMu.Unlock()

	if defaultCtx == nil {
		defaultCtx = NewContext()
	}

	return defaultCtx
}

// ResetDefaultContext discards the shared context, dropping its
// registered tools, interned nodes, and issued-warning state. The next
// call to [DefaultContext] builds a fresh one. Environments created
// under the old context keep using it.
func ResetDefaultContext() {
	defaultCtxMu.Lock()
	defer defaultCtxMu.Unlock()

	defaultCtx = nil
}

// WithLogger returns an option that sets the context logger.
func WithLogger(l log.Logger) ContextOption {
	return func(c *Context) { c.log = l }
}

// WithExpander returns an option that sets the variable expansion
// engine used by Subst, Split, clone captures, and override captures.
func WithExpander(x Expander) ContextOption {
	return func(c *Context) {
		if x != nil {
			c.expander = x
		}
	}
}

// WithNodeFactory returns an option that sets the node factory handed
// to builders, flag classification, and dependency parsing.
func WithNodeFactory(f NodeFactory) ContextOption {
	return func(c *Context) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithCacheDirFunc returns an option that sets the factory used to
// resolve derived-file cache directories.
func WithCacheDirFunc(f CacheDirFunc) ContextOption {
	return func(c *Context) {
		if f != nil {
			c.cacheDirFunc = f
		}
	}
}

// WithDefaults returns an option that lays entries over the table new
// environments are seeded from.
func WithDefaults(kw Vars) ContextOption {
	return func(c *Context) {
		for name, value := range kw {
			c.defaults[name] = value
		}
	}
}

// WithTool returns an option that registers a tool under name.
func WithTool(name string, tool Tool) ContextOption {
	return func(c *Context) { c.RegisterTool(name, tool) }
}

// Logger returns the context logger.
func (c *Context) Logger() log.Logger { return c.log }

// Expander returns the variable expansion engine.
func (c *Context) Expander() Expander { return c.expander }

// NodeFactory returns the node factory.
func (c *Context) NodeFactory() NodeFactory { return c.factory }

// Defaults returns a copy of the table new environments are seeded
// from.
func (c *Context) Defaults() Vars {
	out := make(Vars, len(c.defaults))
	for name, value := range c.defaults {
		out[name] = value
	}

	return out
}

// RegisterTool adds a tool under name, replacing any prior
// registration.
func (c *Context) RegisterTool(name string, tool Tool) {
	c.toolsMu.Lock()
	defer c.toolsMu.Unlock()

	if c.tools == nil {
		c.tools = make(map[string]Tool)
	}

	c.tools[name] = tool
}

// Tool returns the tool registered under name.
func (c *Context) Tool(name string) (Tool, bool) {
	c.toolsMu.RLock()
	defer c.toolsMu.RUnlock()

	tool, ok := c.tools[name]

	return tool, ok
}

// ToolNames returns the registered tool names in sorted order.
func (c *Context) ToolNames() []string {
	c.toolsMu.RLock()
	defer c.toolsMu.RUnlock()

	return sortedKeys(c.tools)
}

// SuggestTool returns near-miss tool names for error reporting.
func (c *Context) SuggestTool(name string) []string {
	return suggestNames(name, c.ToolNames())
}

// maxSuggestions bounds how many near-miss names suggestNames returns.
const maxSuggestions = 3

// suggestNames returns the candidates that most closely match name,
// best match first. Used to attach did-you-mean hints to lookup errors.
func suggestNames(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}

	return out
}
