package env

import "github.com/ardnew/benv/platform"

// config collects the settings accepted by New and Clone.
type config struct {
	ctx      *Context
	platform any
	tools    []string
	toolArgs Vars
	vars     Vars
	flags    []string
}

func defaultConfig() config {
	return config{ctx: DefaultContext()}
}

// Option applies a construction option to config.
type Option func(config) config

// applyOptions applies multiple options to a config.
func applyOptions(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithContext returns an option that sets the construction context.
// Clone ignores it; a derived environment keeps its parent's context.
func WithContext(ctx *Context) Option {
	return func(cfg config) config {
		if ctx != nil {
			cfg.ctx = ctx
		}

		return cfg
	}
}

// WithPlatform returns an option that selects the platform baseline by
// name. Unknown names fail New with [ErrUnknownPlatform]. Clone ignores
// it; a derived environment keeps its parent's platform variables.
func WithPlatform(name string) Option {
	return func(cfg config) config {
		cfg.platform = name

		return cfg
	}
}

// WithPlatformSpec returns an option that seeds the environment from an
// already resolved platform.
func WithPlatformSpec(spec platform.Spec) Option {
	return func(cfg config) config {
		cfg.platform = spec

		return cfg
	}
}

// WithTools returns an option that names the tools to apply. Without it
// New consults the TOOLS variable and falls back to the default tool,
// while Clone applies no additional tools.
func WithTools(names ...string) Option {
	return func(cfg config) config {
		cfg.tools = append(cfg.tools, names...)

		return cfg
	}
}

// WithToolArgs returns an option that passes keyword arguments through
// to each applied tool.
func WithToolArgs(kw Vars) Option {
	return func(cfg config) config {
		if cfg.toolArgs == nil {
			cfg.toolArgs = make(Vars, len(kw))
		}

		for name, value := range kw {
			cfg.toolArgs[name] = value
		}

		return cfg
	}
}

// WithVars returns an option that assigns construction variables. New
// applies them before tools and reasserts them after, so they win over
// tool defaults. Clone captures single-pass expansions of them against
// the parent before assignment.
func WithVars(kw Vars) Option {
	return func(cfg config) config {
		if cfg.vars == nil {
			cfg.vars = make(Vars, len(kw))
		}

		for name, value := range kw {
			cfg.vars[name] = value
		}

		return cfg
	}
}

// WithFlags returns an option that merges command-line style flags into
// the environment after all variables and tools are in place.
func WithFlags(args ...string) Option {
	return func(cfg config) config {
		cfg.flags = append(cfg.flags, args...)

		return cfg
	}
}
