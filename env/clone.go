package env

// Clone returns a copy of the environment with its own variable store.
// Mutating either copy never disturbs the other: variables deep-copy,
// the builder registry is rebuilt, and attached methods copy into the
// clone's own registry.
//
// Options apply to the copy the way they apply in New, except that the
// context and platform carry over from the original. Variable values
// given here expand one level against the original before they land in
// the clone, tool names apply on top of the copied store, and flags
// merge last.
func (e *Base) Clone(opts ...Option) (*Base, error) {
	cfg := applyOptions(config{}, opts...)

	clone := &Base{
		ctx:                 e.ctx,
		vars:                &Dict{},
		methods:             e.methods.clone(),
		cacheDirPath:        e.cacheDirPath,
		cacheDirImpl:        e.cacheDirImpl,
		cacheTimestampNewer: e.cacheTimestampNewer,
		decideTarget:        e.decideTarget,
		decideSource:        e.decideSource,
		srcSigType:          e.srcSigType,
		tgtSigType:          e.tgtSigType,
	}

	for _, name := range e.vars.Keys() {
		v, _ := e.vars.Get(name)

		if name == "BUILDERS" {
			if reg, ok := v.Opaque.(*builderRegistry); ok {
				clone.vars.Set(name, NewOpaque(reg.clone()))

				continue
			}
		}

		clone.vars.Set(name, v.Copy())
	}

	// Caller variables expand once against the original, so references
	// to its values are captured before the clone diverges.
	captured := make(Vars, len(cfg.vars))

	for name, value := range cfg.vars {
		expanded, err := e.ctx.expander.ExpandOnce(e, name, Wrap(value))
		if err != nil {
			return nil, err
		}

		captured[name] = expanded
	}

	err := clone.Replace(captured)
	if err != nil {
		return nil, err
	}

	if len(cfg.tools) > 0 {
		err = applyTools(clone, cfg.tools, cfg.toolArgs)
		if err != nil {
			return nil, err
		}

		// Reassert the caller's variables over anything a tool set.
		err = clone.Replace(captured)
		if err != nil {
			return nil, err
		}
	}

	if len(cfg.flags) > 0 {
		err = clone.MergeFlags(cfg.flags, true)
		if err != nil {
			return nil, err
		}
	}

	return clone, nil
}
