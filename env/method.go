package env

import "log/slog"

// methodRegistry holds the callables attached to an environment by
// AddMethod. Methods receive their environment explicitly, so a copied
// registry needs no rebinding.
type methodRegistry struct {
	methods map[string]Method
}

func (r *methodRegistry) add(name string, fn Method) {
	if r.methods == nil {
		r.methods = make(map[string]Method)
	}

	r.methods[name] = fn
}

func (r *methodRegistry) remove(name string) {
	delete(r.methods, name)
}

func (r *methodRegistry) get(name string) (Method, bool) {
	fn, ok := r.methods[name]

	return fn, ok
}

func (r *methodRegistry) names() []string {
	return sortedKeys(r.methods)
}

func (r *methodRegistry) clone() methodRegistry {
	c := methodRegistry{}
	for name, fn := range r.methods {
		c.add(name, fn)
	}

	return c
}

// AddMethod attaches a named callable to the environment. Clones carry
// attached methods forward; overrides resolve them through their
// subject.
func (e *Base) AddMethod(name string, fn Method) {
	e.methods.add(name, fn)
}

// RemoveMethod detaches a named callable.
func (e *Base) RemoveMethod(name string) {
	e.methods.remove(name)
}

// CallMethod invokes an attached callable with this environment as its
// receiver.
func (e *Base) CallMethod(name string, args ...any) (any, error) {
	return callMethod(e, e, name, args...)
}

// callMethod resolves name in owner's registry and invokes it with
// receiver, which may be an override proxy of owner.
func callMethod(owner *Base, receiver Environment, name string, args ...any) (any, error) {
	fn, ok := owner.methods.get(name)
	if !ok {
		return nil, ErrUnknownMethod.With(
			slog.String("method", name),
			slog.Any("suggest", suggestNames(name, owner.methods.names())),
		)
	}

	return fn(receiver, args...)
}
