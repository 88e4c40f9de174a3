package env

import "log/slog"

// Tool configures an environment with the variables, builders, and
// scanners of one toolchain component.
type Tool interface {
	Apply(e Environment, kw Vars) error
}

// ToolFunc adapts a plain function to the Tool interface.
type ToolFunc func(e Environment, kw Vars) error

// Apply implements Tool.
func (f ToolFunc) Apply(e Environment, kw Vars) error { return f(e, kw) }

// DefaultToolName is the tool applied when an environment is created
// without an explicit tool list.
const DefaultToolName = "default"

// applyTools resolves each named tool through the context registry and
// applies it to the environment. Every tool that applies cleanly is
// recorded in the TOOLS variable.
func applyTools(e Environment, names []string, kw Vars) error {
	for _, name := range names {
		if name == "" {
			continue
		}

		err := applyTool(e, name, kw)
		if err != nil {
			return err
		}
	}

	return nil
}

func applyTool(e Environment, name string, kw Vars) error {
	tool, ok := e.Context().Tool(name)
	if !ok {
		return ErrUnknownTool.With(
			slog.String("tool", name),
			slog.Any("suggest", e.Context().SuggestTool(name)),
		)
	}

	err := tool.Apply(e, kw)
	if err != nil {
		return WrapError(err).With(slog.String("tool", name))
	}

	return e.Append(Vars{"TOOLS": []string{name}})
}
