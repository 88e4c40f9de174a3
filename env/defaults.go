package env

import (
	_ "embed"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	baselineOnce sync.Once
	baseline     Vars
)

// baselineVars returns a copy of the embedded table of construction
// variables every new environment starts from.
func baselineVars() Vars {
	baselineOnce.Do(func() {
		var table map[string]any

		err := yaml.Unmarshal(defaultsYAML, &table)
		if err != nil {
			panic("env: invalid defaults table: " + err.Error())
		}

		baseline = table
	})

	out := make(Vars, len(baseline))
	for name, value := range baseline {
		out[name] = value
	}

	return out
}
