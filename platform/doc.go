// Package platform names the host conventions a fresh construction
// environment starts from.
//
// Each platform is a static table of baseline construction variables:
// object and library affixes, the default shell, and the executable
// search path seeded into the nested ENV mapping. The tables live in an
// embedded YAML document, so extending the registry is a data change.
// At load time each table is refined with the few details only the
// running host can answer, such as the machine architecture and, on
// Windows, the system root.
//
// # Selection
//
// [Host] picks the platform matching the running process. [ByName]
// resolves an explicit request, and [Suggest] offers near-miss names
// for error reporting when that request fails:
//
//	spec, ok := platform.ByName("win32")
//	if !ok {
//		candidates := platform.Suggest("win32")
//		...
//	}
//
// A [Spec] is a value. Mutating the maps returned by [Spec.Variables]
// or [Spec.Environ] never affects the registry.
package platform
