package platform

import "runtime"

// refineDarwin fills host-derived entries for the darwin platform.
//
// The optional MacPorts, Fink, and Homebrew directories are already
// folded into the search path by the loader when they exist.
func refineDarwin(s *Spec) {
	s.vars["HOST_ARCH"] = darwinArch(runtime.GOARCH)
}

// darwinArch maps a Go architecture name to the machine name reported
// on macOS, where Apple silicon identifies as arm64 rather than aarch64.
func darwinArch(goarch string) string {
	if goarch == "amd64" {
		return "x86_64"
	}

	return goarch
}
