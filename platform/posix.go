package platform

import "runtime"

// refinePosix fills host-derived entries for the posix platform.
func refinePosix(s *Spec) {
	s.vars["HOST_ARCH"] = posixArch(runtime.GOARCH)
}

// posixArch maps a Go architecture name to the machine name uname -m
// would report.
func posixArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	case "arm":
		return "armv7l"
	default:
		return goarch
	}
}
