package platform

import "runtime"

// refineCygwin fills host-derived entries for the cygwin platform,
// which reports machine names the same way posix hosts do.
func refineCygwin(s *Spec) {
	s.vars["HOST_ARCH"] = posixArch(runtime.GOARCH)
}
