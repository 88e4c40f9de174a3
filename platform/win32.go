package platform

import (
	"os"
	"runtime"
)

// refineWin32 fills host-derived entries for the win32 platform.
// The default search path hangs off the Windows system root.
func refineWin32(s *Spec) {
	root := systemRoot()

	s.path = append(s.path,
		root+`\System32`,
		root,
		root+`\System32\Wbem`,
		root+`\System32\WindowsPowerShell\v1.0`,
	)

	if _, ok := s.env["SystemRoot"]; !ok {
		s.env["SystemRoot"] = root
	}

	s.vars["HOST_ARCH"] = win32Arch(runtime.GOARCH)
}

// systemRoot locates the Windows directory, preferring the process
// environment over the conventional install location.
func systemRoot() string {
	if root, ok := os.LookupEnv("SystemRoot"); ok && root != "" {
		return root
	}

	if root, ok := os.LookupEnv("windir"); ok && root != "" {
		return root
	}

	return `C:\WINDOWS`
}

// win32Arch maps a Go architecture name to the value Windows reports
// in PROCESSOR_ARCHITECTURE.
func win32Arch(goarch string) string {
	switch goarch {
	case "amd64":
		return "AMD64"
	case "arm64":
		return "ARM64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}
