package env

import (
	"os"
	"path/filepath"
	"strings"
)

// WhereIs searches the execution environment's path for a program and
// returns its full path, or the empty string when it is not found.
//
// The search walks the ENV variable's PATH entry, falling back to the
// process PATH when the environment has none. With a PATHEXT entry in
// play the lookup follows Windows rules, trying each extension in
// turn; otherwise a hit must be an executable regular file. The
// program name is expanded first, and only the first word of the
// result is searched, so "program --with-args" finds program.
func (e *Base) WhereIs(program string) string {
	return whereIs(e, program)
}

func whereIs(env Environment, program string) string {
	if program == "" {
		return ""
	}

	expanded, err := env.Subst(program)
	if err != nil {
		return ""
	}

	fields := strings.Fields(expanded)
	if len(fields) == 0 {
		return ""
	}

	name := fields[0]

	path := envEntryText(env, "PATH")
	if path == "" {
		path = os.Getenv("PATH")
	}

	if path == "" {
		return ""
	}

	pathext := envEntryText(env, "PATHEXT")
	if pathext == "" && platformIsWin32(env) {
		pathext = os.Getenv("PATHEXT")
		if pathext == "" {
			pathext = ".COM;.EXE;.BAT;.CMD"
		}
	}

	dirs := strings.Split(path, pathListSeparator)

	if pathext != "" {
		return whereExt(name, dirs, strings.Split(pathext, pathListSeparator))
	}

	return whereExec(name, dirs)
}

// whereExec finds an executable regular file by name under dirs.
func whereExec(name string, dirs []string) string {
	for _, d := range dirs {
		f := filepath.Join(d, name)

		info, err := os.Stat(f)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if info.Mode().Perm()&0o111 != 0 {
			return filepath.Clean(f)
		}
	}

	return ""
}

// whereExt finds a file by name under dirs, trying each extension.
// A name that already carries one of the extensions is tried as-is.
func whereExt(name string, dirs, exts []string) string {
	for _, ext := range exts {
		if ext != "" && strings.EqualFold(ext, suffixOf(name, len(ext))) {
			exts = []string{""}

			break
		}
	}

	for _, d := range dirs {
		f := filepath.Join(d, name)

		for _, ext := range exts {
			candidate := f + ext

			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() {
				return filepath.Clean(candidate)
			}
		}
	}

	return ""
}

func suffixOf(s string, n int) string {
	if n > len(s) {
		return s
	}

	return s[len(s)-n:]
}

// Detect returns the name of the first program found on the execution
// environment's path, or the empty string when none of them resolve.
func (e *Base) Detect(progs ...string) string {
	return detect(e, progs...)
}

func detect(env Environment, progs ...string) string {
	for _, prog := range progs {
		if env.WhereIs(prog) != "" {
			return prog
		}
	}

	return ""
}

// envEntryText renders one entry of the ENV mapping as text. Sequence
// entries join with the host path list separator.
func envEntryText(env Environment, name string) string {
	entry := envPathValue(env, "ENV", name)
	if !entry.IsValid() {
		return ""
	}

	return pathText(entry)
}
