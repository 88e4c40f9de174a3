package platform

import (
	"sort"
	"strings"
	"testing"
)

func TestByName_KnownPlatforms(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"posix", map[string]string{
			"HOST_OS":     "posix",
			"OBJSUFFIX":   ".o",
			"LIBPREFIX":   "lib",
			"LIBSUFFIX":   ".a",
			"SHLIBSUFFIX": ".so",
			"SHELL":       "sh",
		}},
		{"darwin", map[string]string{
			"HOST_OS":     "darwin",
			"OBJSUFFIX":   ".o",
			"SHLIBSUFFIX": ".dylib",
		}},
		{"cygwin", map[string]string{
			"HOST_OS":     "cygwin",
			"PROGSUFFIX":  ".exe",
			"SHLIBPREFIX": "",
			"SHLIBSUFFIX": ".dll",
		}},
		{"win32", map[string]string{
			"HOST_OS":     "win32",
			"OBJSUFFIX":   ".obj",
			"LIBPREFIX":   "",
			"LIBSUFFIX":   ".lib",
			"PROGSUFFIX":  ".exe",
			"SHLIBSUFFIX": ".dll",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := ByName(tt.name)
			if !ok {
				t.Fatalf("ByName(%q) not found", tt.name)
			}

			vars := spec.Variables()
			for k, want := range tt.vars {
				got, ok := vars[k]
				if !ok {
					t.Fatalf("missing variable %s", k)
				}

				if got != want {
					t.Errorf("%s = %v, want %v", k, got, want)
				}
			}

			if arch, ok := vars["HOST_ARCH"].(string); !ok || arch == "" {
				t.Errorf("HOST_ARCH = %v, want non-empty string", vars["HOST_ARCH"])
			}
		})
	}
}

func TestByName_CaseInsensitive(t *testing.T) {
	if _, ok := ByName("POSIX"); !ok {
		t.Error("ByName(POSIX) not found")
	}

	if _, ok := ByName("vms"); ok {
		t.Error("ByName(vms) unexpectedly found")
	}
}

func TestSpec_Variables_SeedsEnv(t *testing.T) {
	spec, ok := ByName("posix")
	if !ok {
		t.Fatal("posix not found")
	}

	env, ok := spec.Variables()["ENV"].(map[string]string)
	if !ok {
		t.Fatalf("ENV = %T, want map[string]string", spec.Variables()["ENV"])
	}

	if !strings.Contains(env["PATH"], "/usr/bin") {
		t.Errorf("PATH = %q, want /usr/bin entry", env["PATH"])
	}
}

func TestSpec_Variables_Win32Env(t *testing.T) {
	spec, ok := ByName("win32")
	if !ok {
		t.Fatal("win32 not found")
	}

	env := spec.Environ()

	if env["PATHEXT"] != ".COM;.EXE;.BAT;.CMD" {
		t.Errorf("PATHEXT = %q", env["PATHEXT"])
	}

	if !strings.Contains(spec.Path(), `System32`) {
		t.Errorf("Path = %q, want System32 entry", spec.Path())
	}
}

func TestSpec_Variables_CopiesAreIndependent(t *testing.T) {
	spec, _ := ByName("posix")

	vars := spec.Variables()
	vars["OBJSUFFIX"] = ".obj"
	vars["ENV"].(map[string]string)["PATH"] = "/nowhere"

	fresh := spec.Variables()
	if fresh["OBJSUFFIX"] != ".o" {
		t.Errorf("OBJSUFFIX mutated through copy: %v", fresh["OBJSUFFIX"])
	}

	if fresh["ENV"].(map[string]string)["PATH"] == "/nowhere" {
		t.Error("ENV mutated through copy")
	}
}

func TestHost_MatchesRegistry(t *testing.T) {
	host := Host()

	if _, ok := ByName(host.Name); !ok {
		t.Errorf("Host() = %q, not in registry", host.Name)
	}
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()

	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}

	for _, want := range []string{"cygwin", "darwin", "posix", "win32"} {
		found := false

		for _, n := range names {
			if n == want {
				found = true

				break
			}
		}

		if !found {
			t.Errorf("Names() missing %q", want)
		}
	}
}

func TestSuggest_RanksNearMisses(t *testing.T) {
	got := Suggest("posx")
	if len(got) == 0 || got[0] != "posix" {
		t.Errorf("Suggest(posx) = %v, want posix first", got)
	}

	if got := Suggest("qqq"); len(got) != 0 {
		t.Errorf("Suggest(qqq) = %v, want none", got)
	}
}
