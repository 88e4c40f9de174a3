package env

import (
	"errors"
	"testing"
)

func TestDecider_Selectors(t *testing.T) {
	tests := []struct {
		selector string
		newer    bool
	}{
		{"content", false},
		{"MD5", false},
		{"content-timestamp", false},
		{"MD5-timestamp", false},
		{"timestamp-newer", true},
		{"make", true},
		{"timestamp-match", false},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			e := newTestEnv(t)

			if err := e.Decider(tt.selector); err != nil {
				t.Fatalf("Decider(%q) error: %v", tt.selector, err)
			}

			if e.cacheTimestampNewer != tt.newer {
				t.Errorf("cacheTimestampNewer = %v, want %v", e.cacheTimestampNewer, tt.newer)
			}

			if e.TargetDecider() == nil || e.SourceDecider() == nil {
				t.Error("Decider() left a policy unset")
			}
		})
	}
}

func TestDecider_Unknown(t *testing.T) {
	e := newTestEnv(t)

	if err := e.Decider("md5sum"); !errors.Is(err, ErrUnknownDecider) {
		t.Errorf("Decider(md5sum) error = %v, want ErrUnknownDecider", err)
	}

	if err := e.Decider(42); !errors.Is(err, ErrUnknownDecider) {
		t.Errorf("Decider(42) error = %v, want ErrUnknownDecider", err)
	}
}

func TestDecider_CustomFunc(t *testing.T) {
	e := newTestEnv(t)

	called := false

	err := e.Decider(func(dependency, target Node, prev any, repo Node) (bool, error) {
		called = true

		return true, nil
	})
	if err != nil {
		t.Fatalf("Decider(func) error: %v", err)
	}

	changed, err := e.SourceDecider()(plainNode("a.c"), plainNode("a.o"), nil, nil)
	if err != nil || !changed {
		t.Fatalf("custom decider = %v, %v", changed, err)
	}

	if !called {
		t.Error("custom decider was not invoked")
	}
}

func TestDecider_NoChangeDetector(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.SourceDecider()(plainNode("a.c"), nil, nil, nil)
	if !errors.Is(err, ErrNoChangeDetector) {
		t.Errorf("builtin decider error = %v, want ErrNoChangeDetector", err)
	}
}

func TestDecider_CacheDirInteraction(t *testing.T) {
	e := newTestEnv(t)

	if err := e.SetCacheDir("/tmp/benv-cache"); err != nil {
		t.Fatalf("SetCacheDir() error: %v", err)
	}

	if err := e.Decider("make"); err != nil {
		t.Fatalf("Decider(make) error: %v", err)
	}

	if _, err := e.GetCacheDir(); !errors.Is(err, ErrCacheDirDecider) {
		t.Errorf("GetCacheDir() error = %v, want ErrCacheDirDecider", err)
	}

	// Switching back to a content policy lifts the refusal.
	if err := e.Decider("content"); err != nil {
		t.Fatalf("Decider(content) error: %v", err)
	}

	dir, err := e.GetCacheDir()
	if err != nil {
		t.Fatalf("GetCacheDir() error: %v", err)
	}

	if dir.Path() != "/tmp/benv-cache" {
		t.Errorf("cache path = %q, want /tmp/benv-cache", dir.Path())
	}
}

func TestCacheDir(t *testing.T) {
	e := newTestEnv(t)

	t.Run("unset cache resolves to nothing", func(t *testing.T) {
		dir, err := e.GetCacheDir()
		if dir != nil || err != nil {
			t.Errorf("GetCacheDir() = %v, %v, want nil, nil", dir, err)
		}
	})

	t.Run("adopted implementation is returned as-is", func(t *testing.T) {
		impl := dirCache{path: "/custom"}

		if err := e.SetCacheDir(impl); err != nil {
			t.Fatalf("SetCacheDir() error: %v", err)
		}

		dir, err := e.GetCacheDir()
		if err != nil {
			t.Fatalf("GetCacheDir() error: %v", err)
		}

		if dir != impl {
			t.Errorf("GetCacheDir() = %v, want the adopted value", dir)
		}
	})

	t.Run("nil disables caching", func(t *testing.T) {
		if err := e.SetCacheDir(nil); err != nil {
			t.Fatalf("SetCacheDir(nil) error: %v", err)
		}

		dir, err := e.GetCacheDir()
		if dir != nil || err != nil {
			t.Errorf("GetCacheDir() = %v, %v, want nil, nil", dir, err)
		}
	})

	t.Run("unsupported values fail", func(t *testing.T) {
		if err := e.SetCacheDir(42); !errors.Is(err, ErrBadCacheDir) {
			t.Errorf("SetCacheDir(42) error = %v, want ErrBadCacheDir", err)
		}
	})
}

func TestSigTypes(t *testing.T) {
	e := newTestEnv(t)

	if got := e.SrcSigType(); got != "content" {
		t.Errorf("default SrcSigType() = %q, want content", got)
	}

	if got := e.TgtSigType(); got != "content" {
		t.Errorf("default TgtSigType() = %q, want content", got)
	}

	if err := e.SetSrcSigType("MD5"); err != nil {
		t.Fatalf("SetSrcSigType(MD5) error: %v", err)
	}

	// The selected name is kept verbatim, aliases included.
	if got := e.SrcSigType(); got != "MD5" {
		t.Errorf("SrcSigType() = %q, want MD5", got)
	}

	if err := e.SetTgtSigType("timestamp"); err != nil {
		t.Fatalf("SetTgtSigType(timestamp) error: %v", err)
	}

	if got := e.TgtSigType(); got != "timestamp" {
		t.Errorf("TgtSigType() = %q, want timestamp", got)
	}

	if err := e.SetSrcSigType("sha512"); !errors.Is(err, ErrUnknownDecider) {
		t.Errorf("SetSrcSigType(sha512) error = %v, want ErrUnknownDecider", err)
	}
}
