package env

import "log/slog"

// CacheDir roots a derived-file cache at a directory.
type CacheDir interface {
	Path() string
}

// CacheDirFunc builds the CacheDir for a requested path. Contexts use
// it to let callers substitute their own cache implementation.
type CacheDirFunc func(path string) (CacheDir, error)

// dirCache is the default CacheDir. It records the location and leaves
// population of the cache to its consumers.
type dirCache struct {
	path string
}

// Path implements CacheDir.
func (c dirCache) Path() string { return c.path }

func defaultCacheDirFunc(path string) (CacheDir, error) {
	return dirCache{path: path}, nil
}

type cacheDirMemo struct {
	dir CacheDir
	err error
}

// SetCacheDir configures the derived-file cache location. A string
// names the cache root, a CacheDir is adopted as-is, and nil disables
// caching. Expansion of the path happens on first resolution.
func (e *Base) SetCacheDir(path any) error {
	switch t := path.(type) {
	case nil:
		e.cacheDirPath = ""
		e.cacheDirImpl = nil

	case string:
		e.cacheDirPath = t
		e.cacheDirImpl = nil

	case CacheDir:
		e.cacheDirPath = t.Path()
		e.cacheDirImpl = t

	default:
		return ErrBadCacheDir.With(slog.Any("value", path))
	}

	e.cacheDirMemoDelete()

	return nil
}

// GetCacheDir resolves the configured derived-file cache. Resolution
// is memoized until the location or the decider changes. A cache is
// refused under the timestamp-newer decider, which carries no content
// signatures for cache keys.
func (e *Base) GetCacheDir() (CacheDir, error) {
	if memo := e.cacheDir.Load(); memo != nil {
		return memo.dir, memo.err
	}

	memo := &cacheDirMemo{}

	switch {
	case e.cacheDirPath == "" && e.cacheDirImpl == nil:
		// Caching disabled.

	case e.cacheTimestampNewer:
		memo.err = ErrCacheDirDecider

	case e.cacheDirImpl != nil:
		memo.dir = e.cacheDirImpl

	default:
		path, err := e.Subst(e.cacheDirPath)
		if err != nil {
			memo.err = WrapError(err)
		} else {
			memo.dir, memo.err = e.ctx.cacheDirFunc(path)
		}
	}

	e.cacheDir.Store(memo)

	return memo.dir, memo.err
}

func (e *Base) cacheDirMemoDelete() {
	e.cacheDir.Store(nil)
}
