package env

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Signature captures the identity of a file's contents as recorded
// after a build: modification time, content hash, and size. Deciders
// compare a node's current signature against the one stored from the
// previous build.
type Signature struct {
	ModTime time.Time
	Content uint64
	Size    int64
}

// FileSignature reads and hashes the file at path.
func FileSignature(path string) (Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signature{}, WrapError(err).With(slog.String("path", path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Signature{}, WrapError(err).With(slog.String("path", path))
	}

	// Hash through an async read-ahead buffer so hashing overlaps I/O.
	ra := readahead.NewReader(f)
	defer ra.Close()

	h := xxh3.New()

	_, err = io.Copy(h, ra)
	if err != nil {
		return Signature{}, WrapError(err).With(slog.String("path", path))
	}

	return Signature{
		ModTime: info.ModTime(),
		Content: h.Sum64(),
		Size:    info.Size(),
	}, nil
}

// Changed implements [ChangeDetector]. A PathNode answers the built-in
// deciders by statting the file it names, hashing its contents only
// when the policy asks for them. Missing previous state always reads
// as changed.
func (n *PathNode) Changed(mode DecideMode, target Node, prev any, repo Node) (bool, error) {
	if mode == DecideTimestampNewer {
		return timestampNewer(n.name, target)
	}

	prevSig, ok := prev.(Signature)
	if !ok {
		return true, nil
	}

	switch mode {
	case DecideContent:
		return n.contentChanged(prevSig)

	case DecideTimestampMatch:
		info, err := os.Stat(n.name)
		if err != nil {
			return false, WrapError(err).With(slog.String("path", n.name))
		}

		return !info.ModTime().Equal(prevSig.ModTime), nil

	case DecideTimestampThenContent:
		info, err := os.Stat(n.name)
		if err != nil {
			return false, WrapError(err).With(slog.String("path", n.name))
		}

		if info.ModTime().Equal(prevSig.ModTime) {
			return false, nil
		}

		return n.contentChanged(prevSig)

	default:
		return true, nil
	}
}

func (n *PathNode) contentChanged(prev Signature) (bool, error) {
	cur, err := FileSignature(n.name)
	if err != nil {
		return false, err
	}

	return cur.Content != prev.Content, nil
}

// timestampNewer reports whether the dependency file is at least as
// new as the target, the make rule. A target that cannot be statted is
// always out of date.
func timestampNewer(dep string, target Node) (bool, error) {
	if target == nil {
		return true, nil
	}

	tinfo, err := os.Stat(target.String())
	if err != nil {
		return true, nil
	}

	dinfo, err := os.Stat(dep)
	if err != nil {
		return false, WrapError(err).With(slog.String("path", dep))
	}

	return !dinfo.ModTime().Before(tinfo.ModTime()), nil
}
