package env

import "log/slog"

// DecideMode names one of the built-in dependency change policies.
type DecideMode int

const (
	// DecideContent compares stored and current content signatures.
	DecideContent DecideMode = iota

	// DecideTimestampThenContent checks the timestamp first and only
	// consults content when the timestamp moved.
	DecideTimestampThenContent

	// DecideTimestampNewer rebuilds whenever the dependency is newer
	// than the target, the way make does.
	DecideTimestampNewer

	// DecideTimestampMatch rebuilds whenever the dependency timestamp
	// differs from the one recorded on the previous build.
	DecideTimestampMatch
)

// String returns a string representation of the decide mode.
func (m DecideMode) String() string {
	switch m {
	case DecideContent:
		return "content"
	case DecideTimestampThenContent:
		return "content-timestamp"
	case DecideTimestampNewer:
		return "timestamp-newer"
	case DecideTimestampMatch:
		return "timestamp-match"
	default:
		return "unknown"
	}
}

// DeciderFunc reports whether dependency has changed since target was
// last built. prev carries the signature info recorded on the previous
// build, and repo optionally names a repository stand-in for target.
type DeciderFunc func(dependency, target Node, prev any, repo Node) (bool, error)

// ChangeDetector is the capability a node implements to answer the
// built-in deciders.
type ChangeDetector interface {
	Changed(mode DecideMode, target Node, prev any, repo Node) (bool, error)
}

// deciderNames maps every accepted Decider selector to its mode. The
// MD5 names are aliases kept for older build scripts, and "make"
// selects the timestamp-newer policy it made famous.
var deciderNames = map[string]DecideMode{
	"content":           DecideContent,
	"MD5":               DecideContent,
	"content-timestamp": DecideTimestampThenContent,
	"MD5-timestamp":     DecideTimestampThenContent,
	"timestamp-newer":   DecideTimestampNewer,
	"make":              DecideTimestampNewer,
	"timestamp-match":   DecideTimestampMatch,
}

// builtinDecider adapts a decide mode to a DeciderFunc by delegating
// to the dependency node's ChangeDetector.
func builtinDecider(mode DecideMode) DeciderFunc {
	return func(dependency, target Node, prev any, repo Node) (bool, error) {
		d, ok := dependency.(ChangeDetector)
		if !ok {
			return false, ErrNoChangeDetector.With(
				slog.String("node", dependency.String()),
				slog.String("mode", mode.String()),
			)
		}

		return d.Changed(mode, target, prev, repo)
	}
}

// Decider selects how targets decide that their dependencies changed.
// The value is either one of the selector names in deciderNames or a
// custom DeciderFunc. Both the target and source policies are set.
func (e *Base) Decider(value any) error {
	e.cacheTimestampNewer = false

	var fn DeciderFunc

	switch v := value.(type) {
	case string:
		mode, ok := deciderNames[v]
		if !ok {
			return ErrUnknownDecider.With(
				slog.String("value", v),
				slog.Any("suggest", suggestNames(v, deciderSelectors())),
			)
		}

		if mode == DecideTimestampNewer {
			e.cacheTimestampNewer = true
		}

		fn = builtinDecider(mode)

	case DeciderFunc:
		fn = v

	case func(Node, Node, any, Node) (bool, error):
		fn = v

	default:
		return ErrUnknownDecider.With(slog.Any("value", value))
	}

	e.decideTarget = fn
	e.decideSource = fn
	e.cacheDirMemoDelete()

	return nil
}

// TargetDecider returns the change policy applied to targets.
func (e *Base) TargetDecider() DeciderFunc { return e.decideTarget }

// SourceDecider returns the change policy applied to sources.
func (e *Base) SourceDecider() DeciderFunc { return e.decideSource }

func deciderSelectors() []string {
	return sortedKeys(deciderNames)
}

// sigTypeModes maps signature type names to decide modes. MD5 remains
// an alias for content.
var sigTypeModes = map[string]DecideMode{
	"content":   DecideContent,
	"MD5":       DecideContent,
	"timestamp": DecideTimestampMatch,
}

// SetSrcSigType selects the signature type used to decide whether
// source files changed: "content" (or its alias "MD5") or "timestamp".
// The name is expanded first.
func (e *Base) SetSrcSigType(sigType string) error {
	expanded, mode, err := e.sigTypeMode(sigType)
	if err != nil {
		return err
	}

	e.srcSigType = expanded
	e.decideSource = builtinDecider(mode)

	return nil
}

// SetTgtSigType selects the signature type used to decide whether
// built targets changed, with the same names SetSrcSigType accepts.
func (e *Base) SetTgtSigType(sigType string) error {
	expanded, mode, err := e.sigTypeMode(sigType)
	if err != nil {
		return err
	}

	e.tgtSigType = expanded
	e.decideTarget = builtinDecider(mode)

	return nil
}

func (e *Base) sigTypeMode(sigType string) (string, DecideMode, error) {
	expanded, err := e.Subst(sigType)
	if err != nil {
		return "", 0, err
	}

	mode, ok := sigTypeModes[expanded]
	if !ok {
		return "", 0, ErrUnknownDecider.With(
			slog.String("value", expanded),
			slog.Any("suggest", suggestNames(expanded, sortedKeys(sigTypeModes))),
		)
	}

	return expanded, mode, nil
}

// SrcSigType returns the signature type selected for sources, which is
// content until chosen otherwise.
func (e *Base) SrcSigType() string {
	if e.srcSigType == "" {
		return DecideContent.String()
	}

	return e.srcSigType
}

// TgtSigType returns the signature type selected for targets.
func (e *Base) TgtSigType() string {
	if e.tgtSigType == "" {
		return DecideContent.String()
	}

	return e.tgtSigType
}
