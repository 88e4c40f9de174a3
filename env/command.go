package env

import (
	"bytes"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Backtick emulates shell command substitution: it runs command and
// returns its captured standard output.
//
// The command is tokenized with shell quoting rules and run directly,
// without an intermediate shell. The child process sees the execution
// environment described by the ENV variable when one is set. Anything
// written to standard error is surfaced through the warning log, and a
// non-zero exit status fails with [ErrCommandFailed].
func (e *Base) Backtick(command string) (string, error) {
	return backtick(e, command)
}

func backtick(env Environment, command string) (string, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return "", WrapError(err).With(slog.String("command", command))
	}

	if len(argv) == 0 {
		return "", ErrCommandFailed.With(
			slog.String("command", command),
			slog.String("reason", "empty command"),
		)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = execEnviron(env)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if stderr.Len() > 0 {
		env.Context().log.Warn("command wrote to standard error",
			slog.String("command", argv[0]),
			slog.String("stderr", strings.TrimRight(stderr.String(), "\n")),
		)
	}

	if runErr != nil {
		return "", ErrCommandFailed.Wrap(runErr).With(slog.String("command", command))
	}

	return stdout.String(), nil
}

// execEnviron renders the ENV variable into the process environment
// for spawned commands. Sequence values join with the path list
// separator. Without an ENV mapping the child inherits the parent
// process environment.
func execEnviron(env Environment) []string {
	v, ok := env.Lookup("ENV")
	if !ok || v.Kind != KindMap {
		return nil
	}

	keys := v.Dict.Keys()
	environ := make([]string, 0, len(keys))

	for _, name := range keys {
		entry, _ := v.Dict.Get(name)
		environ = append(environ, name+"="+pathText(entry))
	}

	return environ
}

// pathText renders an execution environment entry as the text a child
// process sees.
func pathText(v Value) string {
	if v.Kind != KindSeq {
		return v.String()
	}

	parts := make([]string, 0, len(v.Seq))
	for _, elem := range v.Seq {
		parts = append(parts, elem.String())
	}

	return strings.Join(parts, pathListSeparator)
}

// ParseConfig runs a *-config style command and merges the flags it
// prints into the environment. The command is expanded before it runs,
// and its output distributes across construction variables the same
// way MergeFlags does.
func (e *Base) ParseConfig(command string, unique bool) error {
	return parseConfig(e, command, unique)
}

func parseConfig(env Environment, command string, unique bool) error {
	expanded, err := env.Subst(command)
	if err != nil {
		return err
	}

	output, err := env.Backtick(expanded)
	if err != nil {
		return err
	}

	return env.MergeFlags(output, unique)
}
