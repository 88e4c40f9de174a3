package env

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/readahead"
)

// Depends records that each target depends on each dependency and
// returns the target nodes. String arguments expand and resolve
// through the node factory; targets must be able to record
// dependencies.
func (e *Base) Depends(target, dependency any) ([]Node, error) {
	return depends(e, target, dependency)
}

func depends(env Environment, target, dependency any) ([]Node, error) {
	tlist, err := argNodes(env, target)
	if err != nil {
		return nil, err
	}

	dlist, err := argNodes(env, dependency)
	if err != nil {
		return nil, err
	}

	for _, t := range tlist {
		dn, ok := t.(DependencyNode)
		if !ok {
			return nil, ErrNotDependable.With(slog.String("node", t.String()))
		}

		dn.AddDependency(dlist...)
	}

	return tlist, nil
}

// argNodes resolves a loosely typed argument into nodes. Nodes pass
// through, strings expand and resolve through the factory, and
// sequences flatten. Empty strings and nil contribute nothing.
func argNodes(env Environment, arg any) ([]Node, error) {
	switch t := arg.(type) {
	case nil:
		return nil, nil

	case Node:
		return []Node{t}, nil

	case []Node:
		return append([]Node{}, t...), nil

	case string:
		expanded, err := env.Subst(t)
		if err != nil {
			return nil, err
		}

		if expanded == "" {
			return nil, nil
		}

		return []Node{env.Context().factory.Entry(expanded)}, nil

	case []string:
		out := make([]Node, 0, len(t))

		for _, s := range t {
			nodes, err := argNodes(env, s)
			if err != nil {
				return nil, err
			}

			out = append(out, nodes...)
		}

		return out, nil

	case []any:
		var out []Node

		for _, elem := range t {
			nodes, err := argNodes(env, elem)
			if err != nil {
				return nil, err
			}

			out = append(out, nodes...)
		}

		return out, nil

	case Value:
		return valueNodes(env, t)

	default:
		return nil, ErrNotDependable.With(slog.Any("arg", arg))
	}
}

func valueNodes(env Environment, v Value) ([]Node, error) {
	switch v.Kind {
	case KindInvalid:
		return nil, nil

	case KindScalar:
		return argNodes(env, v.Scalar)

	case KindSeq:
		var out []Node

		for _, elem := range v.Seq {
			nodes, err := valueNodes(env, elem)
			if err != nil {
				return nil, err
			}

			out = append(out, nodes...)
		}

		return out, nil

	case KindOpaque:
		if n, ok := v.Opaque.(Node); ok {
			return []Node{n}, nil
		}
	}

	return nil, ErrNotDependable.With(slog.String("value", v.String()))
}

// ParseDepends reads a Makefile-style dependency file and records each
// target's dependencies through the node factory.
//
// Physical lines ending in a backslash join into one logical line.
// Comment lines and lines without a colon are skipped rather than
// failing the parse. With onlyOne set, the whole file may name at most
// one target word. A missing file is an error only when mustExist is
// set.
func (e *Base) ParseDepends(filename string, mustExist, onlyOne bool) error {
	return parseDepends(e, filename, mustExist, onlyOne)
}

func parseDepends(env Environment, filename string, mustExist, onlyOne bool) error {
	expanded, err := env.Subst(filename)
	if err != nil {
		return err
	}

	f, err := os.Open(expanded)
	if err != nil {
		if mustExist {
			return ErrReadDepends.Wrap(err).With(slog.String("path", expanded))
		}

		return nil
	}
	defer f.Close()

	// Read through an async read-ahead buffer so parsing overlaps I/O.
	ra := readahead.NewReader(f)
	defer ra.Close()

	lines, err := logicalLines(ra)
	if err != nil {
		return ErrReadDepends.Wrap(err).With(slog.String("path", expanded))
	}

	type edge struct {
		targets []string
		depends []string
	}

	var (
		edges   []edge
		targets []string
	)

	for _, line := range lines {
		if line == "" || line[0] == '#' {
			continue
		}

		head, tail, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		ed := edge{
			targets: strings.Fields(head),
			depends: strings.Fields(tail),
		}

		edges = append(edges, ed)
		targets = append(targets, ed.targets...)
	}

	if onlyOne && len(targets) > 1 {
		return ErrTooManyTargets.With(
			slog.String("path", expanded),
			slog.Any("targets", targets),
		)
	}

	for _, ed := range edges {
		_, err := env.Depends(ed.targets, ed.depends)
		if err != nil {
			return err
		}
	}

	return nil
}

// logicalLines splits input into lines, joining physical lines that
// end in a backslash with their successors.
func logicalLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		lines   []string
		pending string
	)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasSuffix(line, `\`) {
			pending += strings.TrimSuffix(line, `\`)

			continue
		}

		lines = append(lines, pending+line)
		pending = ""
	}

	if pending != "" {
		lines = append(lines, pending)
	}

	return lines, scanner.Err()
}
