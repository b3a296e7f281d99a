// Package frontend loads serialized IR programs. It stands in for the
// external front-ends that lower source languages into the statement IR:
// anything able to emit the YAML program format can feed the analyses.
package frontend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spartools/spar/ir"
)

// ErrInvalidProgram signals a program file that does not satisfy the IR
// contract (duplicate ids, unknown kinds, malformed pointer effects).
var ErrInvalidProgram = errors.New("invalid program")

// LoadFile reads and validates a YAML program file.
func LoadFile(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	prog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if prog.Source == "" {
		prog.Source = path
	}
	return prog, nil
}

// Parse decodes and validates a YAML program. Unknown fields are rejected
// so typos in hand-written programs surface early.
func Parse(data []byte) (*ir.Program, error) {
	var prog ir.Program
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&prog); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty program", ErrInvalidProgram)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}
	if err := validate(&prog); err != nil {
		return nil, err
	}
	return &prog, nil
}

func validate(prog *ir.Program) error {
	if len(prog.Procedures) == 0 {
		return fmt.Errorf("%w: no procedures", ErrInvalidProgram)
	}

	names := make(map[string]bool, len(prog.Procedures))
	for pi := range prog.Procedures {
		proc := &prog.Procedures[pi]
		if proc.Name == "" {
			return fmt.Errorf("%w: procedure %d has no name", ErrInvalidProgram, pi)
		}
		if names[proc.Name] {
			return fmt.Errorf("%w: duplicate procedure %q", ErrInvalidProgram, proc.Name)
		}
		names[proc.Name] = true

		ids := make(map[int]bool, len(proc.Statements))
		for _, stmt := range proc.Statements {
			if ids[stmt.ID] {
				return fmt.Errorf("%w: duplicate statement id %d in %q", ErrInvalidProgram, stmt.ID, proc.Name)
			}
			ids[stmt.ID] = true

			if !stmt.Kind.Valid() {
				return fmt.Errorf("%w: statement %d in %q has unknown kind %q",
					ErrInvalidProgram, stmt.ID, proc.Name, stmt.Kind)
			}
			if err := validatePtr(proc.Name, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func validatePtr(proc string, stmt ir.Statement) error {
	eff := stmt.Ptr
	if eff == nil {
		return nil
	}

	bad := func(field string) error {
		return fmt.Errorf("%w: statement %d in %q: pointer effect %q requires %s",
			ErrInvalidProgram, stmt.ID, proc, eff.Op, field)
	}

	switch eff.Op {
	case ir.PtrAlloc:
		if eff.Dst == "" {
			return bad("dst")
		}
		if eff.Site == "" {
			return bad("site")
		}
	case ir.PtrCopy:
		if eff.Dst == "" || eff.Src == "" {
			return bad("dst and src")
		}
	case ir.PtrLoad, ir.PtrStore:
		if eff.Dst == "" || eff.Src == "" {
			return bad("dst and src")
		}
		if eff.Field == "" {
			return bad("field")
		}
	case ir.PtrUnsupported:
		// Note is optional.
	default:
		return fmt.Errorf("%w: statement %d in %q has unknown pointer effect %q",
			ErrInvalidProgram, stmt.ID, proc, eff.Op)
	}
	return nil
}
