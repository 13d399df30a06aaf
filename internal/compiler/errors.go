package compiler

import (
	"errors"
	"fmt"
)

var ErrCompilationFailed = errors.New("compilation failed")

// CompileError carries the toolchain output of a failed compilation for
// callers that want the failure as an error.
type CompileError struct {
	Name   string
	Output string
}

func (e *CompileError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("compilation of %q failed", e.Name)
	}
	return fmt.Sprintf("compilation of %q failed: %s", e.Name, e.Output)
}

func (e *CompileError) Unwrap() error {
	return ErrCompilationFailed
}
