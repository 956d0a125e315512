package compression

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the orchestrator.
var (
	ErrInputNotFound  = errors.New("input file not found")
	ErrMagickNotFound = errors.New("imagemagick not found, please install it to use this tool")
)

// InvalidParameterError reports a request parameter outside its valid range.
type InvalidParameterError struct {
	Param string
	Value any
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid value %v for parameter %s", e.Value, e.Param)
}

// ExternalToolError wraps a non-zero exit from an external tool together
// with its captured output.
type ExternalToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ExternalToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %v, output: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// TargetSizeUnreachableError is returned when the quality floor was reached
// without the output shrinking below the requested target size.
type TargetSizeUnreachableError struct {
	TargetBytes  int64
	BestBytes    int64
	FloorQuality int
}

func (e *TargetSizeUnreachableError) Error() string {
	return fmt.Sprintf("target size of %d bytes is unreachable: best result was %d bytes at quality %d",
		e.TargetBytes, e.BestBytes, e.FloorQuality)
}
