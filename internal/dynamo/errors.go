package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for derivation, evaluation and generation.
var (
	// ErrConfiguration indicates a constants mapping with a missing, unknown or mis-shaped key.
	ErrConfiguration = errors.New("dynamo: invalid constants configuration")

	// ErrDimensionMismatch indicates a state or control vector that does not match the 14/3 model.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between sample and model")

	// ErrNonFinite indicates a NaN or Inf in a state, control or scale.
	ErrNonFinite = errors.New("dynamo: non-finite sample value")

	// ErrUnresolvedSymbol indicates a substitution left a free symbol behind.
	ErrUnresolvedSymbol = errors.New("dynamo: unresolved symbol")

	// ErrGenerationIO indicates the generated module could not be written.
	ErrGenerationIO = errors.New("dynamo: cannot write generated module")

	// ErrCodegenDisabled indicates code generation was requested on a numerically bound instance.
	ErrCodegenDisabled = errors.New("dynamo: code generation requires symbolic constants")
)

// ConfigError names the offending constant and the expected shape.
type ConfigError struct {
	Key  string
	Want string
}

func (e *ConfigError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("%s: %q", ErrConfiguration, e.Key)
	}
	return fmt.Sprintf("%s: %q (want %s)", ErrConfiguration, e.Key, e.Want)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// DimensionError names the vector and the expected length.
type DimensionError struct {
	Component string
	Want      int
	Got       int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s has %d components, want %d", ErrDimensionMismatch, e.Component, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

type UnresolvedSymbolError struct {
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnresolvedSymbol, e.Name)
}

func (e *UnresolvedSymbolError) Unwrap() error { return ErrUnresolvedSymbol }
