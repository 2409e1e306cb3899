package dynamo

import (
	"fmt"
	"math"
)

const (
	StateDim   = 14
	ControlDim = 3
)

type State []float64

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Mass returns the mass component.
func (s State) Mass() float64 { return s[0] }

// Quaternion returns the scalar-first attitude quaternion.
func (s State) Quaternion() [4]float64 { return [4]float64{s[7], s[8], s[9], s[10]} }

// Omega returns the body-frame angular velocity.
func (s State) Omega() [3]float64 { return [3]float64{s[11], s[12], s[13]} }

// CheckDim reports a DimensionError if the sample does not match the model.
func (s State) CheckDim() error {
	if len(s) != StateDim {
		return &DimensionError{Component: "state", Want: StateDim, Got: len(s)}
	}
	return nil
}

type Control []float64

func (c Control) CheckDim() error {
	if len(c) != ControlDim {
		return &DimensionError{Component: "control", Want: ControlDim, Got: len(c)}
	}
	return nil
}

// Sample is one (x, u, s) evaluation point.
type Sample struct {
	X State
	U Control
	S float64
}

func (p Sample) CheckDim() error {
	if err := p.X.CheckDim(); err != nil {
		return err
	}
	return p.U.CheckDim()
}

// Validate checks dimensions and rejects NaN or Inf anywhere in the sample.
func (p Sample) Validate() error {
	if err := p.CheckDim(); err != nil {
		return err
	}
	switch {
	case !p.X.IsValid():
		return fmt.Errorf("%w: state %v", ErrNonFinite, []float64(p.X))
	case !State(p.U).IsValid():
		return fmt.Errorf("%w: control %v", ErrNonFinite, []float64(p.U))
	case !State{p.S}.IsValid():
		return fmt.Errorf("%w: scale %v", ErrNonFinite, p.S)
	}
	return nil
}

// HoverState returns a resting state at unit mass with identity attitude.
func HoverState() State {
	x := make(State, StateDim)
	x[0] = 1
	x[7] = 1
	return x
}
