package rocket

import (
	"fmt"

	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
)

// Offsets of each block in the state vector.
const (
	IdxMass  = 0
	IdxPos   = 1
	IdxVel   = 4
	IdxQuat  = 7
	IdxOmega = 11
)

// StateNames is the canonical state ordering shared by f, A, B and every
// numeric consumer.
var StateNames = [dynamo.StateDim]string{
	"m",
	"r0", "r1", "r2",
	"v0", "v1", "v2",
	"q0", "q1", "q2", "q3",
	"w0", "w1", "w2",
}

var ControlNames = [dynamo.ControlDim]string{"u0", "u1", "u2"}

const ScaleName = "s"

// Names of the symbolic constants.
const (
	AlphaName   = "alpha"
	InertiaName = "J"
)

var (
	RTBNames     = [3]string{"rTB0", "rTB1", "rTB2"}
	GravityNames = [3]string{"gx", "gy", "gz"}
)

// InertiaSymbol names the scalar standing for J[i][j] during derivation.
func InertiaSymbol(i, j int) string {
	return fmt.Sprintf("%s%d%d", InertiaName, i, j)
}

func StateSymbols() []expr.Expr   { return expr.Symbols(StateNames[:]...) }
func ControlSymbols() []expr.Expr { return expr.Symbols(ControlNames[:]...) }
func ScaleSymbol() expr.Expr      { return expr.S(ScaleName) }
