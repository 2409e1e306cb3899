package rocket

import (
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
	"github.com/san-kum/dyngen/internal/kinematics"
)

// Assemble builds the right-hand side f(x, u) of the equations of motion:
//
//	dm/dt = -alpha·‖u‖
//	dr/dt = v
//	dv/dt = R(q)·u/m + g
//	dq/dt = ½·Ω(w)·q
//	dw/dt = J⁺·(rTB × u − w × (J·w))
func Assemble(x, u []expr.Expr, c Constants) ([]expr.Expr, error) {
	if len(x) != dynamo.StateDim {
		return nil, &dynamo.DimensionError{Component: "state symbols", Want: dynamo.StateDim, Got: len(x)}
	}
	if len(u) != dynamo.ControlDim {
		return nil, &dynamo.DimensionError{Component: "control symbols", Want: dynamo.ControlDim, Got: len(u)}
	}

	alg := kinematics.Symbolic{}

	m := x[IdxMass]
	v := [3]expr.Expr{x[IdxVel], x[IdxVel+1], x[IdxVel+2]}
	q := [4]expr.Expr{x[IdxQuat], x[IdxQuat+1], x[IdxQuat+2], x[IdxQuat+3]}
	w := [3]expr.Expr{x[IdxOmega], x[IdxOmega+1], x[IdxOmega+2]}
	thrust := [3]expr.Expr{u[0], u[1], u[2]}

	f := make([]expr.Expr, dynamo.StateDim)

	uMag := expr.SqrtOf(expr.AddOf(expr.Square(u[0]), expr.Square(u[1]), expr.Square(u[2])))
	f[IdxMass] = expr.MulOf(expr.Neg(c.Alpha), uMag)

	for i := 0; i < 3; i++ {
		f[IdxPos+i] = v[i]
	}

	rotated := kinematics.MatVec3[expr.Expr](alg, kinematics.BodyToInertial[expr.Expr](alg, q), thrust)
	invMass := expr.PowOf(m, -1)
	for i := 0; i < 3; i++ {
		f[IdxVel+i] = expr.AddOf(expr.MulOf(invMass, rotated[i]), c.G[i])
	}

	qdot := kinematics.MatVec4[expr.Expr](alg, kinematics.QuaternionRate[expr.Expr](alg, w), q)
	for i := 0; i < 4; i++ {
		f[IdxQuat+i] = expr.MulOf(expr.F(1, 2), qdot[i])
	}

	torque := kinematics.Cross[expr.Expr](alg, c.RTB, thrust)
	gyro := kinematics.Cross[expr.Expr](alg, w, kinematics.MatVec3[expr.Expr](alg, c.J, w))
	var net [3]expr.Expr
	for i := range net {
		net[i] = expr.Sub(torque[i], gyro[i])
	}
	wdot := kinematics.MatVec3[expr.Expr](alg, c.JPinv, net)
	for i := 0; i < 3; i++ {
		f[IdxOmega+i] = wdot[i]
	}

	return f, nil
}
