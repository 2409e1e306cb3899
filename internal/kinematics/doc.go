// Package kinematics builds the attitude kinematics matrices of a rigid body
// for any scalar algebra.
//
// The same builders serve the derivation (symbolic expressions) and numeric
// checks (float64); the caller picks the strategy:
//
//	omega := kinematics.QuaternionRate(kinematics.Symbolic{}, w)
//	rot := kinematics.RotationDense(q) // numeric, as *mat.Dense
//
// Quaternions are scalar-first and body-to-inertial. Nothing here
// normalizes q.
package kinematics
