// Package rocket derives the equations of motion of a thrust-vectored rigid
// body with depleting mass and their first-order linearization.
//
// The state is x = (m, r, v, q, w) with 14 components, the control u is the
// body-frame thrust vector and s scales time. New derives, once,
//
//	f = dx/dt               (14×1)
//	A = s·∂f/∂x             (14×14)
//	B = s·∂f/∂u             (14×3)
//
// under one of two constant bindings chosen at construction:
// SymbolicDerivation keeps alpha, rTB, J and g as free symbols so the
// matrices can be compiled by package codegen; NumericConfiguration folds
// their values in so the matrices can only be evaluated.
//
// Derived matrices are immutable and safe for concurrent reads.
package rocket
