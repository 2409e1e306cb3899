// Package codegen lowers the derived matrices of a symbolic
// [rocket.Dynamics] into a standalone Go source file.
//
// The generated package depends only on the standard library. It defines a
// Constants record, a Dynamics type with Configure and SetParameters, and
// one evaluator per matrix:
//
//	F(x, u []float64) []float64
//	A(x, u []float64, s float64) [][]float64
//	B(x, u []float64, s float64) [][]float64
//
// Outputs are pre-zeroed and only entries that are not the literal zero are
// assigned. Inertia elements, named J00..J22 during derivation, are lowered
// to indexed reads of the configured tensor before any text is produced.
// For fixed matrices the output is byte-identical across runs.
package codegen
