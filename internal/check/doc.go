// Package check validates derived and generated dynamics numerically.
//
// Three checks are provided:
//
//   - FiniteDifference compares A and B against central-difference
//     Jacobians of f.
//   - RoundTrip compares a loaded generated module against direct
//     evaluation of the derived matrices.
//   - Sparsity confirms that every entry the generator skips is the literal
//     zero and every entry it assigns is not.
//
// Each check reports a Result built from a Deviation accumulator.
package check
