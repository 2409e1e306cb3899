// Package dynamo provides the numeric vector types and error kinds shared by
// the derivation, evaluation and code generation packages.
//
//   - [State]: 14-component state sample (m, r, v, q, w)
//   - [Control]: 3-component body-frame thrust sample
//   - sentinel errors and typed wrappers for configuration, dimension,
//     unresolved-symbol and generation failures
//
// All errors are fail-fast; callers fix the input and re-invoke.
package dynamo
