package codegen

import (
	"github.com/san-kum/dyngen/internal/expr"
	"github.com/san-kum/dyngen/internal/rocket"
)

// inertiaRefs maps each of the nine inertia element names to an indexed
// read of the single configured tensor.
func inertiaRefs() map[string]expr.Expr {
	refs := make(map[string]expr.Expr, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			refs[rocket.InertiaSymbol(i, j)] = expr.Idx(rocket.InertiaName, i, j)
		}
	}
	return refs
}

// lower rewrites constant references structurally. Replacement is by exact
// symbol name, so no other symbol is touched.
func lower(rows [][]expr.Expr) [][]expr.Expr {
	refs := inertiaRefs()
	out := make([][]expr.Expr, len(rows))
	for i, row := range rows {
		out[i] = make([]expr.Expr, len(row))
		for j, e := range row {
			out[i][j] = expr.Substitute(e, refs)
		}
	}
	return out
}
