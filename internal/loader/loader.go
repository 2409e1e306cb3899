// Package loader runs a generated evaluator module in-process with the
// yaegi interpreter, so its F, A and B can be called without a build step.
package loader

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/san-kum/dyngen/internal/config"
)

// Evaluator exposes a configured generated module.
type Evaluator struct {
	F func(x, u []float64) []float64
	A func(x, u []float64, s float64) [][]float64
	B func(x, u []float64, s float64) [][]float64

	configure func(params map[string]any) error
}

var packageClause = regexp.MustCompile(`(?m)^package \w+$`)

// allowedImports is the stdlib surface a generated module may use.
var allowedImports = map[string]bool{"fmt": true, "math": true}

// Load interprets src and configures it with c.
func Load(src []byte, c config.Constants) (*Evaluator, error) {
	if err := validateImports(src); err != nil {
		return nil, err
	}
	if packageClause.Find(src) == nil {
		return nil, fmt.Errorf("loader: no package clause")
	}
	prog := packageClause.ReplaceAll(src, []byte("package main"))

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loader: load stdlib: %w", err)
	}
	if _, err := i.Eval(string(prog)); err != nil {
		return nil, fmt.Errorf("loader: evaluate module: %w", err)
	}
	if _, err := i.Eval(bindings(c)); err != nil {
		return nil, fmt.Errorf("loader: bind constants: %w", err)
	}

	v, err := i.Eval("main.dyngenErr")
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if v.IsValid() {
		if cerr, ok := v.Interface().(error); ok && cerr != nil {
			return nil, fmt.Errorf("loader: configure: %w", cerr)
		}
	}

	ev := &Evaluator{}
	if err := lookup(i, "main.dyngenF", &ev.F); err != nil {
		return nil, err
	}
	if err := lookup(i, "main.dyngenA", &ev.A); err != nil {
		return nil, err
	}
	if err := lookup(i, "main.dyngenB", &ev.B); err != nil {
		return nil, err
	}
	if err := lookup(i, "main.dyngenSet", &ev.configure); err != nil {
		return nil, err
	}
	return ev, nil
}

// LoadFile reads and loads a generated module from disk.
func LoadFile(path string, c config.Constants) (*Evaluator, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return Load(src, c)
}

// SetParameters reconfigures the module through its mapping entry point.
func (e *Evaluator) SetParameters(params map[string]any) error {
	return e.configure(params)
}

func lookup[T any](i *interp.Interpreter, name string, dst *T) error {
	v, err := i.Eval(name)
	if err != nil {
		return fmt.Errorf("loader: %s not found: %w", name, err)
	}
	fn, ok := v.Interface().(T)
	if !ok {
		return fmt.Errorf("loader: %s has signature %s", name, v.Type())
	}
	*dst = fn
	return nil
}

// bindings declares the configured instance and host-typed wrappers.
func bindings(c config.Constants) string {
	var b strings.Builder
	b.WriteString("var dyngenDynamics, dyngenErr = New(Constants{\n")
	fmt.Fprintf(&b, "\tAlpha: %s,\n", lit(c.Alpha))
	fmt.Fprintf(&b, "\tRTB: [3]float64{%s},\n", lits(c.RTB[:]))
	b.WriteString("\tJ: [3][3]float64{\n")
	for _, row := range c.J {
		fmt.Fprintf(&b, "\t\t{%s},\n", lits(row[:]))
	}
	b.WriteString("\t},\n")
	fmt.Fprintf(&b, "\tG: [3]float64{%s},\n", lits(c.G[:]))
	b.WriteString("})\n\n")
	b.WriteString(wrappers)
	return b.String()
}

const wrappers = `func dyngenF(x, u []float64) []float64 { return dyngenDynamics.F(x, u) }

func dyngenA(x, u []float64, s float64) [][]float64 { return dyngenDynamics.A(x, u, s) }

func dyngenB(x, u []float64, s float64) [][]float64 { return dyngenDynamics.B(x, u, s) }

func dyngenSet(params map[string]interface{}) error { return dyngenDynamics.SetParameters(params) }
`

func lit(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func lits(fs []float64) string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = lit(f)
	}
	return strings.Join(out, ", ")
}

// validateImports parses only the import declarations of src and rejects
// any path outside allowedImports, whatever its alias.
func validateImports(src []byte) error {
	file, err := parser.ParseFile(token.NewFileSet(), "", src, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("loader: parse imports: %w", err)
	}
	var forbidden []string
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return fmt.Errorf("loader: import %s: %w", spec.Path.Value, err)
		}
		if !allowedImports[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("loader: forbidden imports %v", forbidden)
	}
	return nil
}
