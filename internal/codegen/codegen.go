package codegen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
	"github.com/san-kum/dyngen/internal/rocket"
	"go.uber.org/zap"
)

// Header is the first line of every generated file.
const Header = "// Code generated by dyngen. DO NOT EDIT."

// DigestPrefix starts the second header line, followed by the hex sha256
// of everything after the header.
const DigestPrefix = "// Source digest: sha256:"

type Option func(*Generator)

// WithPackage sets the package clause of the generated file.
func WithPackage(name string) Option {
	return func(g *Generator) { g.pkg = name }
}

func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// Generator renders the matrices of one symbolic instance.
type Generator struct {
	pkg string
	log *zap.Logger

	lowered map[rocket.Matrix][][]expr.Expr
}

// New lowers the matrices of d. Numerically bound instances are rejected
// with dynamo.ErrCodegenDisabled.
func New(d *rocket.Dynamics, opts ...Option) (*Generator, error) {
	if !d.Symbolic() {
		return nil, dynamo.ErrCodegenDisabled
	}
	g := &Generator{
		pkg:     config.DefaultPackage,
		log:     zap.NewNop(),
		lowered: make(map[rocket.Matrix][][]expr.Expr, len(rocket.Matrices)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if !token.IsIdentifier(g.pkg) {
		return nil, &dynamo.ConfigError{Key: "package", Want: "Go identifier"}
	}

	known := knownSymbols()
	for _, m := range rocket.Matrices {
		rows := lower(d.Entries(m))
		for _, row := range rows {
			for _, e := range row {
				for _, name := range expr.FreeSymbols(e) {
					if !known[name] {
						return nil, &dynamo.UnresolvedSymbolError{Name: name}
					}
				}
			}
		}
		g.lowered[m] = rows
	}
	return g, nil
}

func knownSymbols() map[string]bool {
	known := map[string]bool{rocket.ScaleName: true, rocket.AlphaName: true}
	for _, n := range rocket.StateNames {
		known[n] = true
	}
	for _, n := range rocket.ControlNames {
		known[n] = true
	}
	for i := 0; i < 3; i++ {
		known[rocket.RTBNames[i]] = true
		known[rocket.GravityNames[i]] = true
	}
	return known
}

// Sparsity marks the entries of m the generated evaluator assigns.
func (g *Generator) Sparsity(m rocket.Matrix) [][]bool {
	rows := g.lowered[m]
	mask := make([][]bool, len(rows))
	for i, row := range rows {
		mask[i] = make([]bool, len(row))
		for j, e := range row {
			mask[i][j] = !expr.IsZero(e)
		}
	}
	return mask
}

// Source renders the complete file, header included.
func (g *Generator) Source() ([]byte, error) {
	var w writer
	w.preamble(g.pkg)
	w.evaluator(rocket.MatrixF, g.lowered[rocket.MatrixF])
	w.evaluator(rocket.MatrixA, g.lowered[rocket.MatrixA])
	w.evaluator(rocket.MatrixB, g.lowered[rocket.MatrixB])

	body, err := format.Source(w.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	sum := sha256.Sum256(body)

	var out bytes.Buffer
	out.WriteString(Header + "\n")
	out.WriteString(DigestPrefix + hex.EncodeToString(sum[:]) + "\n\n")
	out.Write(body)
	return out.Bytes(), nil
}

// WriteFile renders the file and writes it to path, replacing any existing
// file. Failures to write wrap dynamo.ErrGenerationIO.
func (g *Generator) WriteFile(path string) error {
	src, err := g.Source()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrGenerationIO, err)
		}
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrGenerationIO, err)
	}

	g.log.Info("module generated",
		zap.String("path", path),
		zap.String("package", g.pkg),
		zap.Int("bytes", len(src)))
	return nil
}

// Verify reports whether src carries a digest matching its body.
func Verify(src []byte) bool {
	head, body, ok := bytes.Cut(src, []byte("\n\n"))
	if !ok {
		return false
	}
	lines := strings.Split(string(head), "\n")
	if len(lines) != 2 || lines[0] != Header || !strings.HasPrefix(lines[1], DigestPrefix) {
		return false
	}
	sum := sha256.Sum256(body)
	return strings.TrimPrefix(lines[1], DigestPrefix) == hex.EncodeToString(sum[:])
}
