package codegen_test

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/san-kum/dyngen/internal/codegen"
	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/rocket"
)

var _ = Describe("Generator", func() {
	var (
		gen *codegen.Generator
		src []byte
	)

	BeforeEach(func() {
		var err error
		gen, err = codegen.New(symbolic)
		Expect(err).NotTo(HaveOccurred())
		src, err = gen.Source()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Source", func() {
		It("is byte-identical across runs", func() {
			again, err := gen.Source()
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(src))

			other, err := codegen.New(symbolic)
			Expect(err).NotTo(HaveOccurred())
			fresh, err := other.Source()
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh).To(Equal(src))
		})

		It("carries a verifiable header", func() {
			Expect(string(src)).To(HavePrefix(codegen.Header + "\n" + codegen.DigestPrefix))
			Expect(codegen.Verify(src)).To(BeTrue())

			tampered := []byte(strings.Replace(string(src), "return out", "return nil", 1))
			Expect(codegen.Verify(tampered)).To(BeFalse())
		})

		It("parses as a Go file declaring the evaluator surface", func() {
			file, err := parser.ParseFile(token.NewFileSet(), "dynamics_functions.go", src, parser.ParseComments)
			Expect(err).NotTo(HaveOccurred())
			Expect(file.Name.Name).To(Equal(config.DefaultPackage))

			var funcs []string
			for _, decl := range file.Decls {
				if fn, ok := decl.(*ast.FuncDecl); ok {
					funcs = append(funcs, fn.Name.Name)
				}
			}
			Expect(funcs).To(ContainElements("New", "Configure", "SetParameters", "F", "A", "B"))

			var imports []string
			for _, imp := range file.Imports {
				imports = append(imports, imp.Path.Value)
			}
			Expect(imports).To(ConsistOf(`"fmt"`, `"math"`))
		})

		It("emits F before A before B", func() {
			text := string(src)
			f := strings.Index(text, "func (d *Dynamics) F(")
			a := strings.Index(text, "func (d *Dynamics) A(")
			b := strings.Index(text, "func (d *Dynamics) B(")
			Expect(f).To(BeNumerically(">", 0))
			Expect(a).To(BeNumerically(">", f))
			Expect(b).To(BeNumerically(">", a))
		})

		It("uses the requested package name", func() {
			named, err := codegen.New(symbolic, codegen.WithPackage("vehicle"))
			Expect(err).NotTo(HaveOccurred())
			out, err := named.Source()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(ContainSubstring("\npackage vehicle\n"))
		})

		It("reads inertia through the configured tensor", func() {
			text := string(src)
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					Expect(text).NotTo(ContainSubstring(rocket.InertiaSymbol(i, j)))
				}
			}
			Expect(text).To(ContainSubstring("J[0][0]"))
			Expect(text).To(ContainSubstring("J := d.J"))
		})

		It("assigns the velocity kinematics directly", func() {
			text := string(src)
			Expect(text).To(ContainSubstring("out[1] = v0\n"))
			Expect(text).To(ContainSubstring("out[1][4] = s\n"))
		})
	})

	Describe("Sparsity", func() {
		for _, m := range rocket.Matrices {
			It(fmt.Sprintf("matches the literal-zero mask of %s", m), func() {
				mask := gen.Sparsity(m)
				zero := symbolic.ZeroMask(m)
				rows, cols := m.Shape()
				Expect(mask).To(HaveLen(rows))

				text := string(src)
				for i := 0; i < rows; i++ {
					Expect(mask[i]).To(HaveLen(cols))
					for j := 0; j < cols; j++ {
						Expect(mask[i][j]).To(Equal(!zero[i][j]), "entry %s[%d,%d]", m, i, j)
					}
				}
				Expect(assignments(text, m)).To(Equal(count(mask)))
			})
		}
	})

	Describe("New", func() {
		It("refuses numerically bound instances", func() {
			numeric, err := rocket.New(context.Background(),
				rocket.NumericConfiguration{Constants: config.Presets["default"].Constants}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = codegen.New(numeric)
			Expect(err).To(MatchError(dynamo.ErrCodegenDisabled))
		})

		It("rejects a package name that is not an identifier", func() {
			_, err := codegen.New(symbolic, codegen.WithPackage("rocket-dyn"))
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})
	})

	Describe("WriteFile", func() {
		It("creates parent directories and writes the source", func() {
			path := filepath.Join(GinkgoT().TempDir(), "gen", "dynamics_functions.go")
			Expect(gen.WriteFile(path)).To(Succeed())

			written, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(written).To(Equal(src))
		})

		It("overwrites an existing file wholesale", func() {
			path := filepath.Join(GinkgoT().TempDir(), "dynamics_functions.go")
			Expect(os.WriteFile(path, []byte(strings.Repeat("stale\n", 100000)), 0o644)).To(Succeed())
			Expect(gen.WriteFile(path)).To(Succeed())

			written, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(written).To(Equal(src))
		})

		It("wraps write failures", func() {
			dir := GinkgoT().TempDir()
			blocker := filepath.Join(dir, "blocker")
			Expect(os.WriteFile(blocker, nil, 0o644)).To(Succeed())

			err := gen.WriteFile(filepath.Join(blocker, "dynamics_functions.go"))
			Expect(err).To(MatchError(dynamo.ErrGenerationIO))
		})
	})
})

// assignments counts output assignments inside the evaluator for m.
func assignments(src string, m rocket.Matrix) int {
	start := strings.Index(src, fmt.Sprintf("func (d *Dynamics) %s(", strings.ToUpper(string(m))))
	body := src[start:]
	body = body[:strings.Index(body, "\n}\n")]
	return strings.Count(body, "\tout[")
}

func count(mask [][]bool) int {
	n := 0
	for _, row := range mask {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}
