package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/dyngen/internal/expr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

func randomUnitQuaternion(rng *rand.Rand) quat.Number {
	q := quat.Number{Real: rng.NormFloat64(), Imag: rng.NormFloat64(), Jmag: rng.NormFloat64(), Kmag: rng.NormFloat64()}
	return quat.Scale(1/quat.Abs(q), q)
}

func components(q quat.Number) [4]float64 {
	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

func TestQuaternionRateZero(t *testing.T) {
	om := QuaternionRateDense([3]float64{})
	if !mat.Equal(om, mat.NewDense(4, 4, nil)) {
		t.Errorf("Ω(0) should be zero, got\n%v", mat.Formatted(om))
	}
}

func TestQuaternionRateSkew(t *testing.T) {
	om := QuaternionRateDense([3]float64{0.3, -1.2, 2.5})
	var sum mat.Dense
	sum.Add(om, om.T())
	if !mat.EqualApprox(&sum, mat.NewDense(4, 4, nil), 0) {
		t.Error("Ω(w) should be skew-symmetric")
	}
	if om.At(1, 0) != 0.3 || om.At(2, 3) != 0.3 || om.At(3, 2) != -0.3 {
		t.Errorf("unexpected layout:\n%v", mat.Formatted(om))
	}
}

func TestRotationIdentity(t *testing.T) {
	r := RotationDense([4]float64{1, 0, 0, 0})
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})
	if !mat.Equal(r, eye) {
		t.Errorf("identity attitude should give I3, got\n%v", mat.Formatted(r))
	}
}

func TestRotationOrthogonal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})

	for i := 0; i < 100; i++ {
		r := RotationDense(components(randomUnitQuaternion(rng)))
		var rrt mat.Dense
		rrt.Mul(r, r.T())
		if !mat.EqualApprox(&rrt, eye, 1e-12) {
			t.Fatalf("R·Rᵗ != I for sample %d:\n%v", i, mat.Formatted(&rrt))
		}
	}
}

func TestRotationMatchesQuaternionProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 50; i++ {
		q := randomUnitQuaternion(rng)
		v := [3]float64{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}

		// body to inertial: conj(q)·v·q
		p := quat.Mul(quat.Mul(quat.Conj(q), quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}), q)
		want := [3]float64{p.Imag, p.Jmag, p.Kmag}

		got := MatVec3[float64](Numeric{}, BodyToInertial[float64](Numeric{}, components(q)), v)
		for k := range got {
			if math.Abs(got[k]-want[k]) > 1e-12 {
				t.Fatalf("sample %d component %d: got %v, want %v", i, k, got[k], want[k])
			}
		}
	}
}

func TestSymbolicAgreesWithNumeric(t *testing.T) {
	qs := expr.Symbols("q0", "q1", "q2", "q3")
	ws := expr.Symbols("w0", "w1", "w2")

	rot := BodyToInertial[expr.Expr](Symbolic{}, [4]expr.Expr{qs[0], qs[1], qs[2], qs[3]})
	om := QuaternionRate[expr.Expr](Symbolic{}, [3]expr.Expr{ws[0], ws[1], ws[2]})

	q := [4]float64{0.5, 0.5, -0.5, 0.5}
	w := [3]float64{0.1, -0.2, 0.3}
	env := expr.Env{"q0": q[0], "q1": q[1], "q2": q[2], "q3": q[3], "w0": w[0], "w1": w[1], "w2": w[2]}

	wantRot := RotationDense(q)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			got, err := expr.Eval(rot[i][j], env)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-wantRot.At(i, j)) > 1e-15 {
				t.Errorf("R[%d,%d] = %v, want %v", i, j, got, wantRot.At(i, j))
			}
		}
	}

	wantOm := QuaternionRateDense(w)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			got, err := expr.Eval(om[i][j], env)
			if err != nil {
				t.Fatal(err)
			}
			if got != wantOm.At(i, j) {
				t.Errorf("Ω[%d,%d] = %v, want %v", i, j, got, wantOm.At(i, j))
			}
		}
	}

	if !expr.IsZero(om[0][0]) || !expr.IsZero(om[3][3]) {
		t.Error("Ω diagonal should be the literal zero")
	}
}

func TestCross(t *testing.T) {
	got := Cross[float64](Numeric{}, [3]float64{1, 0, 0}, [3]float64{0, 1, 0})
	if got != [3]float64{0, 0, 1} {
		t.Errorf("x × y = %v, want z", got)
	}
}
