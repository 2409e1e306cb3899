package main

import (
	"errors"
	"math"
	"testing"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/storage"
)

func TestSampleFromFlagsRejectsNonFinite(t *testing.T) {
	defer func() { stateVals, controlVals, scale = nil, nil, 1 }()

	scale = 1
	if _, err := sampleFromFlags(); err != nil {
		t.Fatalf("default sample rejected: %v", err)
	}

	controlVals = []float64{math.NaN(), 0, 0}
	if _, err := sampleFromFlags(); !errors.Is(err, dynamo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}

	controlVals = nil
	stateVals = []float64{1, 2}
	if _, err := sampleFromFlags(); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRunSweepRejectsNonFiniteRange(t *testing.T) {
	defer func() { sweepIndex, sweepEntry, sweepFrom, sweepTo, sweepU = 11, 11, -1, 1, nil }()

	sweepIndex, sweepEntry = 11, 11
	sweepFrom, sweepTo = math.Inf(-1), 1
	sweepU = []float64{1, 0.1, 0}
	if err := runSweep(&cobra.Command{}, nil); err == nil {
		t.Error("expected error for infinite sweep range")
	}

	sweepFrom = -1
	sweepU = []float64{1, math.Inf(1), 0}
	if err := runSweep(&cobra.Command{}, nil); !errors.Is(err, dynamo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestShowRun(t *testing.T) {
	defer func(dir string) { dataDir = dir }(dataDir)
	dataDir = t.TempDir()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	runID, err := st.Save(storage.RunMetadata{Kind: "eval", Preset: "default", Matrix: "B", Scale: 1},
		mat.NewDense(2, 2, []float64{1, 0, 0, -0.1}))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	checkID, err := st.Save(storage.RunMetadata{Kind: "check", Preset: "default",
		Metrics: map[string]float64{"A_(symbolic)": 1e-8}}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := showRun(&cobra.Command{}, []string{runID}); err != nil {
		t.Errorf("show %s: %v", runID, err)
	}
	if err := showRun(&cobra.Command{}, []string{checkID}); err != nil {
		t.Errorf("show %s: %v", checkID, err)
	}
	if err := showRun(&cobra.Command{}, []string{"missing"}); err == nil {
		t.Error("expected error for unknown run")
	}
}
