package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Store keeps one directory per saved run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one evaluation or check run.
type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Matrix    string             `json:"matrix,omitempty"`
	Rows      int                `json:"rows"`
	Cols      int                `json:"cols"`
	State     []float64          `json:"state,omitempty"`
	Control   []float64          `json:"control,omitempty"`
	Scale     float64            `json:"scale"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes meta and, when values is non-nil, the matrix entries. The
// run ID, timestamp and shape are filled in.
func (s *Store) Save(meta RunMetadata, values mat.Matrix) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s_%d", meta.Kind, meta.Matrix, now.UnixNano())
	if meta.Matrix == "" {
		runID = fmt.Sprintf("%s_%d", meta.Kind, now.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	if values != nil {
		meta.Rows, meta.Cols = values.Dims()
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if values == nil {
		return runID, nil
	}
	if err := ExportCSV(filepath.Join(runDir, "values.csv"), values); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadValues reads back the matrix saved with a run.
func (s *Store) LoadValues(runID string) (*mat.Dense, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "values.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &mat.Dense{}, nil
	}

	rows, cols := len(records)-1, len(records[0])-1
	out := mat.NewDense(rows, cols, nil)
	for i, record := range records[1:] {
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("values.csv row %d: %w", i+1, err)
			}
			out.Set(i, j-1, v)
		}
	}
	return out, nil
}
