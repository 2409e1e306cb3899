package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ExportData is the JSON form of one evaluated matrix.
type ExportData struct {
	Matrix  string      `json:"matrix"`
	Preset  string      `json:"preset"`
	Rows    int         `json:"rows"`
	Cols    int         `json:"cols"`
	State   []float64   `json:"state"`
	Control []float64   `json:"control"`
	Scale   float64     `json:"scale"`
	Values  [][]float64 `json:"values"`
}

// NewExportData copies values row by row.
func NewExportData(matrix, preset string, x, u []float64, s float64, values mat.Matrix) ExportData {
	r, c := values.Dims()
	data := ExportData{
		Matrix:  matrix,
		Preset:  preset,
		Rows:    r,
		Cols:    c,
		State:   x,
		Control: u,
		Scale:   s,
		Values:  make([][]float64, r),
	}
	for i := range data.Values {
		data.Values[i] = make([]float64, c)
		for j := range data.Values[i] {
			data.Values[i][j] = values.At(i, j)
		}
	}
	return data
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes values with a leading row-index column and a c0..cN
// header.
func ExportCSV(path string, values mat.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, values); err != nil {
		return err
	}
	return file.Close()
}

func WriteCSV(w io.Writer, values mat.Matrix) error {
	cw := csv.NewWriter(w)
	r, c := values.Dims()

	header := []string{"row"}
	for j := 0; j < c; j++ {
		header = append(header, fmt.Sprintf("c%d", j))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < r; i++ {
		row := []string{strconv.Itoa(i)}
		for j := 0; j < c; j++ {
			row = append(row, strconv.FormatFloat(values.At(i, j), 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
