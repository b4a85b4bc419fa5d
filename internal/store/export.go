package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/reachset/internal/reach"
)

type ExportData struct {
	Model   string      `json:"model"`
	Mode    string      `json:"mode"`
	Steps   int         `json:"steps"`
	Vars    []string    `json:"vars"`
	Lower   [][]float64 `json:"lower"`
	Upper   [][]float64 `json:"upper"`
	Bundles []int       `json:"bundles"`
}

func ExportJSON(path string, model, mode string, pipe *reach.Flowpipe) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, model, mode, pipe)
}

func ExportJSONStdout(model, mode string, pipe *reach.Flowpipe) error {
	return writeExport(os.Stdout, model, mode, pipe)
}

func writeExport(w io.Writer, model, mode string, pipe *reach.Flowpipe) error {
	data := ExportData{
		Model:   model,
		Mode:    mode,
		Steps:   len(pipe.Steps),
		Vars:    pipe.Vars,
		Lower:   make([][]float64, len(pipe.Steps)),
		Upper:   make([][]float64, len(pipe.Steps)),
		Bundles: make([]int, len(pipe.Steps)),
	}

	for i, step := range pipe.Steps {
		data.Lower[i] = step.BoxLo
		data.Upper[i] = step.BoxHi
		data.Bundles[i] = len(step.Bundles)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
