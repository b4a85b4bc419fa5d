package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/reachset/internal/reach"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Steps     int       `json:"steps"`
	Mode      string    `json:"mode"`
	Vars      []string  `json:"vars"`
}

// Save writes the flowpipe as metadata.json plus a bounds.csv with one
// row per step: step, lo/hi per variable, bundle count.
func (s *Store) Save(model, mode string, pipe *reach.Flowpipe) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     model,
		Timestamp: time.Now(),
		Steps:     len(pipe.Steps),
		Mode:      mode,
		Vars:      pipe.Vars,
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

	csvFile, err := os.Create(filepath.Join(runDir, "bounds.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"step"}
	for _, v := range pipe.Vars {
		header = append(header, v+"_lo", v+"_hi")
	}
	header = append(header, "bundles")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, step := range pipe.Steps {
		row := []string{strconv.Itoa(step.Step)}
		for i := range pipe.Vars {
			row = append(row,
				strconv.FormatFloat(step.BoxLo[i], 'f', 6, 64),
				strconv.FormatFloat(step.BoxHi[i], 'f', 6, 64))
		}
		row = append(row, strconv.Itoa(len(step.Bundles)))
		if err := w.Write(row); err != nil {
			return "", err
		}
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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
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

// LoadBounds reads back the per-step interval hull: steps, lower bounds
// and upper bounds per variable.
func (s *Store) LoadBounds(runID string) ([]int, [][]float64, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "bounds.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	if len(records) < 2 {
		return []int{}, [][]float64{}, [][]float64{}, nil
	}

	numVars := (len(records[0]) - 2) / 2

	steps := make([]int, 0, len(records)-1)
	lo := make([][]float64, 0, len(records)-1)
	hi := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 1+2*numVars {
			continue
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		stepLo := make([]float64, numVars)
		stepHi := make([]float64, numVars)
		ok := true
		for i := 0; i < numVars; i++ {
			l, errL := strconv.ParseFloat(record[1+2*i], 64)
			h, errH := strconv.ParseFloat(record[2+2*i], 64)
			if errL != nil || errH != nil {
				ok = false
				break
			}
			stepLo[i] = l
			stepHi[i] = h
		}
		if !ok {
			continue
		}

		steps = append(steps, step)
		lo = append(lo, stepLo)
		hi = append(hi, stepHi)
	}

	return steps, lo, hi, nil
}
