package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/odyn/internal/ode"
)

// Store persists runs under a base directory: one subdirectory per run with
// metadata.json and states.csv.
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
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Method      string             `json:"method"`
	Timestamp   time.Time          `json:"timestamp"`
	T0          float64            `json:"t0"`
	TF          float64            `json:"tf"`
	Status      string             `json:"status"`
	Steps       int                `json:"steps"`
	Rejected    int                `json:"rejected"`
	Warnings    int                `json:"warnings"`
	FinalParams map[string]float64 `json:"final_params,omitempty"`
}

func (s *Store) Save(model, method string, sol *ode.Solution) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var t0, tf float64
	if sol.Len() > 0 {
		t0 = sol.Times[0]
		tf, _ = sol.Last()
	}
	meta := RunMetadata{
		ID:          runID,
		Model:       model,
		Method:      method,
		Timestamp:   time.Now(),
		T0:          t0,
		TF:          tf,
		Status:      sol.Status.String(),
		Steps:       sol.Stats.Steps,
		Rejected:    sol.Stats.Rejected,
		Warnings:    len(sol.Warnings),
		FinalParams: sol.FinalParams,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "states.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if sol.Len() == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range sol.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range sol.States {
		row := []string{strconv.FormatFloat(sol.Times[i], 'g', 17, 64)}
		for _, val := range sol.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 17, 64))
		}
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads a saved trajectory back as (states, times).
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}
	return states, times, nil
}
