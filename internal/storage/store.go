// Package storage keeps recorded runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/physics"
	"github.com/san-kum/particlefx/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	framesFile   = "frames.msgpack"
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

// RunInfo describes how a run was produced.
type RunInfo struct {
	Name      string             `json:"name"`
	Effect    string             `json:"effect,omitempty"`
	Intensity float64            `json:"intensity,omitempty"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Params    map[string]float64 `json:"params,omitempty"`
	Bounds    *dynamo.Bounds     `json:"bounds,omitempty"`
}

type RunMetadata struct {
	RunInfo
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Peak      int                `json:"peak_population"`
	Frames    bool               `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`

	Interactions physics.Stats `json:"interactions"`
}

// Save writes metadata, the per-tick series and, when the result kept them,
// the msgpack-encoded frames.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(info.Name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		RunInfo:   info,
		ID:        runID,
		Timestamp: time.Now(),
		Steps:     result.StepsTaken,
		Peak:      result.Peak,
		Frames:    len(result.Frames) > 0,
		Metrics:   result.Metrics,

		Interactions: result.Interactions,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if meta.Frames {
		if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	if name == "" {
		name = "run"
	}
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "population", "energy"}); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.Itoa(result.Population[i]),
			strconv.FormatFloat(result.Energy[i], 'g', 10, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeFrames(path string, frames []dynamo.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return msgpack.NewEncoder(f).Encode(frames)
}

// List returns every readable run, oldest first.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Series is the per-tick record of a run.
type Series struct {
	Times      []float64
	Population []int
	Energy     []float64
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	out := &Series{}
	for i := 1; i < len(records); i++ {
		t, err1 := strconv.ParseFloat(records[i][0], 64)
		n, err2 := strconv.Atoi(records[i][1])
		e, err3 := strconv.ParseFloat(records[i][2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		out.Times = append(out.Times, t)
		out.Population = append(out.Population, n)
		out.Energy = append(out.Energy, e)
	}
	return out, nil
}

func (s *Store) LoadFrames(runID string) ([]dynamo.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var frames []dynamo.Snapshot
	if err := msgpack.NewDecoder(f).Decode(&frames); err != nil {
		return nil, fmt.Errorf("run %s frames: %w", runID, err)
	}
	return frames, nil
}
