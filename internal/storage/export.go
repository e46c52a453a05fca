package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Metadata   RunMetadata `json:"metadata"`
	Times      []float64   `json:"times"`
	Population []int       `json:"population"`
	Energy     []float64   `json:"energy"`
}

// Export writes a run's metadata and series as one indented JSON document.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{
		Metadata:   *meta,
		Times:      series.Times,
		Population: series.Population,
		Energy:     series.Energy,
	})
}
