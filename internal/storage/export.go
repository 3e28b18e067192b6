package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/labsim/internal/trail"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples [][4]float64 `json:"samples"`
}

func newExport(meta RunMetadata, samples []trail.Sample) ExportData {
	data := ExportData{Run: meta, Samples: make([][4]float64, len(samples))}
	for i, s := range samples {
		data.Samples[i] = [4]float64{float64(s.Seq), s.Pos.X, s.Pos.Y, s.Pos.Z}
	}
	return data
}

// ExportJSON writes a run and its trail as one JSON document.
func ExportJSON(path string, meta RunMetadata, samples []trail.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, samples)
}

func WriteJSON(w io.Writer, meta RunMetadata, samples []trail.Sample) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExport(meta, samples))
}
