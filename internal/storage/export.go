package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dynamo"
)

type ExportData struct {
	Config  config.Config      `json:"config"`
	Steps   int                `json:"steps"`
	Times   []float64          `json:"times"`
	Energy  []float64          `json:"energy"`
	Probe   []float64          `json:"probe"`
	Metrics map[string]float64 `json:"metrics"`
	// Heights holds the interior H of each kept frame, row-major.
	Heights [][]float64 `json:"heights,omitempty"`
}

func NewExportData(cfg *config.Config, result *dynamo.Result) ExportData {
	data := ExportData{
		Config:  *cfg,
		Steps:   result.StepsTaken,
		Times:   result.Times,
		Energy:  result.Energy,
		Probe:   result.Probe,
		Metrics: result.Metrics,
	}
	for _, snap := range result.Snapshots {
		rows, cols := snap.Dims()
		h := make([]float64, 0, rows*cols)
		for r := 0; r < rows; r++ {
			h = append(h, snap.H.RawRowView(r)[:cols]...)
		}
		data.Heights = append(data.Heights, h)
	}
	return data
}

// WriteJSON encodes the run to w. Non-finite values cannot be encoded and
// make it fail, so diverged runs should be exported before they blow up.
func WriteJSON(w io.Writer, cfg *config.Config, result *dynamo.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(cfg, result))
}

func ExportJSON(path string, cfg *config.Config, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, cfg, result)
}
