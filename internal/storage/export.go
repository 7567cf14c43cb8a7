package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/ikdrive/internal/metrics"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples []ExportTick `json:"ticks"`
}

type ExportTick struct {
	Tick      int        `json:"tick"`
	Time      float64    `json:"time"`
	Joints    []float64  `json:"q"`
	Tip       [3]float64 `json:"p"`
	Dx        [3]float64 `json:"dx"`
	Dq        []float64  `json:"dq"`
	DqNorm    float64    `json:"dq_norm"`
	Refreshed bool       `json:"jacobian_refreshed"`
}

func NewExport(meta RunMetadata, samples []metrics.Sample) ExportData {
	data := ExportData{Run: meta, Samples: make([]ExportTick, len(samples))}
	for i, s := range samples {
		data.Samples[i] = ExportTick{
			Tick:      s.Tick,
			Time:      s.Time,
			Joints:    s.Joints.Slice(),
			Tip:       [3]float64{s.Tip.X, s.Tip.Y, s.Tip.Z},
			Dx:        [3]float64{s.Dx.X, s.Dx.Y, s.Dx.Z},
			Dq:        s.Dq.Slice(),
			DqNorm:    s.DqNorm,
			Refreshed: s.Refreshed,
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes data to path, or to stdout when path is "-".
func ExportJSON(path string, data ExportData) error {
	if path == "-" {
		return WriteJSON(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}
