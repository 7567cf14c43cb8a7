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

	"github.com/google/uuid"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/robot"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
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
	ID            string             `json:"id"`
	Preset        string             `json:"preset"`
	Timestamp     time.Time          `json:"timestamp"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Elapsed       float64            `json:"elapsed"`
	Ticks         int                `json:"ticks"`
	Damping       float64            `json:"damping"`
	StepSize      float64            `json:"step_size"`
	RefreshPeriod int                `json:"refresh_period"`
	Refreshes     []int              `json:"refreshes"`
	Stats         metrics.Summary    `json:"dq_stats"`
	Metrics       map[string]float64 `json:"metrics"`
	Error         string             `json:"error,omitempty"`
}

// NewMetadata describes a finished run. runErr may be nil.
func NewMetadata(preset string, cfg control.Config, result *control.Result, runErr error) RunMetadata {
	meta := RunMetadata{
		Preset:        preset,
		Timestamp:     time.Now(),
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Damping:       cfg.Damping,
		StepSize:      cfg.StepSize,
		RefreshPeriod: cfg.RefreshPeriod,
	}
	if result != nil {
		meta.Elapsed = result.Elapsed
		meta.Ticks = result.Ticks
		meta.Refreshes = result.Refreshes
		meta.Stats = result.Stats
		meta.Metrics = result.Metrics
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	return meta
}

// Save writes meta and samples under a fresh run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, samples []metrics.Sample) (string, error) {
	runID := fmt.Sprintf("%s_%s_%s", meta.Preset, meta.Timestamp.Format("20060102-150405"), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(header()); err != nil {
		return "", err
	}
	for _, sample := range samples {
		if err := w.Write(row(sample)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func header() []string {
	h := []string{"tick", "time"}
	for i := 1; i <= robot.NumJoints; i++ {
		h = append(h, fmt.Sprintf("q%d", i))
	}
	h = append(h, "px", "py", "pz", "dx", "dy", "dz")
	for i := 1; i <= robot.NumJoints; i++ {
		h = append(h, fmt.Sprintf("dq%d", i))
	}
	return append(h, "raw_norm", "dq_norm", "refreshed")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func row(s metrics.Sample) []string {
	r := []string{strconv.Itoa(s.Tick), formatFloat(s.Time)}
	for _, q := range s.Joints {
		r = append(r, formatFloat(q))
	}
	r = append(r,
		formatFloat(s.Tip.X), formatFloat(s.Tip.Y), formatFloat(s.Tip.Z),
		formatFloat(s.Dx.X), formatFloat(s.Dx.Y), formatFloat(s.Dx.Z),
	)
	for _, d := range s.Dq {
		r = append(r, formatFloat(d))
	}
	return append(r, formatFloat(s.RawNorm), formatFloat(s.DqNorm), strconv.FormatBool(s.Refreshed))
}

// List returns the stored runs, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
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
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		sample, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", ticksFile, i+2, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func parseRow(record []string) (metrics.Sample, error) {
	var s metrics.Sample
	if want := len(header()); len(record) != want {
		return s, fmt.Errorf("expected %d fields, got %d", want, len(record))
	}

	tick, err := strconv.Atoi(record[0])
	if err != nil {
		return s, err
	}
	s.Tick = tick

	vals := make([]float64, len(record)-2)
	for j := 1; j < len(record)-1; j++ {
		v, err := strconv.ParseFloat(record[j], 64)
		if err != nil {
			return s, err
		}
		vals[j-1] = v
	}
	refreshed, err := strconv.ParseBool(record[len(record)-1])
	if err != nil {
		return s, err
	}

	n := robot.NumJoints
	s.Time = vals[0]
	copy(s.Joints[:], vals[1:1+n])
	s.Tip = robot.CartesianVector{X: vals[1+n], Y: vals[2+n], Z: vals[3+n]}
	s.Dx = robot.CartesianVector{X: vals[4+n], Y: vals[5+n], Z: vals[6+n]}
	copy(s.Dq[:], vals[7+n:7+2*n])
	s.RawNorm = vals[7+2*n]
	s.DqNorm = vals[8+2*n]
	s.Refreshed = refreshed
	return s, nil
}
