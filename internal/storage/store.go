package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	heightFile   = "height.csv"
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
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Config    config.Config      `json:"config"`
	Steps     int                `json:"steps"`
	Frames    int                `json:"frames"`
	Days      float64            `json:"days"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Diverged  bool               `json:"diverged"`
	Metrics   map[string]float64 `json:"metrics"`
	// NonFinite names metrics whose value could not be stored as JSON.
	NonFinite []string `json:"non_finite,omitempty"`
}

// Series is the per-frame scalar history of a stored run.
type Series struct {
	Steps  []int
	Days   []float64
	Energy []float64
	Probe  []float64
}

// Save writes a run directory named <config name>_<unix time>. Height
// frames are only written when the result kept its snapshots.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	runID, runDir, err := s.newRunDir(cfg.Name)
	if err != nil {
		return "", err
	}
	if err := writeRun(runDir, runID, cfg, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// writeRun fills runDir; Save removes the directory if it fails.
func writeRun(runDir, runID string, cfg *config.Config, result *dynamo.Result) error {
	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Config:    *cfg,
		Steps:     result.StepsTaken,
		Frames:    len(result.Times),
		Elapsed:   result.Elapsed.Seconds(),
		Diverged:  result.Diverged(),
		Metrics:   make(map[string]float64, len(result.Metrics)),
	}
	if n := len(result.Times); n > 0 {
		meta.Days = result.Times[n-1] / dynamo.SecondsPerDay
	}
	for name, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, name)
			continue
		}
		meta.Metrics[name] = v
	}
	sort.Strings(meta.NonFinite)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return err
	}
	if len(result.Snapshots) > 0 {
		if err := writeHeights(filepath.Join(runDir, heightFile), result.Snapshots); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, result *dynamo.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	n := len(result.Times)
	if len(result.Steps) != n || len(result.Energy) != n || len(result.Probe) != n {
		return fmt.Errorf("series lengths differ: %d times, %d steps, %d energy, %d probe",
			n, len(result.Steps), len(result.Energy), len(result.Probe))
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "step", "days", "energy", "probe"}); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(result.Steps[i]),
			formatFloat(result.Times[i] / dynamo.SecondsPerDay),
			formatFloat(result.Energy[i]),
			formatFloat(result.Probe[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeHeights(path string, snaps []dynamo.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	rows, cols := snaps[0].Dims()
	w := csv.NewWriter(f)
	header := []string{"frame"}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			header = append(header, fmt.Sprintf("h%d_%d", r, c))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, snap := range snaps {
		row := make([]string, 0, rows*cols+1)
		row = append(row, strconv.Itoa(i))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				row = append(row, formatFloat(snap.H.At(r, c)))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", dynamo.ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := s.readCSV(runID, seriesFile)
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i, record := range records {
		if len(record) < 5 {
			return nil, fmt.Errorf("run %s: series row %d has %d fields", runID, i+1, len(record))
		}
		step, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("run %s: series row %d: %w", runID, i+1, err)
		}
		vals := make([]float64, 3)
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+2], 64); err != nil {
				return nil, fmt.Errorf("run %s: series row %d: %w", runID, i+1, err)
			}
		}
		series.Steps = append(series.Steps, step)
		series.Days = append(series.Days, vals[0])
		series.Energy = append(series.Energy, vals[1])
		series.Probe = append(series.Probe, vals[2])
	}
	return series, nil
}

// LoadFrames returns the stored interior height of every kept frame as a
// rows×cols matrix.
func (s *Store) LoadFrames(runID string) ([]*mat.Dense, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := s.readCSV(runID, heightFile)
	if err != nil {
		return nil, err
	}

	rows, cols := meta.Config.Rows, meta.Config.Cols
	frames := make([]*mat.Dense, 0, len(records))
	for i, record := range records {
		if len(record) != rows*cols+1 {
			return nil, fmt.Errorf("run %s: height row %d has %d fields, want %d", runID, i+1, len(record), rows*cols+1)
		}
		data := make([]float64, rows*cols)
		for j := range data {
			if data[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, fmt.Errorf("run %s: height row %d: %w", runID, i+1, err)
			}
		}
		frames = append(frames, mat.NewDense(rows, cols, data))
	}
	return frames, nil
}

// readCSV returns the records of a run file without its header.
func (s *Store) readCSV(runID, name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", dynamo.ErrRunNotFound, runID, name)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
