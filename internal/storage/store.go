package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/trail"
)

var ErrNoRun = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunMetadata describes one recorded experiment run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Duration   float64            `json:"duration"`
	Frame      float64            `json:"frame,omitempty"`
	Integrator string             `json:"integrator,omitempty"`
	Phase      string             `json:"phase"`
	Params     dynamo.Params      `json:"params"`
	Measured   map[string]float64 `json:"measured"`
	Labels     map[string]string  `json:"labels,omitempty"`
	Samples    int                `json:"samples"`
}

// Save writes metadata.json and trail.csv under a fresh run directory and
// returns the run id. ID and Timestamp on meta are filled in.
func (s *Store) Save(meta RunMetadata, samples []trail.Sample) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%d", meta.Experiment, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Experiment, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Samples = len(samples)

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrail(filepath.Join(runDir, "trail.csv"), samples); err != nil {
		return "", err
	}
	return runID, nil
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

func writeTrail(path string, samples []trail.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"seq", "x", "y", "z"}); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			strconv.FormatUint(smp.Seq, 10),
			strconv.FormatFloat(smp.Pos.X, 'f', 6, 64),
			strconv.FormatFloat(smp.Pos.Y, 'f', 6, 64),
			strconv.FormatFloat(smp.Pos.Z, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
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

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrail reads trail.csv back. Malformed rows are skipped.
func (s *Store) LoadTrail(runID string) ([]trail.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trail.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []trail.Sample{}, nil
	}

	samples := make([]trail.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		seq, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			continue
		}
		var xyz [3]float64
		ok := true
		for j := range xyz {
			if xyz[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		samples = append(samples, trail.Sample{Seq: seq, Pos: dynamo.V(xyz[0], xyz[1], xyz[2])})
	}
	return samples, nil
}

// Points drops sequence numbers from samples.
func Points(samples []trail.Sample) []dynamo.Vec3 {
	pts := make([]dynamo.Vec3, len(samples))
	for i, s := range samples {
		pts[i] = s.Pos
	}
	return pts
}
