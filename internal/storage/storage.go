/*
PURPOSE:
  Persists benchmark runs as JSON files under a storage directory and
  loads them back for baseline comparison.
  File naming: NNNN_tag.json with a monotonically increasing counter, so
  "latest" and "run number 12" are both well-defined references.

REQUIREMENTS:
  User-specified:
  - Save the current run under --save NAME or --autosave.
  - --save-data additionally persists the raw per-round durations.
  - Comparison loads a run by counter, by path, or the latest.

  Implementation-discovered:
  - The counter must be derived from existing filenames at save time;
    holding it in memory would race with other invocations of the tool.

ARCHITECTURE INTEGRATION:
  - Called by: internal/session, internal/cli
  - The comparator consumes SavedRun read-only; it never touches files.

ERROR HANDLING:
  - Explicit errors for unreadable directories/files and unmatched refs.
  - A missing storage directory on load is reported, not auto-created;
    on save it is created.

USAGE:
  st := storage.New("./.benchmarks")
  path, err := st.Save(run, "pre-refactor")
  baseline, src, err := st.LoadRef("") // latest

RELATED FILES:
  - internal/compare/compare.go (reader of SavedRun)
  - internal/session/session.go (writer)

MAINTENANCE:
  - Schema changes bump model.Version and need a note in the README.
*/

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/benchpress/benchpress/internal/config"
)

// SavedBenchmark is the persisted record of one benchmark.
// Stats is the label -> value mapping exported by the stats engine.
type SavedBenchmark struct {
	Group    string             `json:"group"`
	Name     string             `json:"name"`
	FullName string             `json:"fullname"`
	Params   map[string]string  `json:"params,omitempty"`
	Options  config.Options     `json:"options"`
	Loops    int                `json:"loops"`
	Stats    map[string]float64 `json:"stats"`
	Data     []float64          `json:"data,omitempty"`
}

// SavedRun is the persisted record of one whole session.
type SavedRun struct {
	MachineInfo map[string]string `json:"machine_info"`
	CommitInfo  map[string]string `json:"commit_info"`
	DateTime    string            `json:"datetime"`
	Version     string            `json:"version"`
	Benchmarks  []SavedBenchmark  `json:"benchmarks"`
}

// Find returns the benchmark with the given fullname, or nil when the
// run holds no such benchmark.
func (r *SavedRun) Find(fullname string) *SavedBenchmark {
	for i := range r.Benchmarks {
		if r.Benchmarks[i].FullName == fullname {
			return &r.Benchmarks[i]
		}
	}
	return nil
}

var counterPattern = regexp.MustCompile(`^(\d{4})_.+\.json$`)

// Storage is a directory of saved runs.
type Storage struct {
	Dir string
}

// New returns a Storage rooted at dir.
func New(dir string) *Storage {
	return &Storage{Dir: dir}
}

// List returns the saved run filenames in counter order.
func (s *Storage) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read storage directory %s: %w", s.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && counterPattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Save writes the run as the next-numbered file "NNNN_name.json".
func (s *Storage) Save(run *SavedRun, name string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory %s: %w", s.Dir, err)
	}
	next, err := s.nextCounter()
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%04d_%s.json", next, name))

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Load reads one saved run from an explicit path.
func (s *Storage) Load(path string) (*SavedRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved run %s: %w", path, err)
	}
	var run SavedRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse saved run %s: %w", path, err)
	}
	return &run, nil
}

// LoadRef resolves a baseline reference and loads it:
//   - ""          -> the latest saved run
//   - digits      -> the run with that counter (e.g. "3" matches 0003_*)
//   - anything else -> treated as a file path
//
// Returns the run and the path it came from.
func (s *Storage) LoadRef(ref string) (*SavedRun, string, error) {
	if ref != "" && !isDigits(ref) {
		run, err := s.Load(ref)
		return run, ref, err
	}

	names, err := s.List()
	if err != nil {
		return nil, "", err
	}
	if len(names) == 0 {
		return nil, "", fmt.Errorf("no saved runs in %s", s.Dir)
	}

	var chosen string
	if ref == "" {
		chosen = names[len(names)-1]
	} else {
		n, _ := strconv.Atoi(ref)
		prefix := fmt.Sprintf("%04d_", n)
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				chosen = name
				break
			}
		}
		if chosen == "" {
			return nil, "", fmt.Errorf("no saved run %q in %s", ref, s.Dir)
		}
	}
	path := filepath.Join(s.Dir, chosen)
	run, err := s.Load(path)
	return run, path, err
}

// nextCounter scans existing filenames and returns max+1 (starting at 1).
func (s *Storage) nextCounter() (int, error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}
	next := 1
	for _, name := range names {
		m := counterPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return next, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
