package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MonthlyStats represents analysis counters for a specific month
type MonthlyStats struct {
	Analyses        int            `json:"analyses"`
	StaticFetches   int            `json:"static_fetches"`
	RenderedFetches int            `json:"rendered_fetches"`
	Failures        int            `json:"failures"`
	FailuresByKind  map[string]int `json:"failures_by_kind,omitempty"`
	ScoreTotal      int            `json:"score_total"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// AverageScore is the mean overall score of the month's successful analyses.
func (m MonthlyStats) AverageScore() float64 {
	if m.Analyses == 0 {
		return 0
	}
	return float64(m.ScoreTotal) / float64(m.Analyses)
}

func (m MonthlyStats) clone() MonthlyStats {
	out := m
	if m.FailuresByKind != nil {
		out.FailuresByKind = make(map[string]int, len(m.FailuresByKind))
		for k, v := range m.FailuresByKind {
			out.FailuresByKind[k] = v
		}
	}
	return out
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	saveMutex   sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	stop        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string) (*Storage, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1), // Buffer for write requests
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		now:         time.Now,
	}

	// Load existing stats if file exists
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	// Start background writer
	go s.backgroundWriter()

	return s, nil
}

// load reads statistics from file
func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes statistics to file
func (s *Storage) save() error {
	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write to temporary file first
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	// Rename temporary file to actual file (atomic operation)
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile) // Clean up temp file if rename fails
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// backgroundWriter handles periodic writes to disk
func (s *Storage) backgroundWriter() {
	defer close(s.done)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			// Immediate write requested
			s.saveLogged()
		case <-ticker.C:
			// Periodic write
			s.saveLogged()
		case <-s.stop:
			return
		}
	}
}

func (s *Storage) saveLogged() {
	if err := s.save(); err != nil {
		slog.Warn("failed to persist statistics", "path", s.filePath, "error", err)
	}
}

// Shutdown stops the background writer and writes the statistics one last time.
func (s *Storage) Shutdown() error {
	s.closeOnce.Do(func() { close(s.stop) })
	<-s.done
	return s.save()
}

func (s *Storage) currentMonth() string {
	return s.now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
		// Write requested
	default:
		// Buffer full, write already pending
	}
}

// update applies fn to the current month's counters. Callers must not hold the lock.
func (s *Storage) update(fn func(*MonthlyStats)) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}
	fn(stats)
	stats.LastUpdated = s.now()

	// Request a write if enough time has passed
	if s.now().Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = s.now()
	}
}

// RecordAnalysis counts a successful analysis and the fetch method it used.
func (s *Storage) RecordAnalysis(method string, score int) {
	s.update(func(m *MonthlyStats) {
		m.Analyses++
		m.ScoreTotal += score
		switch method {
		case "static":
			m.StaticFetches++
		case "rendered":
			m.RenderedFetches++
		}
	})
}

// RecordFailure counts a failed analysis by error kind.
func (s *Storage) RecordFailure(kind string) {
	s.update(func(m *MonthlyStats) {
		m.Failures++
		if m.FailuresByKind == nil {
			m.FailuresByKind = make(map[string]int)
		}
		m.FailuresByKind[kind]++
	})
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	month := s.currentMonth()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return stats.clone()
	}
	return MonthlyStats{}
}

// Cleanup keeps the retainMonths most recent calendar months, counting the
// current one, and drops the rest.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := s.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[firstOfMonth.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	s.mutex.Lock()
	removed := 0
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
			removed++
		}
	}
	s.mutex.Unlock()

	// Request a write to persist changes
	s.requestWrite()

	slog.Debug("statistics cleanup", "retain_months", retainMonths, "removed", removed)
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return stats.clone(), true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns a sorted list of all months that have statistics
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}

	// Sort months in descending order (newest first)
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}
