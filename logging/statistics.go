package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Statistics collects request-level counters for the analyze endpoint.
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`   // IP -> Last Visit Time
	AnalysisRequests int                  `json:"analysisRequests"` // Total number of analysis requests
	ErrorCount       int                  `json:"errorCount"`
	PopularURLs      map[string]int       `json:"popularUrls"` // URL -> Count
	AverageLoadTime  float64              `json:"averageLoadTime"`
	TotalLoadTime    float64              `json:"totalLoadTime"`
	LastPersisted    time.Time            `json:"lastPersisted"`

	path      string
	mutex     sync.RWMutex
	saveMutex sync.Mutex
}

// Summary is the public view of Statistics.
type Summary struct {
	UniqueVisitors24h int            `json:"uniqueVisitors24h"`
	TotalRequests     int            `json:"totalRequests"`
	ErrorRate         float64        `json:"errorRate"`
	AverageLoadTime   float64        `json:"averageLoadTime"`
	PopularURLs       map[string]int `json:"popularUrls,omitempty"`
}

// NewStatistics creates statistics persisted at path. An existing file is
// loaded; an empty path keeps everything in memory.
func NewStatistics(path string) *Statistics {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		LastPersisted:  time.Now(),
		path:           path,
	}
	if err := s.Load(); err != nil {
		slog.Warn("could not load existing statistics", "path", path, "error", err)
	}
	return s
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// cleanURL reduces an analyzed URL to scheme, host and path.
func cleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	// Don't track local targets
	if strings.Contains(u.Host, "localhost") || strings.Contains(u.Host, "127.0.0.1") {
		return ""
	}

	clean := u.Scheme + "://" + strings.ToLower(u.Host)
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}
	return strings.TrimSuffix(clean, "/")
}

// TrackAnalysis records one analysis request.
func (s *Statistics) TrackAnalysis(target string, latency time.Duration, failed bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AnalysisRequests++
	if cleaned := cleanURL(target); cleaned != "" {
		s.PopularURLs[cleaned]++
	}
	if failed {
		s.ErrorCount++
	}

	s.TotalLoadTime += float64(latency.Milliseconds())
	s.AverageLoadTime = s.TotalLoadTime / float64(s.AnalysisRequests)
}

// Requests returns the number of tracked analysis requests.
func (s *Statistics) Requests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AnalysisRequests
}

func (s *Statistics) uniqueVisitorsLocked(since time.Time) int {
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(since) {
			count++
		}
	}
	return count
}

func (s *Statistics) popularURLsLocked(n int) map[string]int {
	type pair struct {
		url   string
		count int
	}
	pairs := make([]pair, 0, len(s.PopularURLs))
	for u, c := range s.PopularURLs {
		pairs = append(pairs, pair{u, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].url < pairs[j].url
	})

	result := make(map[string]int, n)
	for i := 0; i < len(pairs) && i < n; i++ {
		result[pairs[i].url] = pairs[i].count
	}
	return result
}

// Summary returns a snapshot. Popular URLs are only included in dev mode.
func (s *Statistics) Summary(devMode bool) Summary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sum := Summary{
		UniqueVisitors24h: s.uniqueVisitorsLocked(time.Now().Add(-24 * time.Hour)),
		TotalRequests:     s.AnalysisRequests,
		AverageLoadTime:   s.AverageLoadTime,
	}
	if s.AnalysisRequests > 0 {
		sum.ErrorRate = float64(s.ErrorCount) / float64(s.AnalysisRequests) * 100
	}
	if devMode {
		sum.PopularURLs = s.popularURLsLocked(5)
	}
	return sum
}

// Save persists the statistics to disk.
func (s *Statistics) Save() error {
	if s.path == "" {
		return nil
	}

	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()

	s.mutex.Lock()
	s.LastPersisted = time.Now()
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics from disk.
func (s *Statistics) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularURLs == nil {
		s.PopularURLs = make(map[string]int)
	}
	return nil
}
