package metrics

import (
	"time"
)

// StageStats accumulates timings for one pipeline stage
type StageStats struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Average returns the mean duration, or zero when nothing was observed
func (s StageStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Stats tracks frame count and per-stage durations of the capture loop.
// It is used from the loop goroutine only.
type Stats struct {
	started time.Time
	now     func() time.Time
	frames  int
	order   []string
	stages  map[string]*StageStats
}

// NewStats creates an empty tracker starting now
func NewStats() *Stats {
	return newStatsWithClock(time.Now)
}

func newStatsWithClock(now func() time.Time) *Stats {
	return &Stats{
		started: now(),
		now:     now,
		stages:  make(map[string]*StageStats),
	}
}

// Observe records one duration for stage
func (s *Stats) Observe(stage string, d time.Duration) {
	st, ok := s.stages[stage]
	if !ok {
		st = &StageStats{}
		s.stages[stage] = st
		s.order = append(s.order, stage)
	}
	st.Count++
	st.Total += d
	if d > st.Max {
		st.Max = d
	}
}

// Time runs fn and records its duration under stage
func (s *Stats) Time(stage string, fn func() error) error {
	start := s.now()
	err := fn()
	s.Observe(stage, s.now().Sub(start))
	return err
}

// FrameDone counts a fully processed frame
func (s *Stats) FrameDone() {
	s.frames++
}

// Frames returns the number of processed frames
func (s *Stats) Frames() int {
	return s.frames
}

// Stage returns the accumulated timings for stage
func (s *Stats) Stage(stage string) StageStats {
	if st, ok := s.stages[stage]; ok {
		return *st
	}
	return StageStats{}
}

// Stages returns stage names in first-observed order
func (s *Stats) Stages() []string {
	return append([]string(nil), s.order...)
}

// Elapsed returns the time since the tracker was created
func (s *Stats) Elapsed() time.Duration {
	return s.now().Sub(s.started)
}

// FPS returns processed frames per second of wall time
func (s *Stats) FPS() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.frames) / elapsed
}

// Fields flattens the stats for structured logging
func (s *Stats) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"frames":  s.frames,
		"fps":     s.FPS(),
		"elapsed": s.Elapsed().String(),
	}
	for _, name := range s.order {
		fields[name+"_avg"] = s.stages[name].Average().String()
	}
	return fields
}
