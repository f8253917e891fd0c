package execution

import (
	"time"

	"batrun/internal/domain"
)

// RunInfo describes a run about to start
type RunInfo struct {
	ID        string
	RunDir    string
	Devices   []string
	Units     int
	Planned   int
	DryRun    bool
	StartedAt time.Time
}

// Reporter receives the events of a run
type Reporter interface {
	RunStarted(info RunInfo)
	// Progress is emitted before each test with its 1-based index
	Progress(index, total int, label string)
	ScopeFinished(result domain.ScopeResult)
	Summary(stats domain.RunStats, elapsed time.Duration)
}

// Reporters forwards every event to each of its reporters in order
type Reporters []Reporter

func (rs Reporters) RunStarted(info RunInfo) {
	for _, r := range rs {
		r.RunStarted(info)
	}
}

func (rs Reporters) Progress(index, total int, label string) {
	for _, r := range rs {
		r.Progress(index, total, label)
	}
}

func (rs Reporters) ScopeFinished(result domain.ScopeResult) {
	for _, r := range rs {
		r.ScopeFinished(result)
	}
}

func (rs Reporters) Summary(stats domain.RunStats, elapsed time.Duration) {
	for _, r := range rs {
		r.Summary(stats, elapsed)
	}
}
