package execution

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"batrun/internal/domain"
)

// fakeRunner records invocations and answers with preset exit codes keyed
// by "<file>:<function>@<first arg>", then by function name alone.
type fakeRunner struct {
	mu     sync.Mutex
	codes  map[string]int
	errs   map[string]error
	before func(inv Invocation)
	calls  []Invocation
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{codes: map[string]int{}, errs: map[string]error{}}
}

func callKey(inv Invocation) string {
	file := filepath.Base(inv.Sources[len(inv.Sources)-1])
	return file + ":" + inv.Function + "@" + inv.Args[0]
}

func (r *fakeRunner) Run(_ context.Context, inv Invocation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, inv)
	if r.before != nil {
		r.before(inv)
	}
	key := callKey(inv)
	if err, ok := r.errs[key]; ok {
		return -1, err
	}
	if code, ok := r.codes[key]; ok {
		return code, nil
	}
	return r.codes[inv.Function], nil
}

func (r *fakeRunner) called() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.calls))
	for _, inv := range r.calls {
		keys = append(keys, callKey(inv))
	}
	return keys
}

type progressEvent struct {
	index, total int
	label        string
}

// recordingReporter keeps every event it receives
type recordingReporter struct {
	info     *RunInfo
	progress []progressEvent
	results  []domain.ScopeResult
	summary  *domain.RunStats
	elapsed  time.Duration
}

func (r *recordingReporter) RunStarted(info RunInfo) {
	r.info = &info
}

func (r *recordingReporter) Progress(index, total int, label string) {
	r.progress = append(r.progress, progressEvent{index: index, total: total, label: label})
}

func (r *recordingReporter) ScopeFinished(result domain.ScopeResult) {
	r.results = append(r.results, result)
}

func (r *recordingReporter) Summary(stats domain.RunStats, elapsed time.Duration) {
	r.summary = &stats
	r.elapsed = elapsed
}

// result returns the reported result of a scope
func (r *recordingReporter) result(label string) (domain.ScopeResult, bool) {
	for _, res := range r.results {
		if res.Scope.Label() == label {
			return res, true
		}
	}
	return domain.ScopeResult{}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
