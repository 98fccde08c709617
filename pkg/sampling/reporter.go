/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and logging implementation for sampling run telemetry.
Reporters are notified once per completed estimation run.
*/

package sampling

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RunKind names the estimation strategy of a run.
type RunKind string

const (
	RunPrior     RunKind = "prior"
	RunRejection RunKind = "rejection"
)

// RunSummary describes a completed estimation run.
type RunSummary struct {
	ID                string        `json:"id"`
	Kind              RunKind       `json:"kind"`
	Samples           int           `json:"samples"`
	Matched           int           `json:"matched"` // hits for prior runs, survivors for rejection runs
	Workers           int           `json:"workers"`
	Duration          time.Duration `json:"duration"`
	ResidualFallbacks int64         `json:"residual_fallbacks"`
}

// Reporter receives run summaries.
type Reporter interface {
	OnRunComplete(summary RunSummary)
}

// CollectingReporter keeps every run summary in completion order.
type CollectingReporter struct {
	mu        sync.Mutex
	summaries []RunSummary
}

// NewCollectingReporter creates an empty CollectingReporter.
func NewCollectingReporter() *CollectingReporter {
	return &CollectingReporter{}
}

// OnRunComplete records the summary.
func (r *CollectingReporter) OnRunComplete(summary RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
}

// Summaries returns a copy of the recorded summaries.
func (r *CollectingReporter) Summaries() []RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunSummary, len(r.summaries))
	copy(out, r.summaries)
	return out
}

// LoggerReporter logs run summaries.
type LoggerReporter struct {
	logger logrus.FieldLogger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger logrus.FieldLogger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnRunComplete logs the summary, at warn level when residual mass was hit.
func (r *LoggerReporter) OnRunComplete(summary RunSummary) {
	entry := r.logger.WithFields(logrus.Fields{
		"run_id":   summary.ID,
		"kind":     summary.Kind,
		"samples":  summary.Samples,
		"matched":  summary.Matched,
		"workers":  summary.Workers,
		"duration": summary.Duration,
	})
	if summary.ResidualFallbacks > 0 {
		entry.WithField("residual_fallbacks", summary.ResidualFallbacks).
			Warn("Run completed with residual-mass fallbacks; check that CPT rows sum to 1")
		return
	}
	entry.Info("Run completed")
}
