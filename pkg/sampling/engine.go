/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Sampling engine. Owns an immutable network, splits each estimation run across
a pool of workers with independent random streams, merges their results in worker order,
and reports run summaries and statistics.
*/

package sampling

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bayesnet-sampler/pkg/network"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	Workers int   `json:"workers"` // parallel workers per run (0 = number of CPUs)
	Seed    int64 `json:"seed"`    // base seed (0 = derived from the clock)
}

// Validate checks the configuration.
func (c *EngineConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Engine runs estimation queries against one network. It is safe for
// concurrent use. A fixed (Seed, Workers) pair reproduces the same sequence
// of results.
type Engine struct {
	net    *network.Network
	config EngineConfig
	logger logrus.FieldLogger
	stats  *Stats
	runs   uint64

	reportersMu sync.Mutex
	reporters   []Reporter

	// Single draws share one stream.
	drawMu      sync.Mutex
	drawSampler *Sampler
}

// NewEngine creates an engine over net. A nil config uses the defaults.
func NewEngine(net *network.Network, config *EngineConfig, logger logrus.FieldLogger) (*Engine, error) {
	if net == nil {
		return nil, fmt.Errorf("network is required")
	}
	cfg := EngineConfig{}
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}

	e := &Engine{
		net:    net,
		config: cfg,
		logger: logger.WithField("network", net.Name()),
		stats:  &Stats{},
	}
	e.drawSampler = NewSampler(net, NewSource(deriveSeed(cfg.Seed, 0)), WithStats(e.stats), WithLogger(e.logger))

	e.logger.WithFields(logrus.Fields{
		"variables": net.Len(),
		"workers":   cfg.Workers,
		"seed":      cfg.Seed,
	}).Debug("Sampling engine initialized")
	return e, nil
}

// Network returns the engine's network.
func (e *Engine) Network() *network.Network { return e.net }

// Config returns the effective configuration (workers and seed resolved).
func (e *Engine) Config() EngineConfig { return e.config }

// Stats returns the accumulated statistics of all runs and draws.
func (e *Engine) Stats() StatsSnapshot { return e.stats.Snapshot() }

// AddReporter registers a Reporter for run summaries.
func (e *Engine) AddReporter(reporter Reporter) {
	e.reportersMu.Lock()
	defer e.reportersMu.Unlock()
	e.reporters = append(e.reporters, reporter)
}

// Draw produces one complete assignment with evidence pinned.
func (e *Engine) Draw(evidence network.Evidence) (network.Assignment, error) {
	e.drawMu.Lock()
	defer e.drawMu.Unlock()
	return e.drawSampler.Draw(evidence)
}

// PriorEstimate estimates P(target | evidence) by drawing n assignments with
// evidence fixed at generation time. Unknown evidence fails before sampling.
func (e *Engine) PriorEstimate(ctx context.Context, n int, evidence network.Evidence, target Predicate) (Estimate, error) {
	if n < 0 {
		return Estimate{}, fmt.Errorf("%w: %d", ErrInvalidSampleCount, n)
	}
	if target == nil {
		return Estimate{}, fmt.Errorf("target predicate is required")
	}
	if err := e.net.CheckEvidence(evidence); err != nil {
		return Estimate{}, fmt.Errorf("invalid evidence: %w", err)
	}

	r := e.newRun(RunPrior)
	shares := split(n, e.config.Workers)
	parts := make([]Estimate, len(shares))

	g, gctx := errgroup.WithContext(ctx)
	for i, share := range shares {
		g.Go(func() error {
			est, err := NewPriorEstimator(r.sampler(e.net, i)).Estimate(gctx, share, evidence, target)
			parts[i] = est
			return err
		})
	}
	err := g.Wait()

	total := Estimate{RunID: r.id}
	for _, p := range parts {
		total = total.merge(p)
	}
	e.finish(r, len(shares), total.Samples, total.Hits)
	if err != nil {
		r.logger.WithError(err).Error("Prior run failed")
		return total, fmt.Errorf("prior run %s: %w", r.id, err)
	}
	return total, nil
}

// RejectionSample draws n unconditional assignments and keeps the ones
// consistent with filter. Survivors are ordered by worker, then by draw.
func (e *Engine) RejectionSample(ctx context.Context, n int, filter network.Evidence) (*Rejection, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleCount, n)
	}

	r := e.newRun(RunRejection)
	if err := e.net.CheckEvidence(filter); err != nil {
		warnImpossibleFilter(r.logger, filter, err)
	}
	shares := split(n, e.config.Workers)
	parts := make([]*Rejection, len(shares))

	g, gctx := errgroup.WithContext(ctx)
	for i, share := range shares {
		g.Go(func() error {
			res, err := NewRejectionEstimator(r.sampler(e.net, i)).sample(gctx, share, filter)
			parts[i] = res
			return err
		})
	}
	err := g.Wait()

	total := &Rejection{RunID: r.id, Filter: filter, Survivors: []network.Assignment{}, net: e.net}
	for _, p := range parts {
		if p != nil {
			total.merge(p)
		}
	}
	e.finish(r, len(shares), total.Drawn, total.Accepted())
	if err != nil {
		r.logger.WithError(err).Error("Rejection run failed")
		return total, fmt.Errorf("rejection run %s: %w", r.id, err)
	}
	return total, nil
}

// run carries the per-run identity, seed and statistics.
type run struct {
	id     string
	kind   RunKind
	seed   int64
	start  time.Time
	stats  *Stats
	logger logrus.FieldLogger
}

func (e *Engine) newRun(kind RunKind) *run {
	id := uuid.New().String()
	seq := atomic.AddUint64(&e.runs, 1)
	return &run{
		id:     id,
		kind:   kind,
		seed:   deriveSeed(e.config.Seed, seq),
		start:  time.Now(),
		stats:  &Stats{},
		logger: e.logger.WithFields(logrus.Fields{"run_id": id, "kind": kind}),
	}
}

// sampler builds the sampler for worker i with its own stream.
func (r *run) sampler(net *network.Network, i int) *Sampler {
	src := NewSource(deriveSeed(r.seed, uint64(i)))
	return NewSampler(net, src, WithStats(r.stats), WithLogger(r.logger.WithField("worker", i)))
}

func (e *Engine) finish(r *run, workers, samples, matched int) {
	snap := r.stats.Snapshot()
	e.stats.add(snap)
	e.stats.incRuns()

	summary := RunSummary{
		ID:                r.id,
		Kind:              r.kind,
		Samples:           samples,
		Matched:           matched,
		Workers:           workers,
		Duration:          time.Since(r.start),
		ResidualFallbacks: snap.ResidualFallbacks,
	}
	e.reportersMu.Lock()
	reporters := append([]Reporter(nil), e.reporters...)
	e.reportersMu.Unlock()
	for _, reporter := range reporters {
		reporter.OnRunComplete(summary)
	}
}

// split divides n samples across at most workers shares, earlier shares
// taking the remainder. It always returns at least one share.
func split(n, workers int) []int {
	w := workers
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	shares := make([]int, w)
	for i := range shares {
		shares[i] = n / w
		if i < n%w {
			shares[i]++
		}
	}
	return shares
}
