// Package scheduler rates one chart under every combination of a
// combination space, one combination at a time, stepping aside whenever
// gameplay is active.
//
// A Scheduler is ticked cooperatively by its owner (once per frame or
// polling interval). Tick never blocks: scoring runs on a separate
// goroutine and the tick only polls its result channel. At most one
// combination is in flight per scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/difficulty"
)

// Sentinel is the score recorded for combinations that could not be rated
// because the chart has nothing the analyzer can score.
const Sentinel float32 = -1.0

// Entry is the persistence key of one rating.
type Entry struct {
	Mode      string
	ChartHash string
	Signature string // combo.Combination.Signature
}

// Result is a rated Entry.
type Result struct {
	Entry
	Score float32
}

// Sink stores results. Implementations serialize concurrent writers.
type Sink interface {
	StoreResults(results []Result) error
}

// BuildFunc constructs the analyzer for a chart.
type BuildFunc func(b *chart.Beatmap) (difficulty.Analyzer, error)

// Config configures a Scheduler.
type Config struct {
	Chart *chart.Beatmap
	Mode  string // defaults to the chart's mode
	Space *combo.Space
	Build BuildFunc
	Sink  Sink

	Logger *log.Logger

	// Existing holds already stored results; their combinations are skipped.
	Existing map[Entry]float32

	// FlushEvery flushes pending results once that many have accumulated.
	// Zero flushes only when the space is exhausted.
	FlushEvery int
}

type outcome struct {
	score float32
	err   error
}

// job is the in-flight combination.
type job struct {
	combo  combo.Combination
	cancel context.CancelFunc
	result chan outcome
}

// Scheduler is the per chart/mode state machine. It is not safe for
// concurrent use; only the scoring goroutine it launches runs concurrently.
type Scheduler struct {
	chart      *chart.Beatmap
	mode       string
	build      BuildFunc
	sink       Sink
	logger     *log.Logger
	existing   map[Entry]float32
	flushEvery int

	state       State
	iter        *combo.Iterator
	interrupted []combo.Combination
	inFlight    *job

	analyzer difficulty.Analyzer
	failed   bool
	attempts int

	pending []Result
	skipped int
	rated   int
	total   int
}

// New creates a scheduler in the NotStarted state.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Chart == nil {
		return nil, errors.New("scheduler: chart is required")
	}
	if cfg.Space == nil {
		return nil, errors.New("scheduler: combination space is required")
	}
	if cfg.Build == nil {
		return nil, errors.New("scheduler: build function is required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("scheduler: sink is required")
	}
	if cfg.FlushEvery < 0 {
		return nil, fmt.Errorf("scheduler: negative flush interval %d", cfg.FlushEvery)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = cfg.Chart.Mode
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Scheduler{
		chart:      cfg.Chart,
		mode:       mode,
		build:      cfg.Build,
		sink:       cfg.Sink,
		logger:     logger.With("chart", cfg.Chart.ShortHash(), "mode", mode),
		existing:   cfg.Existing,
		flushEvery: cfg.FlushEvery,
		state:      NotStarted,
		iter:       cfg.Space.Iter(),
		total:      cfg.Space.Count(),
	}, nil
}

// Chart returns the chart being rated.
func (s *Scheduler) Chart() *chart.Beatmap {
	return s.chart
}

// Mode returns the gamemode the chart is rated in.
func (s *Scheduler) Mode() string {
	return s.mode
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Progress returns how many combinations are accounted for (rated or
// skipped because they were already stored) out of the space size.
func (s *Scheduler) Progress() (done, total int) {
	return s.rated + s.skipped, s.total
}

// Attempts returns how many times analyzer construction was attempted.
func (s *Scheduler) Attempts() int {
	return s.attempts
}

// Failed reports whether the chart could not be rated in this mode.
func (s *Scheduler) Failed() bool {
	return s.failed
}

// Pending returns the number of results not yet stored.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Tick advances the scheduler by at most one step.
func (s *Scheduler) Tick(gameplayActive bool) {
	if s.state == Complete {
		return
	}

	if gameplayActive {
		if s.state != Paused {
			s.logger.Debug("paused")
		}
		s.state = Paused
		s.interrupt()
		return
	}
	s.state = Running

	if s.flushEvery > 0 && len(s.pending) >= s.flushEvery {
		s.flush()
	}

	if s.inFlight != nil {
		s.poll()
		return
	}

	c, ok := s.next()
	if !ok {
		if s.flush() {
			s.state = Complete
			s.logger.Info("complete", "rated", s.rated, "skipped", s.skipped)
		}
		return
	}

	if !s.ensureAnalyzer() {
		s.record(c, Sentinel)
		return
	}
	s.launch(c)
}

// Cancel aborts in-flight work and stores whatever is pending. The
// cancelled combination is queued for retry, so the scheduler can be ticked
// again later.
func (s *Scheduler) Cancel() {
	s.interrupt()
	s.flush()
}

func (s *Scheduler) interrupt() {
	if s.inFlight == nil {
		return
	}
	s.inFlight.cancel()
	s.interrupted = append(s.interrupted, s.inFlight.combo)
	s.logger.Debug("interrupted", "combo", s.inFlight.combo.Signature())
	s.inFlight = nil
}

func (s *Scheduler) poll() {
	j := s.inFlight
	select {
	case out := <-j.result:
		j.cancel()
		s.inFlight = nil

		score := out.score
		if out.err != nil {
			s.logger.Warn("scoring failed", "combo", j.combo.Signature(), "error", out.err)
			score = Sentinel
		}
		s.record(j.combo, score)
	default:
	}
}

// next pulls the next combination that still needs rating: first from the
// space, then from the interrupted queue (oldest first).
func (s *Scheduler) next() (combo.Combination, bool) {
	for {
		c, ok := s.iter.Next()
		if !ok {
			break
		}
		if _, done := s.existing[s.entry(c)]; done {
			s.skipped++
			continue
		}
		return c, true
	}

	if len(s.interrupted) == 0 {
		return combo.Combination{}, false
	}
	c := s.interrupted[0]
	s.interrupted = s.interrupted[1:]
	return c, true
}

// ensureAnalyzer constructs the analyzer on first use. A failure is sticky:
// construction is never attempted again.
func (s *Scheduler) ensureAnalyzer() bool {
	if s.analyzer != nil {
		return true
	}
	if s.failed {
		return false
	}

	s.attempts++
	a, err := s.build(s.chart)
	if err != nil {
		s.failed = true
		s.logger.Warn("chart cannot be rated", "error", err)
		return false
	}
	s.analyzer = a
	s.logger.Debug("analyzer ready", "events", a.Events())
	return true
}

func (s *Scheduler) launch(c combo.Combination) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		combo:  c,
		cancel: cancel,
		result: make(chan outcome, 1),
	}

	a := s.analyzer
	go func() {
		score, err := a.Score(ctx, c)
		j.result <- outcome{score: score, err: err}
	}()
	s.inFlight = j
}

func (s *Scheduler) record(c combo.Combination, score float32) {
	s.pending = append(s.pending, Result{Entry: s.entry(c), Score: score})
	s.rated++
	s.logger.Debug("rated", "combo", c.Signature(), "score", score)
}

// flush stores every pending result. On failure the results are kept for
// the next attempt.
func (s *Scheduler) flush() bool {
	if len(s.pending) == 0 {
		return true
	}
	if err := s.sink.StoreResults(s.pending); err != nil {
		s.logger.Warn("could not store results", "pending", len(s.pending), "error", err)
		return false
	}
	s.logger.Debug("stored results", "count", len(s.pending))
	s.pending = nil
	return true
}

func (s *Scheduler) entry(c combo.Combination) Entry {
	return Entry{Mode: s.mode, ChartHash: s.chart.Hash, Signature: c.Signature()}
}
