// Package scan rates a whole chart catalog in the background. It runs one
// scheduler per (chart, mode) pair, keeps a bounded number of them active,
// and ticks them all with a single gameplay signal.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/difficulty"
	"github.com/vovakirdan/beatrate/internal/registry"
	"github.com/vovakirdan/beatrate/internal/scheduler"
)

// DefaultParallel is the number of schedulers active at once when unset.
const DefaultParallel = 2

// Task is one chart to rate in one mode.
type Task struct {
	Chart *chart.Beatmap
	Mode  string
}

// Tasks pairs every chart with every mode that can rate it. An empty modes
// list means every registered mode.
func Tasks(charts []*chart.Beatmap, modes []string) []Task {
	if len(modes) == 0 {
		for _, info := range registry.List() {
			modes = append(modes, info.Mode)
		}
	}

	var tasks []Task
	for _, b := range charts {
		for _, mode := range modes {
			if registry.Supports(mode, b) {
				tasks = append(tasks, Task{Chart: b, Mode: mode})
			}
		}
	}
	return tasks
}

// Loader returns previously stored results for warm starts.
type Loader interface {
	LoadResults() (map[scheduler.Entry]float32, error)
}

// BuildFunc constructs the analyzer for a chart in a mode.
type BuildFunc func(mode string, b *chart.Beatmap, p difficulty.Params) (difficulty.Analyzer, error)

// Config configures a Runner.
type Config struct {
	Tasks  []Task
	Space  *combo.Space
	Params difficulty.Params
	Sink   scheduler.Sink

	Loader Loader      // optional
	Signal Signal      // optional, gameplay is never active without one
	Build  BuildFunc   // defaults to registry.Build
	Logger *log.Logger // optional

	Parallel   int
	FlushEvery int
}

// Progress describes one active scheduler.
type Progress struct {
	Chart string
	Hash  string
	Mode  string
	State scheduler.State
	Done  int
	Total int
}

// Snapshot is the runner's progress at one point in time.
type Snapshot struct {
	Gameplay bool

	Done  int // combinations accounted for across all tasks
	Total int

	Finished int // completed tasks
	Tasks    int
	Failed   int // tasks whose chart could not be rated

	Active []Progress
}

// Runner ticks a catalog of schedulers. It is not safe for concurrent use:
// Tick, Snapshot and Stop must be called from one goroutine.
type Runner struct {
	cfg      Config
	logger   *log.Logger
	signal   Signal
	existing map[scheduler.Entry]float32

	queue    []Task
	active   []*scheduler.Scheduler
	gameplay bool

	finished     int
	finishedDone int
	failed       int
}

// NewRunner creates a runner. When a loader is configured, stored results
// are loaded once so already rated combinations are skipped.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Space == nil {
		return nil, errors.New("scan: combination space is required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("scan: sink is required")
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = DefaultParallel
	}
	if cfg.Build == nil {
		cfg.Build = registry.Build
	}
	cfg.Params = cfg.Params.WithDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	signal := cfg.Signal
	if signal == nil {
		signal = never{}
	}

	r := &Runner{
		cfg:    cfg,
		logger: logger,
		signal: signal,
		queue:  append([]Task(nil), cfg.Tasks...),
	}

	if cfg.Loader != nil {
		existing, err := cfg.Loader.LoadResults()
		if err != nil {
			return nil, fmt.Errorf("scan: load stored results: %w", err)
		}
		r.existing = existing
		logger.Debug("loaded stored results", "count", len(existing))
	}

	return r, nil
}

// Tick polls the gameplay signal once and ticks every active scheduler
// with it. Completed schedulers are retired and queued tasks admitted.
func (r *Runner) Tick() {
	gameplay := r.signal.Active()
	if gameplay != r.gameplay {
		if gameplay {
			r.logger.Info("gameplay started, pausing")
		} else {
			r.logger.Info("gameplay ended, resuming")
		}
		r.gameplay = gameplay
	}

	if !gameplay {
		r.admit()
	}

	kept := r.active[:0]
	for _, s := range r.active {
		s.Tick(gameplay)
		if s.State() == scheduler.Complete {
			r.retire(s)
			continue
		}
		kept = append(kept, s)
	}
	clear(r.active[len(kept):])
	r.active = kept
}

func (r *Runner) admit() {
	for len(r.active) < r.cfg.Parallel && len(r.queue) > 0 {
		task := r.queue[0]
		r.queue = r.queue[1:]

		build := r.cfg.Build
		params := r.cfg.Params
		mode := task.Mode
		s, err := scheduler.New(scheduler.Config{
			Chart: task.Chart,
			Mode:  mode,
			Space: r.cfg.Space,
			Build: func(b *chart.Beatmap) (difficulty.Analyzer, error) {
				return build(mode, b, params)
			},
			Sink:       r.cfg.Sink,
			Logger:     r.logger,
			Existing:   r.existing,
			FlushEvery: r.cfg.FlushEvery,
		})
		if err != nil {
			r.logger.Error("cannot schedule chart", "chart", task.Chart.Name(), "mode", mode, "error", err)
			r.finished++
			r.failed++
			r.finishedDone += r.cfg.Space.Count()
			continue
		}

		r.logger.Info("rating chart", "chart", task.Chart.Name(), "mode", mode)
		r.active = append(r.active, s)
	}
}

func (r *Runner) retire(s *scheduler.Scheduler) {
	done, _ := s.Progress()
	r.finished++
	r.finishedDone += done
	if s.Failed() {
		r.failed++
	}
}

// Done reports whether every task is complete.
func (r *Runner) Done() bool {
	return len(r.queue) == 0 && len(r.active) == 0
}

// Snapshot returns the current progress.
func (r *Runner) Snapshot() Snapshot {
	snap := Snapshot{
		Gameplay: r.gameplay,
		Done:     r.finishedDone,
		Total:    len(r.cfg.Tasks) * r.cfg.Space.Count(),
		Finished: r.finished,
		Tasks:    len(r.cfg.Tasks),
		Failed:   r.failed,
	}
	for _, s := range r.active {
		done, total := s.Progress()
		snap.Done += done
		snap.Active = append(snap.Active, Progress{
			Chart: s.Chart().Name(),
			Hash:  s.Chart().ShortHash(),
			Mode:  s.Mode(),
			State: s.State(),
			Done:  done,
			Total: total,
		})
	}
	return snap
}

// Stop cancels in-flight work and stores pending results of every active
// scheduler.
func (r *Runner) Stop() {
	for _, s := range r.active {
		s.Cancel()
	}
}

// Run ticks the runner every interval until every task is complete or ctx
// ends. Ending the context is not an error: in-flight work is cancelled and
// pending results are stored.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("scan: invalid tick interval %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.Tick()
		if r.Done() {
			snap := r.Snapshot()
			r.logger.Info("scan complete", "tasks", snap.Tasks, "failed", snap.Failed)
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			r.Stop()
			r.logger.Info("scan stopped", "finished", r.finished, "tasks", len(r.cfg.Tasks))
			return nil
		}
	}
}
