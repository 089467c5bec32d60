package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/regkg/config"
)

// Engine runs reconciliation over a batch of entity records.
type Engine struct {
	rules   *config.Rules
	logger  *slog.Logger
	workers int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithWorkers bounds concurrent pair scoring. Scoring is side-effect
// free, so parallelism never changes the decision order.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine validates the rules and builds an engine. Invalid rules are
// a fatal configuration error; nothing is scored.
func NewEngine(rules *config.Rules, opts ...Option) (*Engine, error) {
	if rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	e := &Engine{
		rules:   rules,
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e, nil
}

// Result holds one completed reconciliation run.
type Result struct {
	RunID     string
	Records   map[string]EntityRecord
	Decisions []Decision
	// Canonical is the flattened source -> canonical mapping.
	Canonical CanonicalMap
	Summary   Summary
}

// Summary aggregates one run for the summary artifact. It carries no
// run id or timestamp: the artifact must be byte-identical across runs
// over identical input.
type Summary struct {
	Counts      map[Outcome]int    `json:"counts"`
	Thresholds  config.Thresholds  `json:"thresholds"`
	FeatureAvgs map[string]float64 `json:"feature_avgs"`
}

// pair is one ordered comparison over the id-sorted record list.
type pair struct {
	left, right int
}

// pairs enumerates every unordered pair over the sorted record list in
// sorted-pair order: (0,1), (0,2), ..., (1,2), ... This exact order is
// part of the output contract; the decisions log and the canonical map
// both depend on it.
func pairs(n int) []pair {
	out := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, pair{left: i, right: j})
		}
	}
	return out
}

// Run scores every record pair and applies the decision policy. Records
// failing validation are reported and skipped; the batch aborts only if
// nothing valid remains.
func (e *Engine) Run(ctx context.Context, records []EntityRecord) (*Result, error) {
	valid := make([]EntityRecord, 0, len(records))
	invalid := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			invalid++
			recordsInvalidTotal.Inc()
			e.logger.Warn("Skipping invalid record", slog.String("error", err.Error()))
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %d records rejected", ErrNoValidRecords, invalid)
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].ID < valid[j].ID })

	ordered := pairs(len(valid))
	scores := make([]PairScore, len(ordered))

	// Scoring is pure; fan it out and keep the decision pass sequential
	// so pair order is preserved.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range ordered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = ScorePair(valid[p.left], valid[p.right], e.rules)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score pairs: %w", err)
	}

	canonical := make(CanonicalMap, len(valid))
	byID := make(map[string]EntityRecord, len(valid))
	for _, r := range valid {
		canonical[r.ID] = r.ID
		byID[r.ID] = r
	}

	decisions := make([]Decision, 0, len(ordered))
	counts := map[Outcome]int{OutcomeAutoMerge: 0, OutcomeReview: 0, OutcomeReject: 0}
	featureSums := make(map[string]float64)
	for i, p := range ordered {
		left, right := valid[p.left], valid[p.right]
		d := Decide(left, right, scores[i], e.rules)
		decisions = append(decisions, d)
		counts[d.Outcome]++
		decisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
		for name, f := range scores[i].Features() {
			featureSums[name] += f.Value
		}
		if d.Outcome == OutcomeAutoMerge {
			canonical.Merge(left.ID, right.ID)
		}
	}

	featureAvgs := make(map[string]float64, len(featureSums))
	if len(ordered) > 0 {
		for name, sum := range featureSums {
			featureAvgs[name] = sum / float64(len(ordered))
		}
	}

	runID := uuid.New().String()
	result := &Result{
		RunID:     runID,
		Records:   byID,
		Decisions: decisions,
		Canonical: canonical.Flatten(),
		Summary: Summary{
			Counts:      counts,
			Thresholds:  *e.rules.Thresholds,
			FeatureAvgs: featureAvgs,
		},
	}

	e.logger.Info("Reconciliation run complete",
		slog.String("run_id", runID),
		slog.Int("records", len(valid)),
		slog.Int("invalid", invalid),
		slog.Int("pairs", len(ordered)),
		slog.Int("auto_merge", counts[OutcomeAutoMerge]),
		slog.Int("review", counts[OutcomeReview]),
		slog.Int("reject", counts[OutcomeReject]))

	return result, nil
}

// Conflicts returns every non-auto-merge decision, in pair order.
func (r *Result) Conflicts() []Decision {
	out := make([]Decision, 0)
	for _, d := range r.Decisions {
		if d.Outcome != OutcomeAutoMerge {
			out = append(out, d)
		}
	}
	return out
}
