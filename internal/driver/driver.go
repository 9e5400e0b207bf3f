package driver

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/ir"
	"github.com/roach88/mulderive/internal/render"
	"github.com/roach88/mulderive/internal/store"
)

// DefaultLimit bounds concurrent expansions when no limit is configured.
const DefaultLimit = 8

// Request asks for one operator implementation of one declaration.
type Request struct {
	Decl     *ir.TypeDecl
	Operator ir.Operator
}

// Result is the outcome of one Request.
type Result struct {
	Decl     string
	Operator string
	Key      string
	DeclHash string

	// Fragment is nil for cache hits; Canonical always holds its canonical
	// JSON when Err is nil.
	Fragment  *ir.ImplFragment
	Canonical string
	Rendered  string
	Cached    bool

	Err error
}

// BuildRequests pairs each declaration with its derived operators, in
// declaration order then derive order. Repeated derives are expanded once.
// A non-empty only list restricts the operators.
func BuildRequests(decls []*ir.TypeDecl, only []string, flavor derive.Flavor) ([]Request, error) {
	allowed := make(map[string]bool, len(only))
	for _, name := range only {
		allowed[name] = true
	}

	var reqs []Request
	for _, decl := range decls {
		seen := make(map[string]bool)
		for _, name := range decl.Derives {
			if seen[name] || (len(allowed) > 0 && !allowed[name]) {
				continue
			}
			seen[name] = true

			op, err := derive.LookupOperator(name, flavor)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", decl.Name, err)
			}
			reqs = append(reqs, Request{Decl: decl, Operator: op})
		}
	}
	return reqs, nil
}

// Summary counts what a run did.
type Summary struct {
	RunID    string `json:"run_id,omitempty"`
	Requests int    `json:"requests"`
	Hits     int    `json:"hits"`
	Misses   int    `json:"misses"`
	Failures int    `json:"failures"`
}

// Sequencer hands out strictly increasing seq numbers. *Clock is the
// production implementation.
type Sequencer interface {
	Next() int64
}

// Driver expands requests, optionally through a cache.
type Driver struct {
	cache  *store.Store
	clock  Sequencer
	runIDs RunIDGenerator
	limit  int
	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithCache enables the expansion cache.
func WithCache(s *store.Store) Option {
	return func(d *Driver) {
		d.cache = s
	}
}

// WithClock sets the logical clock. Without it the driver resumes from the
// cache's highest seq.
func WithClock(c Sequencer) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithRunIDGenerator overrides the UUIDv7 run id generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(d *Driver) {
		d.runIDs = g
	}
}

// WithLimit bounds the number of concurrent expansions. Values below 1 are
// ignored.
func WithLimit(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.limit = n
		}
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// New creates a driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		runIDs: UUIDv7Generator{},
		limit:  DefaultLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run expands every request and returns one Result per request, in request
// order.
//
// The returned error is non-nil only for cache failures or cancellation.
// Expansion failures are reported on the individual Results.
func (d *Driver) Run(ctx context.Context, reqs []Request) ([]Result, Summary, error) {
	summary := Summary{Requests: len(reqs)}

	var clock Sequencer
	if d.cache != nil {
		var err error
		if clock, err = d.beginRun(ctx, &summary); err != nil {
			return nil, summary, err
		}
	}

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := d.expandOne(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, summary, err
	}

	for _, res := range results {
		switch {
		case res.Err != nil:
			summary.Failures++
		case res.Cached:
			summary.Hits++
		default:
			summary.Misses++
		}
	}

	if d.cache != nil {
		if err := d.writeBack(ctx, clock, summary.RunID, results); err != nil {
			return nil, summary, err
		}
		if err := d.cache.FinishRun(ctx, summary.RunID, summary.Requests, summary.Hits); err != nil {
			return nil, summary, err
		}
	}

	d.logger.Info("run finished",
		"run", summary.RunID,
		"requests", summary.Requests,
		"hits", summary.Hits,
		"misses", summary.Misses,
		"failures", summary.Failures,
	)
	return results, summary, nil
}

// beginRun records the run and returns the clock its writes are stamped
// with. Without a configured clock each run resumes from the cache's
// highest seq; the Driver is never mutated, so Runs may be concurrent.
func (d *Driver) beginRun(ctx context.Context, summary *Summary) (Sequencer, error) {
	clock := d.clock
	if clock == nil {
		last, err := d.cache.LastSeq(ctx)
		if err != nil {
			return nil, err
		}
		clock = NewClockAt(last)
	}

	summary.RunID = d.runIDs.Generate()
	run := store.Run{
		ID:            summary.RunID,
		Seq:           clock.Next(),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if err := d.cache.WriteRun(ctx, run); err != nil {
		return nil, err
	}

	d.logger.Debug("run started", "run", run.ID, "seq", run.Seq)
	return clock, nil
}

// expandOne resolves a single request. Only cache errors are returned;
// everything else lands on Result.Err.
func (d *Driver) expandOne(ctx context.Context, req Request) (Result, error) {
	res := Result{Decl: req.Decl.Name, Operator: req.Operator.Name}

	declHash, err := ir.DeclHash(req.Decl)
	if err != nil {
		res.Err = fmt.Errorf("hash %s: %w", req.Decl.Name, err)
		return res, nil
	}
	key, err := ir.ExpansionKey(req.Decl, req.Operator)
	if err != nil {
		res.Err = fmt.Errorf("expansion key for %s: %w", req.Decl.Name, err)
		return res, nil
	}
	res.Key = key
	res.DeclHash = declHash

	if d.cache != nil {
		exp, ok, err := d.cache.ReadExpansion(ctx, key)
		if err != nil {
			return res, err
		}
		if ok {
			d.logger.Debug("cache hit", "decl", res.Decl, "operator", res.Operator, "key", key)
			res.Canonical = exp.Fragment
			res.Rendered = exp.Rendered
			res.Cached = true
			return res, nil
		}
	}

	frag, err := derive.Expand(req.Decl, req.Operator)
	if err != nil {
		d.logger.Debug("expansion failed", "decl", res.Decl, "operator", res.Operator, "error", err)
		res.Err = err
		return res, nil
	}

	canonical, err := ir.MarshalCanonical(frag.CanonicalMap())
	if err != nil {
		res.Err = fmt.Errorf("encode fragment %s/%s: %w", res.Decl, res.Operator, err)
		return res, nil
	}

	res.Fragment = frag
	res.Canonical = string(canonical)
	res.Rendered = render.Fragment(frag)
	return res, nil
}

// writeBack stores new expansions in request order, one seq each.
func (d *Driver) writeBack(ctx context.Context, clock Sequencer, runID string, results []Result) error {
	written := make(map[string]bool)
	for _, res := range results {
		if res.Err != nil || res.Cached || written[res.Key] {
			continue
		}
		written[res.Key] = true

		fragHash, err := ir.FragmentHash(res.Fragment)
		if err != nil {
			return err
		}

		exp := store.Expansion{
			Key:           res.Key,
			RunID:         runID,
			Seq:           clock.Next(),
			DeclName:      res.Decl,
			Operator:      res.Operator,
			DeclHash:      res.DeclHash,
			FragmentHash:  fragHash,
			Fragment:      res.Canonical,
			Rendered:      res.Rendered,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		}
		if err := d.cache.WriteExpansion(ctx, exp); err != nil {
			return err
		}
		d.logger.Debug("expansion cached", "decl", res.Decl, "operator", res.Operator, "seq", exp.Seq)
	}
	return nil
}
