package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/mulderive/internal/compiler"
	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/driver"
	"github.com/roach88/mulderive/internal/ir"
	"github.com/roach88/mulderive/internal/render"
	"github.com/roach88/mulderive/internal/store"
	"github.com/roach88/mulderive/internal/testutil"
)

// Run executes a scenario against a fresh in-memory cache.
//
// Execution flow:
//  1. Load every source and inline declaration
//  2. Build requests for the selected operators and flavor
//  3. Expand once, then again from the cache
//  4. Compare both runs and evaluate assertions
//
// The returned error covers setup failures (unreadable sources, cache
// errors). Expansion failures and assertion misses land in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	decls, err := loadDecls(ctx, scenario)
	if err != nil {
		return nil, err
	}

	flavor, err := parseFlavor(scenario.Flavor)
	if err != nil {
		return nil, err
	}
	reqs, err := driver.BuildRequests(decls, scenario.Operators, flavor)
	if err != nil {
		return nil, fmt.Errorf("failed to build requests: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runID := testutil.NewFixedRunGenerator(scenario.RunID).Generate()

	first, _, err := driver.New(
		driver.WithCache(st),
		driver.WithClock(clock),
		driver.WithRunIDGenerator(testutil.NewFixedRunGenerator(runID)),
		driver.WithLogger(logger),
	).Run(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("failed to run expansion: %w", err)
	}

	replay, _, err := driver.New(
		driver.WithCache(st),
		driver.WithClock(clock),
		driver.WithRunIDGenerator(testutil.NewFixedRunGenerator(runID+"-replay")),
		driver.WithLogger(logger),
	).Run(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("failed to replay expansion: %w", err)
	}

	result := NewResult()
	result.Outcomes = outcomes(first)

	var out strings.Builder
	if err := render.Join(&out, renderedOf(first)); err != nil {
		return nil, fmt.Errorf("failed to render output: %w", err)
	}
	result.Output = out.String()

	checkReplay(result, outcomes(replay))

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadDecls(ctx context.Context, scenario *Scenario) ([]*ir.TypeDecl, error) {
	var decls []*ir.TypeDecl
	for _, path := range scenario.Sources {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read source: %w", err)
		}
		loaded, err := compiler.LoadSource(ctx, path, data)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		decls = append(decls, loaded...)
	}
	for _, in := range scenario.Inline {
		loaded, err := compiler.LoadSource(ctx, in.Name, []byte(in.Text))
		if err != nil {
			return nil, fmt.Errorf("failed to load inline %s: %w", in.Name, err)
		}
		decls = append(decls, loaded...)
	}
	return decls, nil
}

func parseFlavor(s string) (derive.Flavor, error) {
	switch s {
	case "", "std":
		return derive.FlavorStd, nil
	case "core":
		return derive.FlavorCore, nil
	default:
		return 0, fmt.Errorf("unknown flavor %q (want std or core)", s)
	}
}

func outcomes(results []driver.Result) []Outcome {
	out := make([]Outcome, len(results))
	for i, r := range results {
		o := Outcome{
			Record:   r.Decl,
			Operator: r.Operator,
			Key:      r.Key,
			Rendered: r.Rendered,
			Cached:   r.Cached,
		}
		if r.Err != nil {
			o.Error = r.Err.Error()
			var shapeErr *derive.ShapeError
			if errors.As(r.Err, &shapeErr) {
				o.Reason = shapeErr.Reason
			}
		}
		out[i] = o
	}
	return out
}

func renderedOf(results []driver.Result) []string {
	var rendered []string
	for _, r := range results {
		if r.Err == nil {
			rendered = append(rendered, r.Rendered)
		}
	}
	return rendered
}

// checkReplay requires the second run to be served from the cache and to
// match the first run apart from the cached flag.
func checkReplay(result *Result, replay []Outcome) {
	for _, o := range replay {
		if o.Error == "" && !o.Cached {
			result.AddError(fmt.Sprintf("replay: %s/%s was not served from the cache", o.Record, o.Operator))
		}
	}

	ignoreCached := cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Cached"
	}, cmp.Ignore())
	if diff := cmp.Diff(result.Outcomes, replay, ignoreCached); diff != "" {
		result.AddError("replay diverged from first run (-first +replay):\n" + diff)
	}
}
