package driver

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/mulderive/internal/derive"
	"github.com/roach88/mulderive/internal/ir"
	"github.com/roach88/mulderive/internal/store"
	"github.com/roach88/mulderive/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openCache(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func requests() []Request {
	mul := testutil.StdOperator("Mul")
	return []Request{
		{Decl: testutil.Positional("Vec2", "f32", "f32"), Operator: mul},
		{Decl: testutil.Named("Point", "x", "f64", "y", "f64"), Operator: testutil.StdOperator("Div")},
		{Decl: &ir.TypeDecl{Name: "Color", Kind: ir.KindEnum}, Operator: mul},
		{Decl: testutil.Positional("Meters", "f64"), Operator: mul},
	}
}

func TestRunWithoutCache(t *testing.T) {
	d := New(WithLogger(quietLogger()), WithLimit(2))

	results, summary, err := d.Run(context.Background(), requests())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, Summary{Requests: 4, Misses: 3, Failures: 1}, summary)

	// Request order is preserved.
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Decl
	}
	assert.Equal(t, []string{"Vec2", "Point", "Color", "Meters"}, names)

	assert.Contains(t, results[0].Rendered, "impl<__rhs_T: ::std::marker::Copy> ::std::ops::Mul<__rhs_T> for Vec2")
	assert.Contains(t, results[1].Rendered, "fn div(self, rhs: __rhs_T) -> Point")
	assert.NotNil(t, results[0].Fragment)
	assert.NotEmpty(t, results[0].Canonical)

	assert.ErrorIs(t, results[2].Err, derive.ErrUnsupportedShape)
	assert.Empty(t, results[2].Rendered)
}

func TestRunCachesExpansions(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	first := New(
		WithCache(cache),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()),
	)
	results1, summary1, err := first.Run(ctx, requests())
	require.NoError(t, err)
	assert.Equal(t, "run-1", summary1.RunID)
	assert.Equal(t, 0, summary1.Hits)
	assert.Equal(t, 3, summary1.Misses)

	second := New(
		WithCache(cache),
		WithRunIDGenerator(NewFixedGenerator("run-2")),
		WithLogger(quietLogger()),
	)
	results2, summary2, err := second.Run(ctx, requests())
	require.NoError(t, err)
	assert.Equal(t, 3, summary2.Hits)
	assert.Equal(t, 0, summary2.Misses)
	assert.Equal(t, 1, summary2.Failures, "shape errors are never cached")

	for i := range results1 {
		assert.Equal(t, results1[i].Rendered, results2[i].Rendered)
		assert.Equal(t, results1[i].Canonical, results2[i].Canonical)
		assert.Equal(t, results1[i].Key, results2[i].Key)
	}
	assert.True(t, results2[0].Cached)
	assert.Nil(t, results2[0].Fragment)

	runs, err := cache.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 4, runs[1].Requests)
	assert.Equal(t, 3, runs[1].Hits)
}

func TestRunWritesInRequestOrder(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	d := New(
		WithCache(cache),
		WithClock(testutil.NewDeterministicClock()),
		WithRunIDGenerator(testutil.NewFixedRunGenerator("run-fixed")),
		WithLimit(4),
		WithLogger(quietLogger()),
	)
	_, _, err := d.Run(ctx, requests())
	require.NoError(t, err)

	list, err := cache.ListExpansions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// seq 1 is the run itself.
	assert.Equal(t, "Vec2", list[0].DeclName)
	assert.Equal(t, int64(2), list[0].Seq)
	assert.Equal(t, "Point", list[1].DeclName)
	assert.Equal(t, int64(3), list[1].Seq)
	assert.Equal(t, "Meters", list[2].DeclName)
	assert.Equal(t, int64(4), list[2].Seq)
	for _, e := range list {
		assert.Equal(t, "run-fixed", e.RunID)
		assert.Equal(t, ir.EngineVersion, e.EngineVersion)
	}
}

func TestRunResumesClockFromCache(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	_, _, err := New(WithCache(cache), WithLogger(quietLogger())).Run(ctx, requests()[:1])
	require.NoError(t, err)

	more := []Request{{Decl: testutil.Positional("Meters", "f64"), Operator: testutil.StdOperator("Rem")}}
	_, _, err = New(WithCache(cache), WithLogger(quietLogger())).Run(ctx, more)
	require.NoError(t, err)

	list, err := cache.ListExpansions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[1].Seq, list[0].Seq)

	runs, err := cache.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Greater(t, runs[1].Seq, list[0].Seq)
}

func TestRunReusedDriverResumesEachRun(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()
	d := New(WithCache(cache), WithLogger(quietLogger()))

	_, _, err := d.Run(ctx, requests()[:1])
	require.NoError(t, err)
	assert.Nil(t, d.clock, "Run must not install a clock on the driver")

	more := []Request{{Decl: testutil.Positional("Meters", "f64"), Operator: testutil.StdOperator("Shl")}}
	_, _, err = d.Run(ctx, more)
	require.NoError(t, err)
	assert.Nil(t, d.clock)

	list, err := cache.ListExpansions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[1].Seq, list[0].Seq)
}

func TestRunConcurrentOnOneDriver(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()
	d := New(WithCache(cache), WithLogger(quietLogger()))

	batches := [][]Request{
		{{Decl: testutil.Positional("A", "f32", "f32"), Operator: testutil.StdOperator("Mul")}},
		{{Decl: testutil.Positional("B", "f64"), Operator: testutil.StdOperator("Div")}},
		{{Decl: testutil.Named("C", "x", "u8"), Operator: testutil.StdOperator("Shr")}},
		{{Decl: testutil.Positional("D", "i32"), Operator: testutil.StdOperator("Rem")}},
	}

	var g errgroup.Group
	for _, reqs := range batches {
		g.Go(func() error {
			_, _, err := d.Run(ctx, reqs)
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Nil(t, d.clock)

	list, err := cache.ListExpansions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(batches))

	runs, err := cache.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, len(batches))
}

func TestRunDuplicateRequestsWrittenOnce(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()

	decl := testutil.Positional("Vec2", "f32", "f32")
	reqs := []Request{
		{Decl: decl, Operator: testutil.StdOperator("Mul")},
		{Decl: decl, Operator: testutil.StdOperator("Mul")},
	}
	results, _, err := New(WithCache(cache), WithLogger(quietLogger())).Run(ctx, reqs)
	require.NoError(t, err)
	assert.Equal(t, results[0].Rendered, results[1].Rendered)

	list, err := cache.ListExpansions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRunOperatorFlavorChangesKey(t *testing.T) {
	decl := testutil.Positional("Vec2", "f32", "f32")
	std, err := derive.LookupOperator("Mul", derive.FlavorStd)
	require.NoError(t, err)
	core, err := derive.LookupOperator("Mul", derive.FlavorCore)
	require.NoError(t, err)

	results, _, err := New(WithLogger(quietLogger())).Run(context.Background(), []Request{
		{Decl: decl, Operator: std},
		{Decl: decl, Operator: core},
	})
	require.NoError(t, err)
	assert.NotEqual(t, results[0].Key, results[1].Key)
	assert.Contains(t, results[1].Rendered, "::core::ops::Mul")
}

func TestRunCancelledContext(t *testing.T) {
	cache := openCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(WithCache(cache), WithLogger(quietLogger())).Run(ctx, requests())
	assert.Error(t, err)
}

func TestBuildRequests(t *testing.T) {
	vec := testutil.Positional("Vec2", "f32", "f32")
	vec.Derives = []string{"Mul", "Div", "Mul"}
	meters := testutil.Positional("Meters", "f64")
	meters.Derives = []string{"Rem"}

	reqs, err := BuildRequests([]*ir.TypeDecl{vec, meters}, nil, derive.FlavorStd)
	require.NoError(t, err)
	require.Len(t, reqs, 3, "repeated derive expanded once")
	assert.Equal(t, "Mul", reqs[0].Operator.Name)
	assert.Equal(t, "Div", reqs[1].Operator.Name)
	assert.Equal(t, "Meters", reqs[2].Decl.Name)

	reqs, err = BuildRequests([]*ir.TypeDecl{vec, meters}, []string{"Div"}, derive.FlavorCore)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "::core::ops::Div", reqs[0].Operator.TraitPath)

	bad := testutil.Positional("Bad", "f32")
	bad.Derives = []string{"Add"}
	_, err = BuildRequests([]*ir.TypeDecl{bad}, nil, derive.FlavorStd)
	assert.ErrorIs(t, err, derive.ErrUnknownOperator)
}
