package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mulderive/internal/store"
)

// CacheOptions holds flags for the cache commands.
type CacheOptions struct {
	*RootOptions
	CachePath string
}

// CacheListing is the JSON payload of `cache list`.
type CacheListing struct {
	Runs       []store.Run       `json:"runs"`
	Expansions []store.Expansion `json:"expansions"`
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the expansion cache",
	}
	cmd.PersistentFlags().StringVar(&opts.CachePath, "cache", "", "expansion cache database (required)")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List cached runs and expansions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheList(cmd.Context(), opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Delete every cached run and expansion",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd.Context(), opts, cmd)
		},
	})

	return cmd
}

func openCache(formatter *OutputFormatter, path string) (*store.Store, error) {
	if path == "" {
		return nil, outputCommandError(formatter, ErrCodeGeneric, "--cache is required")
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeCacheFailed, err.Error())
	}
	return s, nil
}

func cacheFormatter(opts *CacheOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func runCacheList(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := cacheFormatter(opts, cmd)
	s, err := openCache(formatter, opts.CachePath)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCacheFailed, err.Error())
	}
	expansions, err := s.ListExpansions(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCacheFailed, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(CacheListing{Runs: runs, Expansions: expansions})
	}

	fmt.Fprintf(formatter.Writer, "%d run(s), %d expansion(s)\n", len(runs), len(expansions))
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "  run %s  seq=%d  requests=%d  hits=%d\n", r.ID, r.Seq, r.Requests, r.Hits)
	}
	for _, e := range expansions {
		fmt.Fprintf(formatter.Writer, "  %-6d %s for %s  %s\n", e.Seq, e.Operator, e.DeclName, shortKey(e.Key))
	}
	return nil
}

func runCacheClear(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := cacheFormatter(opts, cmd)
	s, err := openCache(formatter, opts.CachePath)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Clear(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCacheFailed, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]int64{"removed": n})
	}
	fmt.Fprintf(formatter.Writer, "✓ Removed %d expansion(s)\n", n)
	return nil
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
