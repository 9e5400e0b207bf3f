package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Run records one driver invocation against the cache.
type Run struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
	Requests      int    `json:"requests"`
	Hits          int    `json:"hits"`
}

// Expansion is a cached operator expansion.
type Expansion struct {
	Key           string `json:"key"`
	RunID         string `json:"run_id"`
	Seq           int64  `json:"seq"`
	DeclName      string `json:"decl"`
	Operator      string `json:"operator"`
	DeclHash      string `json:"decl_hash"`
	FragmentHash  string `json:"fragment_hash"`
	Fragment      string `json:"fragment"` // canonical JSON of the fragment
	Rendered      string `json:"rendered"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, engine_version, ir_version, requests, hits)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Seq, run.EngineVersion, run.IRVersion, run.Requests, run.Hits)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the request and hit counts of a run.
func (s *Store) FinishRun(ctx context.Context, id string, requests, hits int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET requests = ?, hits = ? WHERE id = ?
	`, requests, hits, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", id)
	}
	return nil
}

// WriteExpansion inserts an expansion.
// Uses ON CONFLICT(key) DO NOTHING: the first writer of a key wins.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteExpansion(ctx context.Context, exp Expansion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expansions
		(key, run_id, seq, decl_name, operator, decl_hash, fragment_hash, fragment, rendered, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		exp.Key,
		exp.RunID,
		exp.Seq,
		exp.DeclName,
		exp.Operator,
		exp.DeclHash,
		exp.FragmentHash,
		exp.Fragment,
		exp.Rendered,
		exp.EngineVersion,
		exp.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write expansion: %w", err)
	}
	return nil
}

const expansionColumns = `key, run_id, seq, decl_name, operator, decl_hash, fragment_hash, fragment, rendered, engine_version, ir_version`

// ReadExpansion looks up an expansion by key.
// Returns (Expansion{}, false, nil) on a miss.
func (s *Store) ReadExpansion(ctx context.Context, key string) (Expansion, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+expansionColumns+` FROM expansions WHERE key = ?`, key)
	exp, err := scanExpansion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Expansion{}, false, nil
	}
	if err != nil {
		return Expansion{}, false, fmt.Errorf("read expansion: %w", err)
	}
	return exp, true, nil
}

// ListExpansions returns every cached expansion.
// Results are ordered deterministically: ORDER BY seq ASC, key ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) for an empty cache.
func (s *Store) ListExpansions(ctx context.Context) ([]Expansion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+expansionColumns+`
		FROM expansions
		ORDER BY seq ASC, key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query expansions: %w", err)
	}
	defer rows.Close()

	expansions := []Expansion{}
	for rows.Next() {
		exp, err := scanExpansion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expansion: %w", err)
		}
		expansions = append(expansions, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expansions: %w", err)
	}
	return expansions, nil
}

// ListRuns returns every run ordered by seq ASC, id ASC COLLATE BINARY.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, engine_version, ir_version, requests, hits
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.EngineVersion, &r.IRVersion, &r.Requests, &r.Hits); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Clear deletes every run and expansion and reports how many expansions
// were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM expansions`)
	if err != nil {
		return 0, fmt.Errorf("clear expansions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear expansions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpansion(row rowScanner) (Expansion, error) {
	var exp Expansion
	err := row.Scan(
		&exp.Key,
		&exp.RunID,
		&exp.Seq,
		&exp.DeclName,
		&exp.Operator,
		&exp.DeclHash,
		&exp.FragmentHash,
		&exp.Fragment,
		&exp.Rendered,
		&exp.EngineVersion,
		&exp.IRVersion,
	)
	return exp, err
}
