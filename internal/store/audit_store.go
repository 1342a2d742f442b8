package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"localization-editor/internal/audit"
	"localization-editor/internal/locale"
	"localization-editor/internal/resolver"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNoRuns is returned when a mod has never been audited.
var ErrNoRuns = errors.New("no audit runs recorded")

const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
	id          BIGSERIAL PRIMARY KEY,
	game_path   TEXT NOT NULL,
	mod_path    TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	game_files  INTEGER NOT NULL,
	mod_files   INTEGER NOT NULL,
	records     INTEGER NOT NULL,
	ok          INTEGER NOT NULL,
	unused      INTEGER NOT NULL,
	too_short   INTEGER NOT NULL,
	bad_end     INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_runs_mod_path_idx ON audit_runs (mod_path, created_at DESC);
CREATE TABLE IF NOT EXISTS audit_findings (
	run_id  BIGINT NOT NULL REFERENCES audit_runs (id) ON DELETE CASCADE,
	seq     INTEGER NOT NULL,
	origin  TEXT NOT NULL,
	file    TEXT NOT NULL,
	key     TEXT NOT NULL,
	line    INTEGER NOT NULL,
	state   TEXT NOT NULL,
	detail  TEXT NOT NULL
);
`

// AuditStore keeps the history of audit reports in PostgreSQL.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new audit store.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// EnsureSchema creates the audit tables if they do not exist.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Save stores a report and its findings in one transaction and returns the run id.
func (s *AuditStore) Save(ctx context.Context, r *audit.Report) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin audit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO audit_runs (game_path, mod_path, fingerprint, game_files, mod_files, records,
			ok, unused, too_short, bad_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, r.GamePath, r.ModPath, r.Fingerprint, r.GameFiles, r.ModFiles, r.Records,
		r.States[locale.OK], r.States[locale.Unused], r.States[locale.TooShort], r.States[locale.BadEnd],
		r.CreatedAt,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert audit run: %w", err)
	}

	if len(r.Findings) > 0 {
		batch := &pgx.Batch{}
		for i, f := range r.Findings {
			batch.Queue(`
				INSERT INTO audit_findings (run_id, seq, origin, file, key, line, state, detail)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, runID, i, string(f.Origin), f.File, f.Key, f.Line, f.State.String(), f.Detail)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("insert audit findings: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit audit run: %w", err)
	}

	log.Info().Int64("run", runID).Str("mod", r.ModPath).Int("findings", len(r.Findings)).Msg("Stored audit run")
	return runID, nil
}

// Latest loads the most recent report stored for modPath.
func (s *AuditStore) Latest(ctx context.Context, modPath string) (*audit.Report, int64, error) {
	r := &audit.Report{States: make(map[locale.State]int)}
	var runID int64
	var ok, unused, tooShort, badEnd int
	var createdAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT id, game_path, mod_path, fingerprint, game_files, mod_files, records,
			ok, unused, too_short, bad_end, created_at
		FROM audit_runs
		WHERE mod_path = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, modPath).Scan(&runID, &r.GamePath, &r.ModPath, &r.Fingerprint, &r.GameFiles, &r.ModFiles,
		&r.Records, &ok, &unused, &tooShort, &badEnd, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, fmt.Errorf("%s: %w", modPath, ErrNoRuns)
		}
		return nil, 0, fmt.Errorf("query audit run: %w", err)
	}
	r.CreatedAt = createdAt
	r.States[locale.OK] = ok
	r.States[locale.Unused] = unused
	r.States[locale.TooShort] = tooShort
	r.States[locale.BadEnd] = badEnd

	rows, err := s.pool.Query(ctx, `
		SELECT origin, file, key, line, state, detail
		FROM audit_findings
		WHERE run_id = $1
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit findings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f             audit.Finding
			origin, state string
		)
		if err := rows.Scan(&origin, &f.File, &f.Key, &f.Line, &state, &f.Detail); err != nil {
			return nil, 0, fmt.Errorf("scan audit finding: %w", err)
		}
		f.Origin = resolver.Origin(origin)
		if f.State, err = locale.ParseState(state); err != nil {
			return nil, 0, fmt.Errorf("scan audit finding: %w", err)
		}
		r.Findings = append(r.Findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit findings: %w", err)
	}

	return r, runID, nil
}

// Unchanged reports whether the latest stored run for r.ModPath has the same fingerprint.
func (s *AuditStore) Unchanged(ctx context.Context, r *audit.Report) (bool, error) {
	var fingerprint string
	err := s.pool.QueryRow(ctx, `
		SELECT fingerprint FROM audit_runs
		WHERE mod_path = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, r.ModPath).Scan(&fingerprint)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query audit fingerprint: %w", err)
	}
	return fingerprint == r.Fingerprint, nil
}
