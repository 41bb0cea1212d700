package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lockstep-dev/lockstep/internal/verify"
)

// Run is one journaled verification run.
type Run struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Reference  string          `json:"reference"`
	Policy     string          `json:"policy"`
	Pass       bool            `json:"pass"`
	Reason     string          `json:"reason,omitempty"`
	Verdict    json.RawMessage `json:"verdict"`
	DurationMS int64           `json:"duration_ms"`
	States     int             `json:"states"`
	Probes     int             `json:"probes"`
}

// TokenGenerator produces run tokens. UUIDv7Generator is the production
// implementation; tests use the fixed generator from testutil.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run tokens.
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Record writes one verification run to the journal and returns the run
// token. Duplicate tokens are silently ignored (idempotent insert).
func (j *Journal) Record(ctx context.Context, gen TokenGenerator, reference, policy string, v *verify.Verdict) (string, error) {
	verdictJSON, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	id := gen.Generate()
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, reference, policy, pass, reason, verdict, duration_ms, states, probes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		time.Now().UTC().Format(time.RFC3339Nano),
		reference,
		policy,
		v.Pass,
		string(v.Reason),
		string(verdictJSON),
		v.Stats.DurationMS,
		v.Stats.States,
		v.Stats.Probes,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first, up to limit.
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, created_at, reference, policy, pass, reason, verdict, duration_ms, states, probes
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run by token.
func (j *Journal) Get(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, created_at, reference, policy, pass, reason, verdict, duration_ms, states, probes
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r         Run
		createdAt string
		verdict   string
	)
	if err := s.Scan(&r.ID, &createdAt, &r.Reference, &r.Policy, &r.Pass,
		&r.Reason, &verdict, &r.DurationMS, &r.States, &r.Probes); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: parsing created_at: %w", err)
	}
	r.CreatedAt = t
	r.Verdict = json.RawMessage(verdict)
	return r, nil
}
