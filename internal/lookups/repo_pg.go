package lookups

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Record upserts the counter for (query, outcome).
func (r *PGRepo) Record(ctx context.Context, query, outcome string, at time.Time) error {
	const stmt = `
INSERT INTO clause_lookups (query, outcome, count, last_seen_at)
VALUES ($1, $2, 1, $3)
ON CONFLICT (query, outcome) DO UPDATE
SET count = clause_lookups.count + 1,
    last_seen_at = GREATEST(clause_lookups.last_seen_at, EXCLUDED.last_seen_at)`
	_, err := r.DB.ExecContext(ctx, stmt, query, outcome, at.UTC())
	return err
}

// Top returns the most frequent lookups, optionally filtered by outcome.
func (r *PGRepo) Top(ctx context.Context, outcome string, limit int) ([]Lookup, error) {
	const query = `
SELECT query, outcome, count, last_seen_at
FROM clause_lookups
WHERE ($1 = '' OR outcome = $1)
ORDER BY count DESC, last_seen_at DESC, query ASC, outcome ASC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, outcome, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lookup{}
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.Query, &l.Outcome, &l.Count, &l.LastSeenAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
