package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"datemerge/internal/platform/store"
)

// EventsTable is the clickhouse table merge events land in
//
//	CREATE TABLE merge_events (
//		ts DateTime64(3, 'UTC'),
//		id UUID,
//		entity_type LowCardinality(String),
//		lang LowCardinality(String),
//		branch LowCardinality(String),
//		intent LowCardinality(String),
//		merged Bool
//	) ENGINE = MergeTree ORDER BY (ts, branch)
const EventsTable = "merge_events"

// Events is the analytical sink for merge outcomes
type Events interface {
	Record(ctx context.Context, evs []Event) error
	Branches(ctx context.Context, since time.Time) ([]BranchCount, error)
}

// Event is one merge outcome
type Event struct {
	At         time.Time
	ID         uuid.UUID
	EntityType string
	Lang       string
	Branch     string
	Intent     string
	Merged     bool
}

// BranchCount is the number of merges per day and branch
type BranchCount struct {
	Day    time.Time
	Branch string
	Merges uint64
}

// CH writes events through the clickhouse seam
type CH struct{ ch store.Clickhouse }

// NewCH returns the clickhouse events repo
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("repo.NewCH requires a non nil Clickhouse")
	}
	return &CH{ch: ch}
}

// Record appends evs in one batch
func (r *CH) Record(ctx context.Context, evs []Event) error {
	if len(evs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(evs))
	for _, e := range evs {
		rows = append(rows, []any{e.At.UTC(), e.ID, e.EntityType, e.Lang, e.Branch, e.Intent, e.Merged})
	}
	return r.ch.Insert(ctx, EventsTable, rows)
}

// Branches counts merges per day and branch since the given instant
func (r *CH) Branches(ctx context.Context, since time.Time) ([]BranchCount, error) {
	const sql = `
SELECT toDate(ts) AS day, branch, count() AS merges
FROM merge_events
WHERE ts >= ?
GROUP BY day, branch
ORDER BY day ASC, branch ASC
`
	rows, err := r.ch.Query(ctx, sql, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BranchCount
	for rows.Next() {
		var bc BranchCount
		if err := rows.Scan(&bc.Day, &bc.Branch, &bc.Merges); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}
