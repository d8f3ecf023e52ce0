// Package repo provides postgres and clickhouse access for dates
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"datemerge/internal/modkit/repokit"
	"datemerge/internal/platform/store"
)

// Repo is the merge audit log kept in postgres
type Repo interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Entry is one audited merge
type Entry struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	EntityType string
	Lang       string
	Reference  time.Time
	Branch     string
	Intent     string
	Content    string
	Value      string
	Merged     bool
	Error      string
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) EnsureSchema(ctx context.Context) error {
	const table = `
create table if not exists merge_log (
	id uuid primary key,
	created_at timestamptz not null default now(),
	entity_type text not null,
	lang text not null,
	reference timestamptz not null,
	branch text not null,
	intent text not null,
	content text not null,
	value text not null,
	merged boolean not null,
	error text not null default ''
)
`
	const index = `create index if not exists merge_log_created_at_idx on merge_log (created_at desc)`
	for _, sql := range []string{table, index} {
		if _, err := r.q.Exec(ctx, sql); err != nil {
			return err
		}
	}
	return nil
}

func (r *queries) Insert(ctx context.Context, e Entry) error {
	const sql = `
insert into merge_log (id, created_at, entity_type, lang, reference, branch, intent, content, value, merged, error)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
on conflict (id) do nothing
`
	_, err := r.q.Exec(ctx, sql,
		e.ID, e.CreatedAt, e.EntityType, e.Lang, e.Reference,
		e.Branch, e.Intent, e.Content, e.Value, e.Merged, e.Error,
	)
	return err
}

func (r *queries) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const sql = `
select id, created_at, entity_type, lang, reference, branch, intent, content, value, merged, error
from merge_log
order by created_at desc, id
limit $1
`
	return store.Many(ctx, r.q, scanEntry, sql, limit)
}

func scanEntry(row store.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.CreatedAt, &e.EntityType, &e.Lang, &e.Reference,
		&e.Branch, &e.Intent, &e.Content, &e.Value, &e.Merged, &e.Error)
	return e, err
}
