package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"datemerge/internal/platform/store/pg"
)

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

type fakePgx struct {
	execSQL string
	execErr error
	rows    pgx.Rows
	rowErr  error
}

func (f *fakePgx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = sql
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakePgx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.rows == nil {
		return nil, errors.New("query failed")
	}
	return f.rows, nil
}

func (f *fakePgx) QueryRow(context.Context, string, ...any) pgx.Row {
	return scanFunc(func(dest ...any) error {
		if f.rowErr != nil {
			return f.rowErr
		}
		*dest[0].(*int) = 1
		return nil
	})
}

type recTracer struct{ evs []pg.QueryEvent }

func (r *recTracer) OnQuery(_ context.Context, ev pg.QueryEvent) { r.evs = append(r.evs, ev) }

func TestTracedQuerier_ExecReportsEvent(t *testing.T) {
	f := &fakePgx{}
	tr := &recTracer{}
	q := tracedQuerier{q: f, tracer: tr, slowUS: 0}

	ct, err := q.Exec(context.Background(), "insert into merge_log values ($1)", "x")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if ct.RowsAffected() != 1 {
		t.Fatalf("rows affected %d", ct.RowsAffected())
	}
	if len(tr.evs) != 1 || tr.evs[0].SQL != f.execSQL {
		t.Fatalf("events %+v", tr.evs)
	}
	if !tr.evs[0].Slow {
		t.Fatalf("slowUS 0 marks every query slow")
	}
}

func TestTracedQuerier_QueryRowReportsScanError(t *testing.T) {
	boom := errors.New("no rows")
	tr := &recTracer{}
	q := tracedQuerier{q: &fakePgx{rowErr: boom}, tracer: tr, slowUS: -1}

	var one int
	if err := q.QueryRow(context.Background(), "select 1").Scan(&one); !errors.Is(err, boom) {
		t.Fatalf("scan err %v", err)
	}
	if len(tr.evs) != 1 || !errors.Is(tr.evs[0].Err, boom) || tr.evs[0].Slow {
		t.Fatalf("events %+v", tr.evs)
	}
}

func TestTracedQuerier_QueryErrorAndNilTracer(t *testing.T) {
	q := tracedQuerier{q: &fakePgx{}}
	if _, err := q.Query(context.Background(), "select"); err == nil {
		t.Fatalf("want query error")
	}
	var one int
	if err := q.QueryRow(context.Background(), "select 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("one=%d err=%v", one, err)
	}
}

func TestPGAdapter_NilPing(t *testing.T) {
	var a *pgAdapter
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("want error for nil adapter")
	}
}
