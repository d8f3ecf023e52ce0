package store

import (
	"context"
	"errors"
	"testing"
)

type branchRows struct {
	data   [][2]string
	idx    int
	err    error
	closed bool
}

func (r *branchRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *branchRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

func (r *branchRows) Err() error        { return r.err }
func (r *branchRows) Close()            { r.closed = true }
func (r *branchRows) Columns() []string { return []string{"id", "branch"} }

type rowsQuerier struct {
	RowQuerier
	rows Rows
	err  error
}

func (q rowsQuerier) Query(context.Context, string, ...any) (Rows, error) { return q.rows, q.err }

type logRow struct{ id, branch string }

func scanLog(r Row) (logRow, error) {
	var x logRow
	err := r.Scan(&x.id, &x.branch)
	return x, err
}

func TestMany(t *testing.T) {
	rows := &branchRows{data: [][2]string{{"a", "day_of_week"}, {"b", "hour"}}}
	got, err := Many(context.Background(), rowsQuerier{rows: rows}, scanLog, "select id, branch from merge_log")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].branch != "day_of_week" || got[1].id != "b" {
		t.Fatalf("got %+v", got)
	}
	if !rows.closed {
		t.Fatalf("rows not closed")
	}
}

func TestMany_Errors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Many(context.Background(), rowsQuerier{err: boom}, scanLog, "q"); !errors.Is(err, boom) {
		t.Fatalf("query err = %v", err)
	}

	rows := &branchRows{err: boom}
	if _, err := Many(context.Background(), rowsQuerier{rows: rows}, scanLog, "q"); !errors.Is(err, boom) {
		t.Fatalf("rows err = %v", err)
	}

	failing := func(Row) (logRow, error) { return logRow{}, boom }
	rows = &branchRows{data: [][2]string{{"a", "fresh"}}}
	if _, err := Many(context.Background(), rowsQuerier{rows: rows}, failing, "q"); !errors.Is(err, boom) {
		t.Fatalf("scan err = %v", err)
	}
}

func TestMany_EmptyIsNil(t *testing.T) {
	got, err := Many(context.Background(), rowsQuerier{rows: &branchRows{}}, scanLog, "q")
	if err != nil || got != nil {
		t.Fatalf("got %v err %v", got, err)
	}
}
