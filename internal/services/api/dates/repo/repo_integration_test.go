//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"datemerge/internal/platform/store"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
}

func TestMergeLog_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "datemerge-repo-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = st.Close(context.Background()) }()

	r := NewPG().Bind(st.PG)
	for i := 0; i < 2; i++ {
		if err := r.EnsureSchema(ctx); err != nil {
			t.Fatalf("ensure schema pass %d: %v", i, err)
		}
	}

	base := time.Date(2025, 10, 6, 7, 0, 0, 0, time.UTC)
	first := Entry{
		ID: uuid.New(), CreatedAt: base, EntityType: "duckling:datetime", Lang: "fr",
		Reference: base, Branch: "day_of_week", Intent: "substitute_weekday",
		Content: "vendredi", Value: "2025-10-10T00:00:00+02:00/day", Merged: true,
	}
	second := first
	second.ID = uuid.New()
	second.CreatedAt = base.Add(time.Minute)
	second.Branch = "fallback"
	second.Error = "day 31 out of range"

	err = st.PG.Tx(ctx, func(q store.RowQuerier) error {
		tx := NewPG().Bind(q)
		for _, e := range []Entry{first, second, first} {
			if err := tx.Insert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows %d want 2 (duplicate id must be ignored)", len(got))
	}
	if got[0].ID != second.ID || got[0].Error != second.Error {
		t.Fatalf("newest first, got %+v", got[0])
	}
	if !got[1].CreatedAt.Equal(base) || got[1].Content != "vendredi" {
		t.Fatalf("unexpected oldest row %+v", got[1])
	}

	one, err := r.Recent(ctx, 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("limit: rows=%d err=%v", len(one), err)
	}
}
