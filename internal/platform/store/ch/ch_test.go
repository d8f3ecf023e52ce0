package ch

import (
	"context"
	"strings"
	"testing"
)

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestOpen_Lazy(t *testing.T) {
	t.Parallel()

	// opening does not dial, the first query does
	c, err := Open(context.Background(), Config{URL: "clickhouse://127.0.0.1:1/default", Role: "api", Tag: "test"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestInsert_RejectsTableName(t *testing.T) {
	t.Parallel()

	c := &CH{}
	for _, name := range []string{"", "merge events", "x; DROP TABLE y", "1abc"} {
		if err := c.Insert(context.Background(), name, [][]any{{1}}); err == nil {
			t.Fatalf("Insert(%q) expected error", name)
		}
	}
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	c := &CH{}
	if err := c.Insert(context.Background(), "datemerge.merge_events", nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	t.Parallel()

	var c *CH
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestClientInfo(t *testing.T) {
	t.Parallel()

	info := clientInfo("api", " v1 ")
	if len(info.Products) == 0 || info.Products[0].Name != "datemerge" || info.Products[0].Version != "v1" {
		t.Fatalf("products = %+v", info.Products)
	}
	if !strings.HasPrefix(info.Products[2].Version, "go") {
		t.Fatalf("go version = %q", info.Products[2].Version)
	}
}
