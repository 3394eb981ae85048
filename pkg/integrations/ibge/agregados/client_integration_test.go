//go:build integration

package agregados

import (
	"context"
	"testing"
	"time"

	"github.com/apisbr/apisbr/pkg/cache"
)

func TestFetchData_Integration(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	md, err := client.FetchMetadata(ctx, "1705", false)
	if err != nil {
		t.Fatalf("FetchMetadata() error: %v", err)
	}
	if len(md.Variables) == 0 {
		t.Fatal("aggregate 1705 should have variables")
	}

	table, err := client.FetchData(ctx, Query{
		Identifier: "1705-" + md.Variables[0].ID,
		Level:      "N1",
		Periods:    "-1",
	})
	if err != nil {
		t.Fatalf("FetchData() error: %v", err)
	}
	if table.Len() == 0 {
		t.Error("FetchData() returned no rows")
	}
}
