//go:build integration

package ipeadata

import (
	"context"
	"testing"
	"time"

	"github.com/apisbr/apisbr/pkg/cache"
	"github.com/apisbr/apisbr/pkg/period"
)

func TestFetchValues_Integration(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	table, err := client.FetchValues(ctx, "BM12_TJOVER12", ValuesFilter{Period: period.MustParse("2015-2016")})
	if err != nil {
		t.Fatalf("FetchValues() error: %v", err)
	}
	if table.Len() == 0 {
		t.Error("FetchValues() returned no rows")
	}
	for _, d := range table.Column("Data") {
		s, _ := d.(string)
		if s < "2015-01-01" || s > "2016-12-31" {
			t.Errorf("date %v outside the period", d)
		}
	}
}
