//go:build integration

package localidades

import (
	"context"
	"testing"
	"time"

	"github.com/apisbr/apisbr/pkg/cache"
)

func TestMunicipalityName_Integration(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{"3550308", "Sao Paulo - SP", false},
		{"355030", "Sao Paulo - SP", false},
		{"2408003", "Mossoro - RN", false},
		{"9999999", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := client.MunicipalityName(ctx, tt.code, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MunicipalityName(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MunicipalityName(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestFetchStates_Integration(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	states, err := client.FetchStates(ctx, false)
	if err != nil {
		t.Fatalf("FetchStates() error: %v", err)
	}
	if len(states) != 27 {
		t.Errorf("FetchStates() returned %d states, want 27", len(states))
	}
}
