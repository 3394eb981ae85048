package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/apisbr/apisbr/pkg/observability"
)

func TestSourceHooks(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnLookup(ctx, "ipea", "PIB", true)
	m.OnLookup(ctx, "ipea", "PIB estadual", false)
	m.OnLookup(ctx, "ipea", "PIB municipal", false)
	m.OnFetchComplete(ctx, "ipea", "ESTIMA_PIB", 27, time.Second, nil)
	m.OnFetchComplete(ctx, "ipea", "X", 0, time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(m.Lookups.WithLabelValues("ipea", "false")); got != 2 {
		t.Errorf("unmatched lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Fetches.WithLabelValues("ipea", "ok")); got != 1 {
		t.Errorf("ok fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Fetches.WithLabelValues("ipea", "error")); got != 1 {
		t.Errorf("failed fetches = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.FetchRows); got != 1 {
		t.Errorf("row histograms = %d, want 1", got)
	}
}

func TestCacheHooks(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnCacheMiss(ctx, "ibge-agregados")
	m.OnCacheSet(ctx, "ibge-agregados", 512)
	m.OnCacheHit(ctx, "ibge-agregados")
	m.OnCacheHit(ctx, "ibge-agregados")

	if got := testutil.ToFloat64(m.CacheEvents.WithLabelValues("ibge-agregados", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheBytes.WithLabelValues("ibge-agregados")); got != 512 {
		t.Errorf("bytes = %v, want 512", got)
	}
}

func TestHTTPHooks(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnRequest(ctx, "GET", "servicodados.ibge.gov.br", "/api/v1/localidades/estados")
	m.OnResponse(ctx, "GET", "servicodados.ibge.gov.br", "/api/v1/localidades/estados", 200, 30*time.Millisecond)
	m.OnError(ctx, "GET", "dados.gov.br", "/dados/api/publico/conjuntos-dados", errors.New("timeout"))
	m.ObserveRequest("GET", "/v1/ibge/estados", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.Upstream.WithLabelValues("servicodados.ibge.gov.br", "200")); got != 1 {
		t.Errorf("upstream responses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.UpstreamErrors.WithLabelValues("dados.gov.br")); got != 1 {
		t.Errorf("upstream errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/v1/ibge/estados", "200")); got != 1 {
		t.Errorf("served requests = %v, want 1", got)
	}
}

func TestRegister(t *testing.T) {
	defer observability.Reset()

	m := New(prometheus.NewRegistry())
	m.Register()

	observability.Cache().OnCacheHit(context.Background(), "ipea")
	if got := testutil.ToFloat64(m.CacheEvents.WithLabelValues("ipea", "hit")); got != 1 {
		t.Errorf("registered hooks not receiving events, hits = %v", got)
	}
}

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.OnLookup(context.Background(), "ipea", "x", true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "apisbr_lookups_total" {
			found = true
		}
	}
	if !found {
		t.Error("apisbr_lookups_total not registered")
	}
}
