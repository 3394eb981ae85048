package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSourceHooks{}
	s.OnLookup(ctx, "ipeadata", "Taxa de desocupação", false)
	s.OnFetchStart(ctx, "ibge-agregados", "1705-214")
	s.OnFetchComplete(ctx, "ibge-agregados", "1705-214", 27, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "ibge-localidades")
	c.OnCacheMiss(ctx, "ibge-agregados")
	c.OnCacheSet(ctx, "dados-abertos", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "servicodados.ibge.gov.br", "/api/v3/agregados")
	h.OnResponse(ctx, "GET", "servicodados.ibge.gov.br", "/api/v3/agregados", 200, time.Second)
	h.OnError(ctx, "GET", "servicodados.ibge.gov.br", "/api/v3/agregados", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should return NoopSourceHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customSource := &testSourceHooks{}
	SetSourceHooks(customSource)
	if Source() != customSource {
		t.Error("SetSourceHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Reset() should restore NoopSourceHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)
	SetCacheHooks(nil)

	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

type testSourceHooks struct{ NoopSourceHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
