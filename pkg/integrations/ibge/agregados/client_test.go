package agregados

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apisbr/apisbr/pkg/cache"
	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
)

const catalogJSON = `[
  {"id": "SN", "nome": "Índice Nacional de Preços ao Consumidor Amplo", "agregados": [
    {"id": "1419", "nome": "IPCA - Variação mensal, acumulada no ano, acumulada em 12 meses e peso mensal"},
    {"id": "7060", "nome": "IPCA - Variação mensal, acumulada no ano e peso mensal"}
  ]},
  {"id": "CD", "nome": "Censo Demográfico", "agregados": [
    {"id": "1378", "nome": "População residente"}
  ]}
]`

const metadataJSON = `{
  "id": 1419,
  "nome": "IPCA - Variação mensal, acumulada no ano, acumulada em 12 meses e peso mensal",
  "URL": "https://sidra.ibge.gov.br/tabela/1419",
  "pesquisa": "Índice Nacional de Preços ao Consumidor Amplo",
  "assunto": "Índices de preços",
  "periodicidade": {"frequencia": "mensal", "inicio": 201201, "fim": 201912},
  "nivelTerritorial": {"Administrativo": ["N1", "N6", "N7"], "Especial": [], "IBGE": []},
  "variaveis": [
    {"id": 63, "nome": "IPCA - Variação mensal", "unidade": "%", "sumarizacao": []},
    {"id": 69, "nome": "IPCA - Variação acumulada no ano", "unidade": "%", "sumarizacao": []},
    {"id": 66, "nome": "IPCA - Peso mensal", "unidade": "%", "sumarizacao": []}
  ],
  "classificacoes": [
    {"id": 315, "nome": "Geral, grupo, subgrupo, item e subitem", "sumarizacao": {"status": false, "excecao": []},
     "categorias": [
       {"id": 7169, "nome": "Índice geral", "unidade": null, "nivel": 0},
       {"id": 7170, "nome": "1.Alimentação e bebidas", "unidade": null, "nivel": 1}
     ]}
  ]
}`

const dataJSON = `[
  {"id": "63", "variavel": "IPCA - Variação mensal", "unidade": "%",
   "resultados": [
     {"classificacoes": [{"id": "315", "nome": "Geral, grupo, subgrupo, item e subitem", "categoria": {"7169": "Índice geral"}}],
      "series": [
        {"localidade": {"id": "1", "nivel": {"id": "N1", "nome": "Brasil"}, "nome": "Brasil"},
         "serie": {"201902": "0.43", "201901": "0.32", "201903": "..."}}
      ]}
   ]}
]`

type recorder struct {
	paths   []string
	queries []string
}

func agregadosServer(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.paths = append(rec.paths, r.URL.Path)
		rec.queries = append(rec.queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/" || r.URL.Path == "":
			w.Write([]byte(catalogJSON))
		case r.URL.Path == "/1419/metadados":
			w.Write([]byte(metadataJSON))
		case strings.HasPrefix(r.URL.Path, "/1419/periodos/"):
			w.Write([]byte(dataJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.Name() != "ibge-agregados" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestClient_FetchCatalog(t *testing.T) {
	server, _ := agregadosServer(t)
	c := testClient(t, server.URL+"/")

	surveys, err := c.FetchCatalog(context.Background(), false)
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}
	if len(surveys) != 2 || len(surveys[0].Aggregates) != 2 {
		t.Fatalf("unexpected catalog %+v", surveys)
	}

	table := CatalogTable(surveys)
	if table.Len() != 3 {
		t.Errorf("CatalogTable rows = %d, want 3", table.Len())
	}
	if table.Rows[2]["agregado_id"] != "1378" {
		t.Errorf("unexpected row %v", table.Rows[2])
	}
}

func TestClient_FindAggregate(t *testing.T) {
	server, _ := agregadosServer(t)
	c := testClient(t, server.URL+"/")
	ctx := context.Background()

	id, err := c.FindAggregate(ctx, "população residente")
	if err != nil {
		t.Fatalf("FindAggregate failed: %v", err)
	}
	if id != "1378" {
		t.Errorf("FindAggregate = %q, want 1378", id)
	}

	_, err = c.FindAggregate(ctx, "IPCA mensal")
	var nm *integrations.NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("expected *NoMatchError, got %v", err)
	}
	if len(nm.Similar) != 2 {
		t.Errorf("similar = %v, want both IPCA aggregates", nm.Similar)
	}
	for name := range nm.Similar {
		if !strings.HasPrefix(name, "Agregado - ") {
			t.Errorf("similar key %q should start with \"Agregado - \"", name)
		}
	}
}

func TestClient_FetchMetadata(t *testing.T) {
	server, _ := agregadosServer(t)
	c := testClient(t, server.URL)

	md, err := c.FetchMetadata(context.Background(), "1419", false)
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if md.ID != "1419" || len(md.Variables) != 3 || md.Variables[0].ID != "63" {
		t.Errorf("unexpected metadata %+v", md)
	}
	if md.Periodicity.Start != "201201" || md.Periodicity.Frequency != "mensal" {
		t.Errorf("unexpected periodicity %+v", md.Periodicity)
	}
	if strings.Join(md.Levels.Administrative, ",") != "N1,N6,N7" {
		t.Errorf("levels = %v", md.Levels.Administrative)
	}
	if len(md.Classifications) != 1 || md.Classifications[0].Categories[1].ID != "7170" {
		t.Errorf("unexpected classifications %+v", md.Classifications)
	}

	if VariablesTable(md).Len() != 3 || ClassificationsTable(md).Len() != 2 {
		t.Error("unexpected metadata tables")
	}
}

func TestClient_FetchMetadata_NotFound(t *testing.T) {
	server, _ := agregadosServer(t)
	c := testClient(t, server.URL)

	_, err := c.FetchMetadata(context.Background(), "9999", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FindVariable(t *testing.T) {
	server, _ := agregadosServer(t)
	c := testClient(t, server.URL)
	ctx := context.Background()

	id, err := c.FindVariable(ctx, "IPCA - Variação mensal", "1419")
	if err != nil || id != "63" {
		t.Errorf("FindVariable = %q, %v; want 63", id, err)
	}

	id, err = c.FindVariable(ctx, "ipca - variacao mensal|IPCA - Peso mensal", "1419")
	if err != nil || id != "63|66" {
		t.Errorf("FindVariable (multiple) = %q, %v; want 63|66", id, err)
	}

	_, err = c.FindVariable(ctx, "Variação", "1419")
	var nm *integrations.NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("expected *NoMatchError, got %v", err)
	}
	if nm.Similar["Variavel - IPCA - Variação mensal"] != "1419-63" {
		t.Errorf("similar = %v", nm.Similar)
	}
}

func TestClient_FindID(t *testing.T) {
	server, _ := agregadosServer(t)
	c := testClient(t, server.URL)
	ctx := context.Background()

	tests := []struct {
		title string
		want  string
	}{
		{"1419", "1419"},
		{"1419;63", "1419-63"},
		{"1419;IPCA - Peso mensal", "1419-66"},
		{"1419;63|69", "1419-63|69"},
	}
	for _, tt := range tests {
		got, err := c.FindID(ctx, tt.title)
		if err != nil {
			t.Errorf("FindID(%q) error = %v", tt.title, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FindID(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}

	if _, err := c.FindID(ctx, "a;b;c"); !apierrors.Is(err, apierrors.ErrCodeInvalidIdentifier) {
		t.Errorf("expected INVALID_IDENTIFIER, got %v", err)
	}
}

func TestClient_ParseIdentifier(t *testing.T) {
	server, rec := agregadosServer(t)
	c := testClient(t, server.URL)
	ctx := context.Background()

	agg, vars, err := c.ParseIdentifier(ctx, "1419-63|69")
	if err != nil || agg != "1419" || vars != "63|69" {
		t.Errorf("ParseIdentifier = %q, %q, %v", agg, vars, err)
	}
	agg, vars, err = c.ParseIdentifier(ctx, "1419")
	if err != nil || agg != "1419" || vars != "" {
		t.Errorf("ParseIdentifier(1419) = %q, %q, %v", agg, vars, err)
	}
	if len(rec.paths) != 0 {
		t.Errorf("numeric identifiers should not hit the API, got %v", rec.paths)
	}

	agg, vars, err = c.ParseIdentifier(ctx, "1419;IPCA - Variação mensal")
	if err != nil || agg != "1419" || vars != "63" {
		t.Errorf("ParseIdentifier(title) = %q, %q, %v", agg, vars, err)
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return &Client{
		Client:  integrations.NewClient(cache.NewNullCache(), "ibge-agregados:", time.Hour, nil),
		baseURL: strings.TrimSuffix(serverURL, "/"),
	}
}
