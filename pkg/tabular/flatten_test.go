package tabular

import (
	"reflect"
	"testing"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

const municipiosJSON = `[
  {
    "id": 1100015,
    "nome": "Alta Floresta D'Oeste",
    "microrregiao": {
      "id": 11006,
      "nome": "Cacoal",
      "mesorregiao": {"id": 1102, "nome": "Leste Rondoniense", "UF": {"id": 11, "sigla": "RO"}}
    }
  },
  {
    "id": 1200013,
    "nome": "Acrelândia",
    "microrregiao": {
      "id": 12004,
      "nome": "Rio Branco",
      "mesorregiao": {"id": 1202, "nome": "Vale do Acre", "UF": {"id": 12, "sigla": "AC"}}
    }
  }
]`

func TestFlattenJSONNested(t *testing.T) {
	table, err := FlattenJSON([]byte(municipiosJSON), "")
	if err != nil {
		t.Fatalf("FlattenJSON() error: %v", err)
	}

	wantCols := []string{
		"id",
		"microrregiao.id",
		"microrregiao.mesorregiao.UF.id",
		"microrregiao.mesorregiao.UF.sigla",
		"microrregiao.mesorregiao.id",
		"microrregiao.mesorregiao.nome",
		"microrregiao.nome",
		"nome",
	}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("Columns = %v\nwant %v", table.Columns, wantCols)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if got := table.Rows[1]["microrregiao.mesorregiao.UF.sigla"]; got != "AC" {
		t.Errorf("UF sigla = %v, want AC", got)
	}
	if got := table.Rows[0]["id"]; got != int64(1100015) {
		t.Errorf("id = %#v, want int64 1100015", got)
	}
}

func TestFlattenShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantCols []string
		wantRows int
	}{
		{"nil", nil, nil, 0},
		{"empty array", []any{}, nil, 0},
		{"single object", map[string]any{"a": 1.0, "b": map[string]any{"c": "x"}}, []string{"a", "b.c"}, 1},
		{"scalar", "hello", []string{"value"}, 1},
		{"array of scalars", []any{1.0, 2.0}, []string{"value"}, 2},
		{"array value kept", map[string]any{"tags": []any{"a", "b"}}, []string{"tags"}, 1},
		{"empty nested object", map[string]any{"meta": map[string]any{}}, []string{"meta"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Flatten(tt.input)
			if !reflect.DeepEqual(table.Columns, tt.wantCols) {
				t.Errorf("Columns = %v, want %v", table.Columns, tt.wantCols)
			}
			if table.Len() != tt.wantRows {
				t.Errorf("Len() = %d, want %d", table.Len(), tt.wantRows)
			}
		})
	}
}

func TestFlattenHeterogeneousRows(t *testing.T) {
	input := []any{
		map[string]any{"id": "a"},
		map[string]any{"id": "b", "extra": map[string]any{"x": true}},
	}
	table := Flatten(input)

	want := []string{"id", "extra.x"}
	if !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Columns = %v, want %v", table.Columns, want)
	}
	if table.Rows[0]["extra.x"] != nil {
		t.Error("missing cells should be nil")
	}
}

func TestFlattenOptions(t *testing.T) {
	input := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1.0}}}

	sep := Flatten(input, WithSeparator("_"))
	if !reflect.DeepEqual(sep.Columns, []string{"a_b_c"}) {
		t.Errorf("WithSeparator columns = %v", sep.Columns)
	}

	depth := Flatten(input, WithMaxDepth(1))
	if !reflect.DeepEqual(depth.Columns, []string{"a"}) {
		t.Errorf("WithMaxDepth columns = %v", depth.Columns)
	}
	if _, ok := depth.Rows[0]["a"].(map[string]any); !ok {
		t.Errorf("WithMaxDepth should keep the object whole, got %T", depth.Rows[0]["a"])
	}
}

func TestFlattenJSONPath(t *testing.T) {
	doc := `{"value": [{"SERCODIGO": "BM12_TJOVER12", "VALVALOR": 13.65}, {"SERCODIGO": "BM12_TJOVER12", "VALVALOR": 13.75}]}`

	table, err := FlattenJSON([]byte(doc), "$.value")
	if err != nil {
		t.Fatalf("FlattenJSON() error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if table.Rows[1]["VALVALOR"] != 13.75 {
		t.Errorf("VALVALOR = %#v, want 13.75", table.Rows[1]["VALVALOR"])
	}

	names, err := FlattenJSON([]byte(doc), "$.value[*].SERCODIGO")
	if err != nil {
		t.Fatalf("FlattenJSON() wildcard error: %v", err)
	}
	if names.Len() != 2 || names.Rows[0]["value"] != "BM12_TJOVER12" {
		t.Errorf("wildcard selection = %+v", names.Rows)
	}
}

func TestFlattenJSONErrors(t *testing.T) {
	if _, err := FlattenJSON([]byte(`{"a":`), ""); !apierrors.Is(err, apierrors.ErrCodeInvalidResponse) {
		t.Errorf("truncated JSON error = %v, want INVALID_RESPONSE", err)
	}
	if _, err := FlattenJSON([]byte(`{"a": 1}`), "$.missing"); !apierrors.Is(err, apierrors.ErrCodeInvalidInput) {
		t.Errorf("missing path error = %v, want INVALID_INPUT", err)
	}
}

func TestOf(t *testing.T) {
	type uf struct {
		Sigla  string `json:"sigla"`
		Regiao struct {
			Nome string `json:"nome"`
		} `json:"regiao"`
	}
	var sp uf
	sp.Sigla = "SP"
	sp.Regiao.Nome = "Sudeste"

	table, err := Of([]uf{sp})
	if err != nil {
		t.Fatalf("Of() error: %v", err)
	}
	if table.Rows[0]["regiao.nome"] != "Sudeste" {
		t.Errorf("regiao.nome = %v", table.Rows[0]["regiao.nome"])
	}
}
