package labels

import (
	"testing"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

func TestUFAbbrev(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"São Paulo", "SP"},
		{"sao paulo", "SP"},
		{"MATO GROSSO DO SUL", "MS"},
		{"Pará", "PA"},
		{"  Piauí ", "PI"},
		{"Distrito Federal", "DF"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := UFAbbrev(tt.input)
			if err != nil {
				t.Fatalf("UFAbbrev(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("UFAbbrev(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if _, err := UFAbbrev("Guanabara"); !apierrors.Is(err, apierrors.ErrCodeNotFound) {
		t.Errorf("UFAbbrev(Guanabara) error = %v, want NOT_FOUND", err)
	}
}

func TestUFName(t *testing.T) {
	for in, want := range map[string]string{"SC": "Santa Catarina", "rj": "Rio De Janeiro", "ma": "Maranhao"} {
		got, err := UFName(in)
		if err != nil || got != want {
			t.Errorf("UFName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := UFName("XX"); err == nil {
		t.Error("UFName(XX) should fail")
	}
}

func TestLookup(t *testing.T) {
	uf, err := Lookup("go")
	if err != nil || uf.Name != "Goias" || uf.Abbrev != "GO" {
		t.Errorf("Lookup(go) = %+v, %v", uf, err)
	}
	uf, err = Lookup("Goiás")
	if err != nil || uf.Abbrev != "GO" {
		t.Errorf("Lookup(Goiás) = %+v, %v", uf, err)
	}
	if _, err := Lookup("Atlantis"); err == nil {
		t.Error("Lookup(Atlantis) should fail")
	}
}

func TestUFs(t *testing.T) {
	ufs := UFs()
	if len(ufs) != 27 {
		t.Fatalf("UFs() has %d entries, want 27", len(ufs))
	}
	if ufs[0].Abbrev != "AC" || ufs[26].Abbrev != "TO" {
		t.Errorf("UFs() not sorted: first %s, last %s", ufs[0].Abbrev, ufs[26].Abbrev)
	}
	if !IsUF("sp") || IsUF("ZZ") {
		t.Error("IsUF mismatch")
	}
}
