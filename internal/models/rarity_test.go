package models

import (
	"encoding/json"
	"testing"
)

func TestAllRarities(t *testing.T) {
	rarities := AllRarities()
	if len(rarities) != 5 {
		t.Fatalf("expected 5 rarities, got %d", len(rarities))
	}
	for i := 1; i < len(rarities); i++ {
		if !rarities[i-1].Better(rarities[i]) {
			t.Errorf("%s should be better than %s", rarities[i-1], rarities[i])
		}
	}
}

func TestParseRarity(t *testing.T) {
	tests := []struct {
		in      string
		want    Rarity
		wantErr bool
	}{
		{"UR", RarityUR, false},
		{"HR", RarityHR, false},
		{"SSR", RaritySSR, false},
		{"SR", RaritySR, false},
		{"R", RarityR, false},
		{"N", RarityN, false},
		{"ssr", RarityN, true},
		{"", RarityN, true},
	}

	for _, tt := range tests {
		got, err := ParseRarity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRarity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRarity(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRarity_String(t *testing.T) {
	if got := RaritySSR.String(); got != "SSR" {
		t.Errorf("String() = %q, want SSR", got)
	}
	if got := Rarity(42).String(); got != "Rarity(42)" {
		t.Errorf("String() = %q, want Rarity(42)", got)
	}
}

func TestRarity_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]Rarity{"rarity": RarityHR})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"rarity":"HR"}` {
		t.Errorf("marshal = %s", b)
	}

	var out struct {
		Rarity Rarity `json:"rarity"`
	}
	if err := json.Unmarshal([]byte(`{"rarity":"SR"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Rarity != RaritySR {
		t.Errorf("unmarshal = %s, want SR", out.Rarity)
	}

	if err := json.Unmarshal([]byte(`{"rarity":"XR"}`), &out); err == nil {
		t.Error("expected error for unknown rarity")
	}
}

func TestBasePopularity(t *testing.T) {
	if got := BasePopularity(100, 25); got != 150 {
		t.Errorf("BasePopularity(100, 25) = %d, want 150", got)
	}
}
