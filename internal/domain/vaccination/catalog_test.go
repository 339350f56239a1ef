package vaccination

import "testing"

func TestCatalogComplete(t *testing.T) {
	if len(Catalog) != 30 {
		t.Errorf("catalog has %d entries, want 30", len(Catalog))
	}
	counts := make(map[string]int)
	for _, v := range Catalog {
		counts[v.Category]++
	}
	want := map[string]int{
		CategoryStandard: 15,
		CategoryAdult:    3,
		CategoryCOVID:    1,
		CategoryTravel:   8,
		CategoryRegional: 1,
		CategoryOther:    1,
	}
	for category, n := range want {
		if counts[category] != n {
			t.Errorf("category %s has %d entries, want %d", category, counts[category], n)
		}
	}
}

func TestFindByName(t *testing.T) {
	tests := []struct {
		query  string
		wantID string
	}{
		{"Tetanus (Wundstarrkrampf)", "tetanus"},
		{"tetanus (wundstarrkrampf)", "tetanus"},
		{"TETANUS (WUNDSTARRKRAMPF)", "tetanus"},
		{"fsme", "fsme"},
		{"covid19", "covid19"},
	}
	for _, tt := range tests {
		got, ok := FindByName(tt.query)
		if !ok {
			t.Errorf("FindByName(%q) not found", tt.query)
			continue
		}
		if got.ID != tt.wantID {
			t.Errorf("FindByName(%q) = %s, want %s", tt.query, got.ID, tt.wantID)
		}
	}
}

func TestFindByNameUnknown(t *testing.T) {
	if _, ok := FindByName("Pocken"); ok {
		t.Error("expected no match for a vaccine outside the catalog")
	}
}

func TestByCategory(t *testing.T) {
	travel := ByCategory(CategoryTravel)
	if len(travel) != 8 {
		t.Fatalf("expected 8 travel vaccines, got %d", len(travel))
	}
	for _, v := range travel {
		if v.Category != CategoryTravel {
			t.Errorf("entry %s has category %s", v.ID, v.Category)
		}
	}
	if got := ByCategory("Unbekannt"); got != nil {
		t.Errorf("unknown category should yield nil, got %v", got)
	}
}
