package vaccination

import "strings"

const (
	CategoryStandard = "Standard"
	CategoryAdult    = "Erwachsene"
	CategoryCOVID    = "COVID-19"
	CategoryTravel   = "Reise"
	CategoryRegional = "Regional"
	CategoryOther    = "Sonstige"
)

// CatalogEntry is one vaccine of the German immunization catalog.
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Catalog lists the vaccines of the German STIKO recommendations plus the
// common travel and regional vaccines, grouped by category.
var Catalog = []CatalogEntry{
	{ID: "tetanus", Name: "Tetanus (Wundstarrkrampf)", Description: "Bakterielle Infektion", Category: CategoryStandard},
	{ID: "diphtherie", Name: "Diphtherie", Description: "Bakterielle Infektion der Atemwege", Category: CategoryStandard},
	{ID: "pertussis", Name: "Pertussis (Keuchhusten)", Description: "Bakterielle Atemwegsinfektion", Category: CategoryStandard},
	{ID: "polio", Name: "Poliomyelitis (Kinderlähmung)", Description: "Virale Infektion", Category: CategoryStandard},
	{ID: "hib", Name: "Haemophilus influenzae Typ b (Hib)", Description: "Bakterielle Infektion", Category: CategoryStandard},
	{ID: "hepatitis_b", Name: "Hepatitis B", Description: "Virale Leberentzündung", Category: CategoryStandard},
	{ID: "pneumokokken", Name: "Pneumokokken", Description: "Bakterielle Infektion", Category: CategoryStandard},
	{ID: "rotaviren", Name: "Rotaviren", Description: "Virale Magen-Darm-Infektion", Category: CategoryStandard},
	{ID: "meningokokken_c", Name: "Meningokokken C", Description: "Bakterielle Hirnhautentzündung", Category: CategoryStandard},
	{ID: "meningokokken_b", Name: "Meningokokken B", Description: "Bakterielle Hirnhautentzündung", Category: CategoryStandard},
	{ID: "masern", Name: "Masern", Description: "Virale Infektion", Category: CategoryStandard},
	{ID: "mumps", Name: "Mumps (Ziegenpeter)", Description: "Virale Infektion", Category: CategoryStandard},
	{ID: "roeteln", Name: "Röteln", Description: "Virale Infektion", Category: CategoryStandard},
	{ID: "varizellen", Name: "Varizellen (Windpocken)", Description: "Virale Infektion", Category: CategoryStandard},
	{ID: "hpv", Name: "HPV (Humane Papillomviren)", Description: "Schutz vor Gebärmutterhalskrebs", Category: CategoryStandard},

	{ID: "influenza", Name: "Influenza (Grippe)", Description: "Jährliche Schutzimpfung", Category: CategoryAdult},
	{ID: "herpes_zoster", Name: "Herpes Zoster (Gürtelrose)", Description: "Für Personen ab 50 Jahren", Category: CategoryAdult},
	{ID: "rsv", Name: "RSV (Respiratorisches Synzytial-Virus)", Description: "Atemwegsinfektion", Category: CategoryAdult},

	{ID: "covid19", Name: "COVID-19", Description: "Corona-Schutzimpfung", Category: CategoryCOVID},

	{ID: "hepatitis_a", Name: "Hepatitis A", Description: "Reiseimpfung", Category: CategoryTravel},
	{ID: "typhus", Name: "Typhus", Description: "Reiseimpfung", Category: CategoryTravel},
	{ID: "tollwut", Name: "Tollwut", Description: "Reiseimpfung bei Tierkontakt", Category: CategoryTravel},
	{ID: "gelbfieber", Name: "Gelbfieber", Description: "Pflichtimpfung für bestimmte Länder", Category: CategoryTravel},
	{ID: "japanische_enzephalitis", Name: "Japanische Enzephalitis", Description: "Reiseimpfung Asien", Category: CategoryTravel},
	{ID: "cholera", Name: "Cholera", Description: "Reiseimpfung", Category: CategoryTravel},
	{ID: "meningokokken_acwy", Name: "Meningokokken ACWY", Description: "Reiseimpfung Afrika/Asien", Category: CategoryTravel},
	{ID: "dengue", Name: "Dengue-Fieber", Description: "Reiseimpfung für Endemiegebiete", Category: CategoryTravel},

	{ID: "fsme", Name: "FSME (Frühsommer-Meningoenzephalitis)", Description: "Zeckenschutzimpfung", Category: CategoryRegional},

	{ID: "sonstige", Name: "Sonstige Impfung", Description: "Andere Impfung (manuelle Eingabe)", Category: CategoryOther},
}

// Categories lists the catalog categories with display labels, in the order
// they are shown.
var Categories = []struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}{
	{CategoryStandard, "Standardimpfungen (STIKO)"},
	{CategoryAdult, "Erwachsenen-Impfungen"},
	{CategoryCOVID, "COVID-19"},
	{CategoryTravel, "Reiseimpfungen"},
	{CategoryRegional, "Regionale Impfungen"},
	{CategoryOther, "Sonstige"},
}

// ByCategory returns the catalog entries of one category.
func ByCategory(category string) []CatalogEntry {
	var out []CatalogEntry
	for _, v := range Catalog {
		if v.Category == category {
			out = append(out, v)
		}
	}
	return out
}

// FindByName looks a vaccine up by display name or catalog id, case
// insensitively.
func FindByName(name string) (CatalogEntry, bool) {
	needle := strings.ToLower(name)
	for _, v := range Catalog {
		if strings.ToLower(v.Name) == needle || v.ID == needle {
			return v, true
		}
	}
	return CatalogEntry{}, false
}
