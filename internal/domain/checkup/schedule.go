package checkup

import (
	"time"
)

const (
	GenderAll    = "all"
	GenderFemale = "female"
	GenderMale   = "male"
)

// ScheduleEntry defines one recurring adult preventive checkup covered by
// statutory health insurance, with its eligibility window and repeat interval.
type ScheduleEntry struct {
	Type           string `json:"type"`
	MinAge         int    `json:"min_age"`
	MaxAge         int    `json:"max_age,omitempty"` // 0 means no upper bound
	IntervalMonths int    `json:"interval_months"`
	Gender         string `json:"gender"`
	Description    string `json:"description"`
}

// Schedule lists the adult checkup catalog. The cervical cancer screening
// appears twice because its interval changes at age 35.
var Schedule = []ScheduleEntry{
	{Type: "Zahnvorsorge", MinAge: 18, IntervalMonths: 6, Gender: GenderAll,
		Description: "Dental checkup, twice a year"},
	{Type: "Gebärmutterhalskrebs-Screening", MinAge: 20, MaxAge: 34, IntervalMonths: 12, Gender: GenderFemale,
		Description: "Cervical cancer screening, yearly"},
	{Type: "Gebärmutterhalskrebs-Screening", MinAge: 35, IntervalMonths: 36, Gender: GenderFemale,
		Description: "Cervical cancer screening, every 3 years"},
	{Type: "Brustkrebsvorsorge", MinAge: 30, IntervalMonths: 12, Gender: GenderFemale,
		Description: "Breast examination, yearly"},
	{Type: "Mammographie", MinAge: 50, MaxAge: 75, IntervalMonths: 24, Gender: GenderFemale,
		Description: "Mammography screening, every 2 years"},
	{Type: "Gesundheits-Check-up", MinAge: 35, IntervalMonths: 36, Gender: GenderAll,
		Description: "General health checkup, every 3 years"},
	{Type: "Hautkrebs-Screening", MinAge: 35, IntervalMonths: 24, Gender: GenderAll,
		Description: "Skin cancer screening, every 2 years"},
	{Type: "Prostatakrebs-Vorsorge", MinAge: 45, IntervalMonths: 12, Gender: GenderMale,
		Description: "Prostate cancer screening, yearly"},
	{Type: "Darmkrebsvorsorge", MinAge: 50, IntervalMonths: 12, Gender: GenderAll,
		Description: "Colorectal cancer screening, yearly"},
}

// Age returns full years between dateOfBirth and ref, birthday-adjusted.
func Age(dateOfBirth, ref time.Time) int {
	years := ref.Year() - dateOfBirth.Year()
	anniversary := dateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	return years
}

func (e ScheduleEntry) appliesTo(age int, gender string) bool {
	if age < e.MinAge {
		return false
	}
	if e.MaxAge > 0 && age > e.MaxAge {
		return false
	}
	if e.Gender == GenderAll {
		return true
	}
	// Persons registered as diverse are offered every gendered screening.
	return gender == e.Gender || gender == "diverse"
}

// Applicable returns the checkups a person of the given age and gender is
// entitled to. When two entries share a type only the one with the higher
// minimum age is kept, so the age-35 cervical screening band replaces the
// younger one.
func Applicable(age int, gender string) []ScheduleEntry {
	byType := make(map[string]ScheduleEntry)
	var order []string
	for _, entry := range Schedule {
		if !entry.appliesTo(age, gender) {
			continue
		}
		prev, seen := byType[entry.Type]
		if !seen {
			order = append(order, entry.Type)
		}
		if !seen || entry.MinAge > prev.MinAge {
			byType[entry.Type] = entry
		}
	}
	out := make([]ScheduleEntry, 0, len(order))
	for _, typ := range order {
		out = append(out, byType[typ])
	}
	return out
}

// FindEntry returns the schedule entry for a checkup type that applies at
// the given age and gender, or false when none does.
func FindEntry(checkupType string, age int, gender string) (ScheduleEntry, bool) {
	for _, entry := range Applicable(age, gender) {
		if entry.Type == checkupType {
			return entry, true
		}
	}
	return ScheduleEntry{}, false
}

// AddMonths advances t by the given number of months, clamping the day to
// the last day of the target month. January 31 plus one month lands on
// February 29 in a leap year rather than March 2.
func AddMonths(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := time.Date(firstOfTarget.Year(), firstOfTarget.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// NextDueDate computes when the checkup is next due. With no previous
// completion it is due immediately at ref.
func NextDueDate(entry ScheduleEntry, lastDone *time.Time, ref time.Time) time.Time {
	if lastDone == nil {
		return ref
	}
	return AddMonths(*lastDone, entry.IntervalMonths)
}
