package uexam

import (
	"fmt"
	"time"
)

// ScheduleEntry defines one early-detection examination of the German
// pediatric U-series and its offset from birth.
type ScheduleEntry struct {
	Type          string `json:"type"`
	DaysFromBirth int    `json:"days_from_birth"`
	Description   string `json:"description"`
}

// Schedule lists the U1 through U9 examinations in chronological order.
var Schedule = []ScheduleEntry{
	{Type: "U1", DaysFromBirth: 0, Description: "Directly after birth"},
	{Type: "U2", DaysFromBirth: 7, Description: "3rd to 10th day of life"},
	{Type: "U3", DaysFromBirth: 31, Description: "4th to 5th week of life"},
	{Type: "U4", DaysFromBirth: 105, Description: "3rd to 4th month of life"},
	{Type: "U5", DaysFromBirth: 195, Description: "6th to 7th month of life"},
	{Type: "U6", DaysFromBirth: 330, Description: "10th to 12th month of life"},
	{Type: "U7", DaysFromBirth: 675, Description: "21st to 24th month of life (about 2 years)"},
	{Type: "U7a", DaysFromBirth: 1050, Description: "34th to 36th month of life (about 3 years)"},
	{Type: "U8", DaysFromBirth: 1410, Description: "46th to 48th month of life (about 4 years)"},
	{Type: "U9", DaysFromBirth: 1860, Description: "60th to 64th month of life (about 5 years)"},
}

// DueDate returns the due date of the given examination type for a child
// born on dateOfBirth. Unknown types are an error.
func DueDate(dateOfBirth time.Time, examinationType string) (time.Time, error) {
	for _, entry := range Schedule {
		if entry.Type == examinationType {
			return dateOfBirth.AddDate(0, 0, entry.DaysFromBirth), nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown examination type: %s", examinationType)
}

// ScheduledExamination pairs an examination type with its computed due date.
type ScheduledExamination struct {
	Type        string    `json:"type"`
	DueDate     time.Time `json:"due_date"`
	Description string    `json:"description"`
}

// GenerateSchedule computes due dates for the full U-series from a birth
// date, in schedule order.
func GenerateSchedule(dateOfBirth time.Time) []ScheduledExamination {
	out := make([]ScheduledExamination, len(Schedule))
	for i, entry := range Schedule {
		out[i] = ScheduledExamination{
			Type:        entry.Type,
			DueDate:     dateOfBirth.AddDate(0, 0, entry.DaysFromBirth),
			Description: entry.Description,
		}
	}
	return out
}
