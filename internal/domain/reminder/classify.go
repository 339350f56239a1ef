package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindUExamination Kind = "u_examination"
	KindCheckup      Kind = "checkup"
	KindVaccination  Kind = "vaccination"
)

const (
	UrgencyOverdue  = "overdue"
	UrgencyUrgent   = "urgent"
	UrgencyUpcoming = "upcoming"
)

// Event is one upcoming health record a reminder can be derived from.
// SubjectID references a child; nil means the account holder.
type Event struct {
	Kind      Kind       `json:"kind"`
	ID        uuid.UUID  `json:"id"`
	SubjectID *uuid.UUID `json:"subject_id,omitempty"`
	Title     string     `json:"title"`
	DueDate   time.Time  `json:"due_date"`
	Completed bool       `json:"-"`
}

// Reminder is a classified event. DaysUntilDue is negative once the due
// date has passed.
type Reminder struct {
	Event
	SubjectName  string `json:"subject_name,omitempty"`
	DaysUntilDue int    `json:"days_until_due"`
	Overdue      bool   `json:"overdue"`
	Urgency      string `json:"urgency"`
}

// DanglingPolicy decides what happens to events whose subject no longer
// exists.
type DanglingPolicy int

const (
	DropDangling DanglingPolicy = iota
	FailDangling
)

// daysBetween counts calendar days from ref to due, ignoring the time of
// day. Both dates are truncated to UTC midnight first.
func daysBetween(ref, due time.Time) int {
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(refDay).Hours() / 24)
}

func classifyUrgency(daysUntilDue, urgentWithin int) string {
	switch {
	case daysUntilDue < 0:
		return UrgencyOverdue
	case daysUntilDue <= urgentWithin:
		return UrgencyUrgent
	default:
		return UrgencyUpcoming
	}
}

// Classify turns pending events into sorted reminders. Completed events and
// events due beyond the horizon are skipped; overdue events are always kept.
// subjects maps child ids to display names and decides the fate of events
// whose child was deleted, per the dangling policy.
func Classify(events []Event, subjects map[uuid.UUID]string, ref time.Time, horizonDays, urgentWithin int, policy DanglingPolicy) ([]Reminder, error) {
	var out []Reminder
	for _, ev := range events {
		if ev.Completed {
			continue
		}

		var subjectName string
		if ev.SubjectID != nil {
			name, ok := subjects[*ev.SubjectID]
			if !ok {
				if policy == FailDangling {
					return nil, fmt.Errorf("event %s references unknown subject %s", ev.ID, ev.SubjectID)
				}
				continue
			}
			subjectName = name
		}

		days := daysBetween(ref, ev.DueDate)
		if days > horizonDays {
			continue
		}
		out = append(out, Reminder{
			Event:        ev,
			SubjectName:  subjectName,
			DaysUntilDue: days,
			Overdue:      days < 0,
			Urgency:      classifyUrgency(days, urgentWithin),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysUntilDue != out[j].DaysUntilDue {
			return out[i].DaysUntilDue < out[j].DaysUntilDue
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

// Summary aggregates reminder counts per urgency tier.
type Summary struct {
	Overdue  int `json:"overdue"`
	Urgent   int `json:"urgent"`
	Upcoming int `json:"upcoming"`
	Total    int `json:"total"`
}

func Summarize(reminders []Reminder) Summary {
	var s Summary
	for _, r := range reminders {
		switch r.Urgency {
		case UrgencyOverdue:
			s.Overdue++
		case UrgencyUrgent:
			s.Urgent++
		default:
			s.Upcoming++
		}
	}
	s.Total = len(reminders)
	return s
}

// FormatMessage renders one reminder as a human-readable sentence.
func FormatMessage(r Reminder) string {
	subject := r.Title
	if r.SubjectName != "" {
		subject = fmt.Sprintf("%s - %s", r.SubjectName, r.Title)
	}
	switch {
	case r.DaysUntilDue < -1:
		return fmt.Sprintf("%s is %d days overdue", subject, -r.DaysUntilDue)
	case r.DaysUntilDue == -1:
		return fmt.Sprintf("%s is 1 day overdue", subject)
	case r.DaysUntilDue == 0:
		return fmt.Sprintf("%s is due today", subject)
	case r.DaysUntilDue == 1:
		return fmt.Sprintf("%s is due tomorrow", subject)
	default:
		return fmt.Sprintf("%s is due in %d days", subject, r.DaysUntilDue)
	}
}

// DigestMessage condenses a summary into one sentence for notifications.
// Empty summaries yield an empty string.
func DigestMessage(s Summary) string {
	if s.Total == 0 {
		return ""
	}
	appointments := "appointments"
	if s.Total == 1 {
		appointments = "appointment"
	}
	switch {
	case s.Overdue > 0 && s.Urgent > 0:
		return fmt.Sprintf("You have %d overdue and %d urgent preventive care %s", s.Overdue, s.Urgent, appointments)
	case s.Overdue > 0:
		return fmt.Sprintf("You have %d overdue preventive care %s", s.Overdue, appointments)
	case s.Urgent > 0:
		return fmt.Sprintf("You have %d preventive care %s due soon", s.Urgent, appointments)
	default:
		return fmt.Sprintf("You have %d upcoming preventive care %s", s.Total, appointments)
	}
}
