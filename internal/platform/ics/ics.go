// Package ics renders iCalendar (RFC 5545) files for appointment export.
package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event describes a single calendar entry.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	// ReminderMinutes adds a display alarm this many minutes before the
	// event. Zero means no alarm.
	ReminderMinutes int
}

const prodID = "-//VitaCare//Preventive Care Tracker//EN"

func formatUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// Generate renders the event as an iCalendar document with CRLF line endings.
func Generate(event Event) string {
	now := time.Now()
	start := formatUTC(event.Start)
	end := start
	if !event.End.IsZero() {
		end = formatUTC(event.End)
	}

	uid := fmt.Sprintf("%s-%s@vitacare.app", formatUTC(now), uuid.NewString())

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + formatUTC(now),
		"DTSTART:" + start,
		"DTEND:" + end,
		"SUMMARY:" + escapeText(event.Title),
		"DESCRIPTION:" + escapeText(event.Description),
	}

	if event.Location != "" {
		lines = append(lines, "LOCATION:"+escapeText(event.Location))
	}

	if event.ReminderMinutes > 0 {
		lines = append(lines,
			"BEGIN:VALARM",
			"ACTION:DISPLAY",
			"DESCRIPTION:"+escapeText(event.Title),
			fmt.Sprintf("TRIGGER:-PT%dM", event.ReminderMinutes),
			"END:VALARM",
		)
	}

	lines = append(lines,
		"STATUS:CONFIRMED",
		"SEQUENCE:0",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	return strings.Join(lines, "\r\n")
}

// AppointmentEvent builds a one-hour 09:00 appointment on the given due date
// with a reminder alarm seven days ahead.
func AppointmentEvent(title, description, location string, dueDate time.Time) Event {
	start := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 9, 0, 0, 0, dueDate.Location())
	return Event{
		Title:           title,
		Description:     description,
		Start:           start,
		End:             start.Add(time.Hour),
		Location:        location,
		ReminderMinutes: 7 * 24 * 60,
	}
}
