// Package export renders stored schedule items for other calendar tools.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/alexanderramin/nora/internal/domain"
)

const productID = "-//nora//time blocks//EN"

const (
	propKind    = ical.ComponentProperty("X-NORA-KIND")
	propMode    = ical.ComponentProperty("X-NORA-MODE")
	propCapture = ical.ComponentProperty("X-NORA-CAPTURE")
)

// Calendar builds a VCALENDAR with one VEVENT per item. Reminders have no
// DTEND and carry X-NORA-KIND:reminder. stamp is written as DTSTAMP.
func Calendar(items []*domain.ScheduleItem, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetName("nora")

	for _, item := range items {
		ev := cal.AddEvent(item.ID + "@nora")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(item.CreatedAt.UTC())
		if !item.UpdatedAt.IsZero() {
			ev.SetModifiedAt(item.UpdatedAt.UTC())
		}
		ev.SetSummary(item.Title)
		ev.SetStartAt(item.StartAt.UTC())
		if item.EndAt != nil {
			ev.SetEndAt(item.EndAt.UTC())
			ev.SetProperty(propKind, "event")
		} else {
			ev.SetProperty(propKind, "reminder")
		}
		if item.Mode != nil {
			ev.SetProperty(propMode, string(*item.Mode))
		}
		if item.LocationOrLink != "" {
			if isLink(item.LocationOrLink) {
				ev.SetURL(item.LocationOrLink)
			} else {
				ev.SetLocation(item.LocationOrLink)
			}
		}
		if item.Notes != "" {
			ev.SetDescription(item.Notes)
		}
		if item.CaptureID != "" {
			ev.SetProperty(propCapture, item.CaptureID)
		}
	}
	return cal
}

// WriteICS serializes items as an iCalendar document.
func WriteICS(w io.Writer, items []*domain.ScheduleItem, stamp time.Time) error {
	if _, err := io.WriteString(w, Calendar(items, stamp).Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func isLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
