package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/charmbracelet/huh"
)

// itemFields holds the raw text of an item, from flags or the form.
type itemFields struct {
	title    string
	date     string // YYYY-MM-DD, blank for today
	start    string // HH:mm
	duration string // blank for a reminder
	mode     string // blank, in_person or online
	location string
	notes    string
}

// fromStartFlag splits "YYYY-MM-DD HH:mm" into date and start. A bare
// "HH:mm" leaves the date alone.
func (f *itemFields) fromStartFlag(s string) {
	s = strings.TrimSpace(s)
	if date, clock, ok := strings.Cut(s, " "); ok {
		f.date = strings.TrimSpace(date)
		f.start = strings.TrimSpace(clock)
		return
	}
	if date, clock, ok := strings.Cut(s, "T"); ok && len(date) == len("2006-01-02") {
		f.date = date
		f.start = clock
		return
	}
	f.start = s
}

// fieldsFromItem renders a saved item back into editable text, in loc.
func fieldsFromItem(it *domain.ScheduleItem, loc *time.Location) itemFields {
	start := it.StartAt.In(loc)
	f := itemFields{
		title:    it.Title,
		date:     start.Format("2006-01-02"),
		start:    start.Format("15:04"),
		location: it.LocationOrLink,
		notes:    it.Notes,
	}
	if it.EndAt != nil {
		f.duration = shortDuration(it.EndAt.Sub(it.StartAt))
	}
	if it.Mode != nil {
		f.mode = string(*it.Mode)
	}
	return f
}

// shortDuration renders whole minutes the way parseDuration reads them back:
// 1h30m, 2h, 45m.
func shortDuration(d time.Duration) string {
	s := d.Round(time.Minute).String()
	s = strings.TrimSuffix(s, "0s")
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

// toItem builds an unsaved item. Days are taken in now's location.
func (f *itemFields) toItem(now time.Time) (*domain.ScheduleItem, error) {
	title := strings.TrimSpace(f.title)
	if title == "" {
		return nil, errors.New("title is required")
	}

	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if f.date != "" {
		t, err := time.ParseInLocation("2006-01-02", f.date, now.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", f.date)
		}
		day = t
	}

	if strings.TrimSpace(f.start) == "" {
		return nil, errors.New("start time is required")
	}
	start, err := planner.ParseClock(strings.TrimSpace(f.start), day)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: use HH:mm", f.start)
	}

	item := &domain.ScheduleItem{
		Title:          title,
		StartAt:        start,
		LocationOrLink: strings.TrimSpace(f.location),
		Notes:          strings.TrimSpace(f.notes),
	}

	if f.duration != "" {
		dur, err := parseDuration(f.duration)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", f.duration, err)
		}
		end := start.Add(dur)
		item.EndAt = &end
	}

	if f.mode != "" {
		mode, err := domain.ParseItemMode(f.mode)
		if err != nil {
			return nil, err
		}
		item.Mode = &mode
	}
	return item, nil
}

func validateOptionalClock(s string) error {
	if s == "" {
		return nil
	}
	if _, err := planner.ParseClock(s, time.Now()); err != nil {
		return fmt.Errorf("use HH:mm, e.g. 09:30")
	}
	return nil
}

// newItemForm collects item fields. Values already in f are shown for
// editing.
func newItemForm(f *itemFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&f.title).
				Validate(validateRequired("title")),
			huh.NewInput().
				Title("Date (YYYY-MM-DD, blank for today)").
				Placeholder(time.Now().Format("2006-01-02")).
				Value(&f.date).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Start (HH:mm)").
				Placeholder("09:00").
				Value(&f.start).
				Validate(func(s string) error {
					if err := validateRequired("start")(s); err != nil {
						return err
					}
					return validateOptionalClock(s)
				}),
			huh.NewInput().
				Title("Duration (blank for a reminder)").
				Placeholder("1h").
				Value(&f.duration).
				Validate(validateOptionalDuration),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("Not set", ""),
					huh.NewOption(domain.ModeInPerson.Label(), string(domain.ModeInPerson)),
					huh.NewOption(domain.ModeOnline.Label(), string(domain.ModeOnline)),
				).
				Value(&f.mode),
			huh.NewInput().
				Title("Location or link (optional)").
				Value(&f.location),
			huh.NewText().
				Title("Notes (optional)").
				Value(&f.notes),
		),
	).WithTheme(noraHuhTheme()).WithShowHelp(false)
}
