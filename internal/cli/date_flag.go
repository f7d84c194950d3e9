package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// dayValue is a pflag.Value for "today", "tomorrow" or YYYY-MM-DD. It is
// resolved against the clock only when the command runs.
type dayValue struct {
	raw string
}

var _ pflag.Value = (*dayValue)(nil)

func newDayValue(def string) *dayValue { return &dayValue{raw: def} }

func (d *dayValue) String() string { return d.raw }

func (d *dayValue) Type() string { return "date" }

func (d *dayValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "today", "tomorrow", "":
	default:
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Errorf("use today, tomorrow or YYYY-MM-DD")
		}
	}
	d.raw = s
	return nil
}

func (d *dayValue) IsSet() bool { return d.raw != "" }

// Resolve returns midnight of the chosen day in now's location.
func (d *dayValue) Resolve(now time.Time) time.Time {
	y, m, day := now.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	switch d.raw {
	case "today", "":
		return midnight
	case "tomorrow":
		return midnight.AddDate(0, 0, 1)
	}
	t, err := time.ParseInLocation("2006-01-02", d.raw, now.Location())
	if err != nil {
		return midnight
	}
	return t
}
