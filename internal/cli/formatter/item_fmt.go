package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
)

// FormatItemList renders stored items as a table. now anchors the DAY column.
func FormatItemList(items []*domain.ScheduleItem, now time.Time) string {
	if len(items) == 0 {
		return Dim("No items.")
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		start := it.StartAt.In(now.Location())
		rows = append(rows, []string{
			TruncID(it.ID),
			DayLabel(start, now),
			StyleBlue.Render(TimeRange(start, it.EndAt)),
			StyleFg.Render(it.Title),
			KindBadge(it.IsEvent()),
			ModeBadge(it.Mode),
		})
	}
	return RenderTable([]string{"ID", "DAY", "TIME", "TITLE", "KIND", "MODE"}, rows)
}

// FormatItemDetail renders every field of one item.
func FormatItemDetail(it *domain.ScheduleItem, loc *time.Location) string {
	start := it.StartAt.In(loc)

	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render(fmt.Sprintf("%-9s", label)), value))
	}

	field("ID", it.ID)
	field("KIND", KindBadge(it.IsEvent()))
	field("DATE", start.Format("Mon, Jan 2 2006"))
	field("TIME", StyleBlue.Render(TimeRange(start, it.EndAt)))
	if it.IsEvent() {
		field("DURATION", FormatDuration(it.Duration()))
	}
	field("MODE", ModeBadge(it.Mode))
	if it.LocationOrLink != "" {
		field("WHERE", it.LocationOrLink)
	}
	if it.Notes != "" {
		field("NOTES", it.Notes)
	}
	if it.CaptureID != "" {
		field("PLANNED", TruncID(it.CaptureID))
	}
	field("CREATED", Dim(it.CreatedAt.In(loc).Format("2006-01-02 15:04")))

	return RenderBox(it.Title, strings.TrimRight(b.String(), "\n"))
}

// FormatDeleted confirms a deletion.
func FormatDeleted(it *domain.ScheduleItem) string {
	return StyleGreen.Render("✔ Deleted ") + Bold(it.Title) + " " + TruncID(it.ID)
}

// FormatCreated confirms a new item.
func FormatCreated(it *domain.ScheduleItem, loc *time.Location) string {
	start := it.StartAt.In(loc)
	return StyleGreen.Render("✔ Added ") + Bold(it.Title) + " " +
		Dim(start.Format("Mon, Jan 2")+" "+TimeRange(start, it.EndAt)) + " " + TruncID(it.ID)
}

// FormatUpdated confirms an edit.
func FormatUpdated(it *domain.ScheduleItem, loc *time.Location) string {
	start := it.StartAt.In(loc)
	return StyleGreen.Render("✔ Updated ") + Bold(it.Title) + " " +
		Dim(start.Format("Mon, Jan 2")+" "+TimeRange(start, it.EndAt)) + " " + TruncID(it.ID)
}
