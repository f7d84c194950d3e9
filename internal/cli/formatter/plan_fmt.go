package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/nora/internal/flow"
	"github.com/alexanderramin/nora/internal/planner"
)

// PlanTitle is the box title for a plan on ref's day.
func PlanTitle(ref time.Time) string {
	return "Plan for " + ref.Format("Mon, Jan 2")
}

// FormatBlockLine renders one numbered draft block. n is 1-based.
func FormatBlockLine(n int, b planner.DraftBlock) string {
	when := fmt.Sprintf("%-11s", TimeRange(b.StartAt, b.EndAt))
	line := fmt.Sprintf("%s  %s  %s", StyleDim.Render(fmt.Sprintf("%2d", n)), StyleBlue.Render(when), StyleFg.Render(b.Title))
	if b.IsEvent() {
		return line + "  " + Dim(FormatDuration(b.Duration()))
	}
	return line + "  " + StylePurple.Render("reminder")
}

// FormatPlanBody renders the block list without a box, for screens that
// add their own chrome.
func FormatPlanBody(blocks []planner.DraftBlock) string {
	if len(blocks) == 0 {
		return Dim("No blocks. Confirming saves nothing.")
	}
	var b strings.Builder
	var total time.Duration
	for i, blk := range blocks {
		b.WriteString(FormatBlockLine(i+1, blk))
		b.WriteString("\n")
		total += blk.Duration()
	}
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%s, %s scheduled", pluralize(len(blocks), "block"), FormatDuration(total))))
	return b.String()
}

// FormatPlan renders a draft plan for review.
func FormatPlan(blocks []planner.DraftBlock, ref time.Time) string {
	return RenderBox(PlanTitle(ref), FormatPlanBody(blocks))
}

// FormatFailure renders a described failure with what the user can do next.
func FormatFailure(d flow.Description) string {
	var b strings.Builder
	b.WriteString(StyleRed.Render("✖ " + d.Message))
	switch {
	case d.Category == flow.CategoryConfiguration:
		b.WriteString("\n" + Dim("Run `nora config init` to create a config file."))
	case d.Retryable:
		b.WriteString("\n" + Dim("This can be retried."))
	}
	return b.String()
}

// FormatSaved confirms how many items a plan produced.
func FormatSaved(count int) string {
	if count == 0 {
		return StyleYellow.Render("Nothing to save; the plan was empty.")
	}
	return StyleGreen.Render(fmt.Sprintf("✔ Saved %s.", pluralize(count, "item")))
}

// FormatTranscript echoes the captured text before generation.
func FormatTranscript(text string) string {
	return Dim("Heard: ") + StyleFg.Render(strings.TrimSpace(text))
}

// ActivityMessage is the spinner text for a busy session.
func ActivityMessage(a flow.Activity) string {
	switch a {
	case flow.ActivityTranscribing:
		return "Listening..."
	case flow.ActivityGenerating:
		return "Generating plan..."
	case flow.ActivitySaving:
		return "Saving..."
	}
	return ""
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
