package planner

import (
	"fmt"
	"time"
)

const schedulePlanSystemPrompt = `You are Nora, a scheduling assistant. Parse the user's natural language input into a structured daily schedule.

Rules:
- Single-day plan only
- Default start time: 9:00 AM if missing
- Default duration: 60 minutes if not specified
- Sequential blocks (no overlaps)
- Times must be realistic (start < end)
- Output ONLY valid JSON matching the schema
- No prose, no explanations

Reference date: %s`

// buildSystemPrompt renders the instruction for one reference date.
func buildSystemPrompt(ref time.Time) string {
	return fmt.Sprintf(schedulePlanSystemPrompt, FormatReferenceDate(ref))
}

// FormatReferenceDate renders a date as "2006-01-02 (Monday)".
func FormatReferenceDate(ref time.Time) string {
	return ref.Format("2006-01-02 (Monday)")
}

// schedulePlanSchema is the strict output contract sent with every request.
func schedulePlanSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"blocks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":      map[string]any{"type": "string"},
						"start_time": map[string]any{"type": "string", "description": "HH:mm format"},
						"end_time":   map[string]any{"type": "string", "description": "HH:mm format"},
					},
					"required":             []string{"title", "start_time", "end_time"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"blocks"},
		"additionalProperties": false,
	}
}
