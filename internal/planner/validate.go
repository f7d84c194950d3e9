package planner

import "sort"

// ValidateSchedule checks a batch for overlaps. It sorts a copy by start
// time and fails on the first event whose end is strictly after the next
// block's start. Reminders never conflict from their own side, and blocks
// that merely touch (end == next start) are fine.
//
// The per-block start < end invariant is checked before blocks are built,
// not here. The caller's slice is never reordered.
func ValidateSchedule(blocks []DraftBlock) error {
	sorted := make([]DraftBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartAt.Before(sorted[j].StartAt)
	})

	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.EndAt == nil {
			continue
		}
		if cur.EndAt.After(next.StartAt) {
			return planErrorf(KindOverlappingBlocks, nil, "%q (%s-%s) overlaps %q (starts %s)",
				cur.Title, FormatClock(cur.StartAt), FormatClock(*cur.EndAt),
				next.Title, FormatClock(next.StartAt))
		}
	}
	return nil
}
