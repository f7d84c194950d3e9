package domain

import "time"

// Capture is the transcript a plan was generated from.
type Capture struct {
	ID          string
	Text        string
	Source      CaptureSource
	IsProcessed bool
	CreatedAt   time.Time
}

// MarkProcessed flags the capture once its items have been stored.
func (c *Capture) MarkProcessed() {
	c.IsProcessed = true
}
