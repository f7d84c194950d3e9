package flow

import (
	"context"
	"time"

	"github.com/alexanderramin/nora/internal/planner"
)

// Transcriber produces the text a plan is generated from.
type Transcriber interface {
	Capture(ctx context.Context) (string, error)
}

// Planner turns a transcript into a validated batch of draft blocks.
type Planner interface {
	GeneratePlan(ctx context.Context, rawText string, ref time.Time) ([]planner.DraftBlock, error)
}

// Persister stores a confirmed batch.
type Persister interface {
	PersistDraft(ctx context.Context, transcript string, blocks []planner.DraftBlock) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, transcript string, blocks []planner.DraftBlock) error

func (f PersisterFunc) PersistDraft(ctx context.Context, transcript string, blocks []planner.DraftBlock) error {
	return f(ctx, transcript, blocks)
}
