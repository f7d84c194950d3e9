package flow

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/nora/internal/planner"
)

var ref = time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return ref.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func event(title string, sh, sm, eh, em int) planner.DraftBlock {
	end := at(eh, em)
	return planner.NewDraftBlock(title, at(sh, sm), &end)
}

// planFunc adapts a function to Planner.
type planFunc func(ctx context.Context, text string, ref time.Time) ([]planner.DraftBlock, error)

func (f planFunc) GeneratePlan(ctx context.Context, text string, ref time.Time) ([]planner.DraftBlock, error) {
	return f(ctx, text, ref)
}

// scriptedPlanner returns results in order and records what it was asked.
type scriptedPlanner struct {
	mu      sync.Mutex
	results []result
	calls   []string
}

type result struct {
	blocks []planner.DraftBlock
	err    error
}

func (p *scriptedPlanner) GeneratePlan(_ context.Context, text string, _ time.Time) ([]planner.DraftBlock, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, text)
	r := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	return r.blocks, r.err
}

// gatedPlanner blocks until release is closed or ctx is done.
type gatedPlanner struct {
	started chan struct{}
	release chan struct{}
	blocks  []planner.DraftBlock
}

func newGatedPlanner(blocks ...planner.DraftBlock) *gatedPlanner {
	return &gatedPlanner{started: make(chan struct{}), release: make(chan struct{}), blocks: blocks}
}

func (p *gatedPlanner) GeneratePlan(ctx context.Context, _ string, _ time.Time) ([]planner.DraftBlock, error) {
	close(p.started)
	select {
	case <-p.release:
		return p.blocks, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type recordingPersister struct {
	mu         sync.Mutex
	calls      int
	transcript string
	blocks     []planner.DraftBlock
	err        error
}

func (p *recordingPersister) PersistDraft(_ context.Context, transcript string, blocks []planner.DraftBlock) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.transcript = transcript
	p.blocks = blocks
	return nil
}

type staticTranscriber struct {
	text string
	err  error
}

func (t staticTranscriber) Capture(context.Context) (string, error) {
	return t.text, t.err
}

// gatedPersister blocks inside PersistDraft until release is closed or ctx
// is done, then reports what it saw.
type gatedPersister struct {
	started chan struct{}
	release chan struct{}
	saved   int
}

func newGatedPersister() *gatedPersister {
	return &gatedPersister{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedPersister) PersistDraft(ctx context.Context, _ string, blocks []planner.DraftBlock) error {
	close(p.started)
	select {
	case <-p.release:
		p.saved = len(blocks)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
