package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/nora/internal/planner"
)

// State is a snapshot of a session. Blocks is a copy; mutating it does not
// affect the session.
type State struct {
	Step       Step
	Busy       bool
	Activity   Activity
	Transcript string
	Blocks     []planner.DraftBlock
	// Err is the last failure, cleared when the next attempt starts.
	Err       error
	Ended     bool
	Confirmed bool
}

// Failure describes Err for display, or returns nil when there is none.
func (s State) Failure() *Description {
	if s.Err == nil {
		return nil
	}
	d := Describe(s.Err)
	return &d
}

// Session drives one plan from capture to confirm or cancel. It is safe for
// concurrent use; at most one transcription, generation or save runs at a
// time, and the lock is never held while one is in flight.
type Session struct {
	planner     Planner
	persister   Persister
	transcriber Transcriber
	ref         time.Time
	onChange    func(State)

	mu         sync.Mutex
	step       Step
	activity   Activity
	transcript string
	blocks     []planner.DraftBlock
	lastErr    error
	ended      bool
	confirmed  bool
	// epoch changes on Cancel so in-flight work can tell it is stale.
	epoch      uint64
	cancelWork context.CancelFunc
}

// Option customizes a Session.
type Option func(*Session)

// WithTranscriber enables Capture.
func WithTranscriber(t Transcriber) Option {
	return func(s *Session) { s.transcriber = t }
}

// WithOnChange registers fn to receive a snapshot after every transition.
// fn is called without the session lock held.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// NewSession starts a session in the capture step. ref is the day every
// generated block is placed on.
func NewSession(p Planner, persister Persister, ref time.Time, opts ...Option) *Session {
	s := &Session{planner: p, persister: persister, ref: ref, step: StepCapture}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reference returns the day plans are generated for.
func (s *Session) Reference() time.Time { return s.ref }

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Capture runs the transcriber and then generates a plan from its text.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkLocked("capture", StepCapture); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.transcriber == nil {
		s.mu.Unlock()
		return ErrNoTranscriber
	}
	workCtx, epoch := s.beginLocked(ctx, ActivityTranscribing)
	s.unlockAndNotify()

	text, err := s.transcriber.Capture(workCtx)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyTranscript
	}

	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	if err != nil {
		s.finishLocked()
		s.lastErr = fmt.Errorf("%w: %w", ErrTranscription, err)
		err = s.lastErr
		s.unlockAndNotify()
		return err
	}
	s.transcript = text
	s.activity = ActivityGenerating
	s.unlockAndNotify()

	return s.generate(workCtx, epoch, text)
}

// Submit generates a plan from text already in hand.
func (s *Session) Submit(ctx context.Context, text string) error {
	s.mu.Lock()
	if err := s.checkLocked("submit", StepCapture); err != nil {
		s.mu.Unlock()
		return err
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return ErrEmptyTranscript
	}
	s.transcript = text
	workCtx, epoch := s.beginLocked(ctx, ActivityGenerating)
	s.unlockAndNotify()

	return s.generate(workCtx, epoch, text)
}

// Retry re-runs generation with the stored transcript after a failure.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkLocked("retry", StepCapture); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.transcript == "" {
		s.mu.Unlock()
		return ErrNothingToRetry
	}
	text := s.transcript
	workCtx, epoch := s.beginLocked(ctx, ActivityGenerating)
	s.unlockAndNotify()

	return s.generate(workCtx, epoch, text)
}

func (s *Session) generate(ctx context.Context, epoch uint64, text string) error {
	blocks, err := s.planner.GeneratePlan(ctx, text, s.ref)

	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	s.finishLocked()
	if err != nil {
		s.lastErr = err
	} else {
		s.blocks = blocks
		s.step = StepReview
	}
	s.unlockAndNotify()
	return err
}

// Edit moves from review to edit.
func (s *Session) Edit() error {
	return s.transition("edit", StepReview, StepEdit)
}

// Done moves from edit back to review.
func (s *Session) Done() error {
	return s.transition("finish editing", StepEdit, StepReview)
}

func (s *Session) transition(op string, from, to Step) error {
	s.mu.Lock()
	if err := s.checkLocked(op, from); err != nil {
		s.mu.Unlock()
		return err
	}
	s.step = to
	s.lastErr = nil
	s.unlockAndNotify()
	return nil
}

// UpdateBlock replaces the block with the same ID. The batch is not
// re-validated until Confirm.
func (s *Session) UpdateBlock(b planner.DraftBlock) error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	if err := b.CheckRange(); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.checkLocked("update a block", StepEdit); err != nil {
		s.mu.Unlock()
		return err
	}
	i := s.indexLocked(b.ID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, b.ID)
	}
	s.blocks[i] = cloneBlock(b)
	s.unlockAndNotify()
	return nil
}

// DeleteBlock removes the block with the given ID.
func (s *Session) DeleteBlock(id string) error {
	s.mu.Lock()
	if err := s.checkLocked("delete a block", StepEdit); err != nil {
		s.mu.Unlock()
		return err
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	s.blocks = append(s.blocks[:i:i], s.blocks[i+1:]...)
	s.unlockAndNotify()
	return nil
}

// Confirm re-validates the batch, hands it to the persister and ends the
// session. A validation or save failure leaves the session in review.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkLocked("confirm", StepReview); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := planner.ValidateSchedule(s.blocks); err != nil {
		s.lastErr = err
		s.unlockAndNotify()
		return err
	}
	batch := cloneBlocks(s.blocks)
	transcript := s.transcript
	workCtx, _ := s.beginLocked(ctx, ActivitySaving)
	s.unlockAndNotify()

	err := s.persister.PersistDraft(workCtx, transcript, batch)

	// Cancel refuses while saving, so the epoch is still ours.
	s.mu.Lock()
	s.finishLocked()
	if err != nil {
		s.lastErr = fmt.Errorf("%w: %w", ErrPersist, err)
		err = s.lastErr
		s.unlockAndNotify()
		return err
	}
	s.ended = true
	s.confirmed = true
	s.unlockAndNotify()
	return nil
}

// Cancel ends the session from any step. A transcription or generation in
// flight is cancelled and its result discarded; nothing is persisted. A save
// already handed to the persister cannot be taken back, so Cancel returns
// ErrBusy until Confirm finishes.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	if s.activity == ActivitySaving {
		s.mu.Unlock()
		return ErrBusy
	}
	s.ended = true
	s.epoch++
	if s.cancelWork != nil {
		s.cancelWork()
		s.cancelWork = nil
	}
	s.activity = ActivityIdle
	s.blocks = nil
	s.lastErr = nil
	s.unlockAndNotify()
	return nil
}

func (s *Session) checkLocked(op string, allowed Step) error {
	if s.ended {
		return ErrSessionEnded
	}
	if s.activity != ActivityIdle {
		return ErrBusy
	}
	if s.step != allowed {
		return fmt.Errorf("%w: cannot %s during %s", ErrInvalidTransition, op, s.step)
	}
	return nil
}

func (s *Session) beginLocked(ctx context.Context, a Activity) (context.Context, uint64) {
	workCtx, cancel := context.WithCancel(ctx)
	s.activity = a
	s.cancelWork = cancel
	s.lastErr = nil
	return workCtx, s.epoch
}

func (s *Session) finishLocked() {
	s.activity = ActivityIdle
	if s.cancelWork != nil {
		s.cancelWork()
		s.cancelWork = nil
	}
}

func (s *Session) currentLocked(epoch uint64) bool {
	return !s.ended && s.epoch == epoch
}

func (s *Session) indexLocked(id string) int {
	for i, b := range s.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) snapshotLocked() State {
	return State{
		Step:       s.step,
		Busy:       s.activity != ActivityIdle,
		Activity:   s.activity,
		Transcript: s.transcript,
		Blocks:     cloneBlocks(s.blocks),
		Err:        s.lastErr,
		Ended:      s.ended,
		Confirmed:  s.confirmed,
	}
}

// unlockAndNotify releases the lock and then delivers a snapshot.
func (s *Session) unlockAndNotify() {
	st := s.snapshotLocked()
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(st)
	}
}

func cloneBlock(b planner.DraftBlock) planner.DraftBlock {
	if b.EndAt != nil {
		end := *b.EndAt
		b.EndAt = &end
	}
	return b
}

func cloneBlocks(blocks []planner.DraftBlock) []planner.DraftBlock {
	if blocks == nil {
		return nil
	}
	out := make([]planner.DraftBlock, len(blocks))
	for i, b := range blocks {
		out[i] = cloneBlock(b)
	}
	return out
}
