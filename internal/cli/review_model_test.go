package cli

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/nora/internal/flow"
	"github.com/alexanderramin/nora/internal/llm"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/alexanderramin/nora/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screenRef = time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC)

type savedPlans struct {
	mu      sync.Mutex
	batches [][]planner.DraftBlock
}

func (s *savedPlans) persister() flow.Persister {
	return flow.PersisterFunc(func(_ context.Context, _ string, blocks []planner.DraftBlock) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.batches = append(s.batches, blocks)
		return nil
	})
}

func (s *savedPlans) only(t *testing.T) []planner.DraftBlock {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.batches, 1)
	return s.batches[0]
}

func (s *savedPlans) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

// newScreen submits text to a session over gw and wraps it in a review
// model. submitErr is whatever the first generation returned.
func newScreen(t *testing.T, gw planner.Gateway) (*teatest.Driver, *flow.Session, *savedPlans, error) {
	t.Helper()
	saved := &savedPlans{}
	sess := flow.NewSession(planner.NewGenerator(gw), saved.persister(), screenRef)
	submitErr := sess.Submit(context.Background(), dayText)

	d := teatest.New(t, newReviewModel(context.Background(), sess), teatest.WithSize(100, 40))
	d.DrainInit()
	return d, sess, saved, submitErr
}

func sampleScreen(t *testing.T) (*teatest.Driver, *flow.Session, *savedPlans) {
	t.Helper()
	d, sess, saved, err := newScreen(t, planner.StaticGateway{Response: planner.SampleDayResponse})
	require.NoError(t, err)
	return d, sess, saved
}

func screenModel(t *testing.T, d *teatest.Driver) *reviewModel {
	t.Helper()
	m, ok := d.Model.(*reviewModel)
	require.True(t, ok)
	return m
}

func TestReviewScreen_ShowsPlan(t *testing.T) {
	d, _, _ := sampleScreen(t)

	view := d.View()
	assert.Contains(t, view, "PLAN FOR SAT, DEC 27")
	assert.Contains(t, view, "Team Meeting")
	assert.Contains(t, view, "6 blocks")
	assert.Contains(t, view, "a: accept")
}

func TestReviewScreen_Accept(t *testing.T) {
	d, sess, saved := sampleScreen(t)

	d.PressKey('a')

	assert.True(t, d.Quitting)
	assert.True(t, sess.State().Confirmed)
	assert.Len(t, saved.only(t), 6)
	assert.Nil(t, screenModel(t, d).fatal)
}

func TestReviewScreen_Cancel(t *testing.T) {
	for name, press := range map[string]func(*teatest.Driver){
		"c":      func(d *teatest.Driver) { d.PressKey('c') },
		"q":      func(d *teatest.Driver) { d.PressKey('q') },
		"ctrl+c": func(d *teatest.Driver) { d.PressCtrlC() },
	} {
		t.Run(name, func(t *testing.T) {
			d, sess, saved := sampleScreen(t)

			press(d)

			assert.True(t, d.Quitting)
			assert.True(t, sess.State().Ended)
			assert.False(t, sess.State().Confirmed)
			assert.Zero(t, saved.count())
		})
	}
}

func TestReviewScreen_DeleteInEditMode(t *testing.T) {
	d, sess, saved := sampleScreen(t)

	d.PressKey('e')
	assert.Equal(t, flow.StepEdit, sess.State().Step)
	assert.Contains(t, d.View(), "· EDITING")

	d.PressDown()
	d.PressKey('d')
	assert.Contains(t, d.View(), "Deleted Breakfast")

	d.PressEsc()
	assert.Equal(t, flow.StepReview, sess.State().Step)
	d.PressKey('a')

	blocks := saved.only(t)
	require.Len(t, blocks, 5)
	assert.Equal(t, "CAD Work", blocks[1].Title)
}

func TestReviewScreen_EditTitleInForm(t *testing.T) {
	d, _, saved := sampleScreen(t)

	d.PressKey('e')
	d.PressEnter()
	m := screenModel(t, d)
	require.Equal(t, screenForm, m.mode)
	assert.Equal(t, "Gym", m.inputs[fieldTitle].Value())
	assert.Equal(t, "07:00", m.inputs[fieldStart].Value())
	assert.Equal(t, "08:00", m.inputs[fieldEnd].Value())

	d.ClearInput(len("Gym"))
	d.Type("Run")
	d.PressEnter()
	assert.Contains(t, d.View(), "Updated Run")
	assert.Equal(t, screenEdit, screenModel(t, d).mode)

	d.PressEsc()
	d.PressKey('a')

	blocks := saved.only(t)
	assert.Equal(t, "Run", blocks[0].Title)
	assert.Equal(t, "Breakfast", blocks[1].Title)
}

func TestReviewScreen_FormClearsEndForReminder(t *testing.T) {
	d, _, saved := sampleScreen(t)

	d.PressKey('e')
	d.PressEnter()
	d.PressTab()
	d.PressTab()
	d.ClearInput(len("08:00"))
	d.PressEnter()
	d.PressEsc()
	d.PressKey('a')

	assert.Nil(t, saved.only(t)[0].EndAt)
}

func TestReviewScreen_FormRejectsBadTime(t *testing.T) {
	d, sess, _ := sampleScreen(t)

	d.PressKey('e')
	d.PressEnter()
	d.PressTab()
	d.ClearInput(len("07:00"))
	d.Type("25:00")
	d.PressEnter()

	assert.Contains(t, d.View(), "Use HH:mm")
	assert.Equal(t, screenForm, screenModel(t, d).mode)
	assert.True(t, sess.State().Blocks[0].StartAt.Equal(screenRef.Add(7*time.Hour)))

	d.PressEsc()
	assert.Equal(t, screenEdit, screenModel(t, d).mode)
}

func TestReviewScreen_OverlapKeepsReviewOpen(t *testing.T) {
	d, sess, saved := sampleScreen(t)

	d.PressKey('e')
	d.PressDown()
	d.PressEnter()
	d.PressTab()
	d.ClearInput(len("08:00"))
	d.Type("07:30")
	d.PressEnter()
	d.PressEsc()
	d.PressKey('a')

	assert.False(t, d.Quitting)
	assert.Contains(t, d.View(), "Overlapping time blocks detected")
	assert.Equal(t, flow.StepReview, sess.State().Step)
	assert.Zero(t, saved.count())
}

func TestReviewScreen_RetryAfterFailure(t *testing.T) {
	gw := &sequenceGateway{replies: []gatewayReply{
		{err: errors.New("connection reset")},
		{body: planner.SampleDayResponse},
	}}
	d, sess, _, err := newScreen(t, gw)
	require.Error(t, err)

	view := d.View()
	assert.Contains(t, view, "No plan yet.")
	assert.Contains(t, view, "connection reset")
	assert.Contains(t, view, "r: retry")

	d.PressKey('a') // nothing to accept yet
	assert.False(t, d.Quitting)

	d.PressKey('r')
	assert.Equal(t, flow.StepReview, sess.State().Step)
	assert.Contains(t, d.View(), "Homework")
	assert.Equal(t, 2, gw.calls)
}

func TestReviewScreen_FatalRetryQuits(t *testing.T) {
	gw := &sequenceGateway{replies: []gatewayReply{
		{body: "not json"},
		{err: llm.ErrMissingCredential},
	}}
	d, sess, saved, err := newScreen(t, gw)
	require.ErrorIs(t, err, planner.ErrInvalidJSON)

	d.PressKey('r')

	assert.True(t, d.Quitting)
	assert.ErrorIs(t, screenModel(t, d).fatal, llm.ErrMissingCredential)
	assert.True(t, sess.State().Ended)
	assert.Zero(t, saved.count())
}

func TestReviewScreen_CtrlCWhileSavingKeepsSave(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	persister := flow.PersisterFunc(func(context.Context, string, []planner.DraftBlock) error {
		close(started)
		<-release
		return nil
	})
	sess := flow.NewSession(planner.NewGenerator(planner.StaticGateway{Response: planner.SampleDayResponse}), persister, screenRef)
	require.NoError(t, sess.Submit(context.Background(), dayText))
	d := teatest.New(t, newReviewModel(context.Background(), sess), teatest.WithSize(100, 40))

	d.PressKey('a') // the save outlives the driver's command timeout
	<-started
	d.PressCtrlC()

	assert.False(t, d.Quitting)
	assert.False(t, sess.State().Ended)
	assert.Contains(t, screenModel(t, d).status, "Already saving")

	close(release)
	require.Eventually(t, func() bool { return sess.State().Confirmed }, 2*time.Second, 10*time.Millisecond)
}
