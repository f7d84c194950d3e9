package flow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/nora/internal/llm"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstream(err error) error {
	return &planner.PlanError{Kind: planner.KindUpstream, Err: err}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		category  Category
		retryable bool
		contains  string
	}{
		{"missing credential", upstream(llm.ErrMissingCredential), CategoryConfiguration, false, "API key not configured"},
		{"http", upstream(&llm.HTTPError{StatusCode: 500, Body: "server error"}), CategoryNetwork, true, "API error (500): server error"},
		{"transport", upstream(&llm.RequestError{Err: errors.New("connection refused")}), CategoryNetwork, true, "Network error: connection refused"},
		{"timeout", upstream(&llm.RequestError{Err: context.DeadlineExceeded}), CategoryNetwork, true, "timed out"},
		{"envelope", upstream(fmt.Errorf("%w: no choices", llm.ErrInvalidResponse)), CategoryContract, true, "Invalid response from AI"},
		{"json", &planner.PlanError{Kind: planner.KindInvalidJSON}, CategoryContract, true, "Failed to parse AI response"},
		{"format", &planner.PlanError{Kind: planner.KindInvalidTimeFormat, Detail: `"25:00"`}, CategoryValidation, true, `Invalid time format in response: "25:00"`},
		{"range", &planner.PlanError{Kind: planner.KindInvalidTimeRange}, CategoryValidation, true, "start must be before end"},
		{"overlap", &planner.PlanError{Kind: planner.KindOverlappingBlocks}, CategoryValidation, true, "Overlapping time blocks detected"},
		{"transcription", fmt.Errorf("%w: %w", ErrTranscription, errors.New("no input")), CategoryTranscription, false, "no input"},
		{"storage", fmt.Errorf("%w: %w", ErrPersist, errors.New("disk full")), CategoryStorage, true, "disk full"},
		{"other", errors.New("boom"), CategoryUnknown, true, "Failed to generate plan: boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Describe(tc.err)
			assert.Equal(t, tc.category, d.Category)
			assert.Equal(t, tc.retryable, d.Retryable)
			assert.Contains(t, d.Message, tc.contains)
		})
	}
}

func TestDescribe_TruncatesHTTPBody(t *testing.T) {
	body := strings.Repeat("x", 1000)
	d := Describe(upstream(&llm.HTTPError{StatusCode: 502, Body: body}))
	assert.Less(t, len([]rune(d.Message)), 260)
	assert.True(t, strings.HasSuffix(d.Message, "…"))
}

func TestDescribe_Nil(t *testing.T) {
	assert.Equal(t, Description{}, Describe(nil))
}

func liveSession(t *testing.T, endpoint, key string) *Session {
	t.Helper()
	cfg := llm.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = key
	gen := planner.NewGenerator(planner.NewLLMGateway(llm.NewChatClient(cfg, llm.NoopObserver{})))
	return NewSession(gen, &recordingPersister{}, ref)
}

func TestSession_ServerErrorOffersRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("server error"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"blocks\":[{\"title\":\"Gym\",\"start_time\":\"07:00\",\"end_time\":\"08:00\"}]}"}}]}`))
	}))
	defer srv.Close()

	s := liveSession(t, srv.URL, "k")
	err := s.Submit(context.Background(), "gym at 7")
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.ErrUpstream)

	var httpErr *llm.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 500, httpErr.StatusCode)
	assert.Equal(t, "server error", httpErr.Body)

	st := s.State()
	assert.Equal(t, StepCapture, st.Step)
	require.NotNil(t, st.Failure())
	assert.True(t, st.Failure().Retryable)
	assert.Equal(t, "API error (500): server error", st.Failure().Message)

	require.NoError(t, s.Retry(context.Background()))
	assert.Equal(t, StepReview, s.State().Step)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSession_MissingCredentialNeverCallsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	s := liveSession(t, srv.URL, "")
	err := s.Submit(context.Background(), "gym at 7")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)

	st := s.State()
	assert.Equal(t, StepCapture, st.Step)
	assert.Equal(t, CategoryConfiguration, st.Failure().Category)
	assert.False(t, st.Failure().Retryable)
	assert.Equal(t, int32(0), hits.Load())
}
