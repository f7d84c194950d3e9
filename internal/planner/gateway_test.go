package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/nora/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func clientFor(endpoint, key string) llm.LLMClient {
	cfg := llm.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = key
	return llm.NewChatClient(cfg, llm.NoopObserver{})
}

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	}
}

func TestLLMGateway_RequestShape(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, func(w http.ResponseWriter, body map[string]any) {
		captured = body
		json.NewEncoder(w).Encode(completion(`{"blocks":[]}`))
	})

	out, err := NewLLMGateway(clientFor(srv.URL, "k")).GeneratePlan(context.Background(), "Gym 7-8", refDate)
	require.NoError(t, err)
	assert.Equal(t, `{"blocks":[]}`, out)

	assert.Equal(t, "anthropic/claude-opus-4-5", captured["model"])
	assert.EqualValues(t, 2048, captured["max_tokens"])

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 2)
	system := msgs[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "Reference date: 2025-12-27 (Saturday)")
	assert.Contains(t, system["content"], "Default duration: 60 minutes")
	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "Gym 7-8", user["content"])

	rf := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", rf["type"])
	js := rf["json_schema"].(map[string]any)
	assert.Equal(t, "schedule_plan", js["name"])
	assert.Equal(t, true, js["strict"])

	schema := js["schema"].(map[string]any)
	assert.Equal(t, false, schema["additionalProperties"])
	assert.Equal(t, []any{"blocks"}, schema["required"])
	items := schema["properties"].(map[string]any)["blocks"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, false, items["additionalProperties"])
	assert.ElementsMatch(t, []any{"title", "start_time", "end_time"}, items["required"])
}

func TestLLMGateway_EndToEndPlan(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		json.NewEncoder(w).Encode(completion(SampleDayResponse))
	})

	g := NewGenerator(NewLLMGateway(clientFor(srv.URL, "k")))
	blocks, err := g.GeneratePlan(context.Background(), "my day", refDate)
	require.NoError(t, err)
	require.Len(t, blocks, 6)
	assert.Equal(t, "Homework", blocks[5].Title)
}

func TestLLMGateway_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server error"))
	}))
	defer srv.Close()

	g := NewGenerator(NewLLMGateway(clientFor(srv.URL, "k")))
	blocks, err := g.GeneratePlan(context.Background(), "my day", refDate)

	assert.Nil(t, blocks)
	assert.ErrorIs(t, err, ErrUpstream)
	var httpErr *llm.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 500, httpErr.StatusCode)
	assert.Equal(t, "server error", httpErr.Body)
}

func TestLLMGateway_MissingCredentialNeverCallsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	for _, key := range []string{"", llm.PlaceholderAPIKey, "$(AIML_API_KEY)"} {
		g := NewGenerator(NewLLMGateway(clientFor(srv.URL, key)))
		_, err := g.GeneratePlan(context.Background(), "my day", refDate)
		assert.ErrorIs(t, err, llm.ErrMissingCredential, "key %q", key)
		assert.ErrorIs(t, err, ErrUpstream)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestLLMGateway_ModelContentIsValidatedNotTrusted(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		json.NewEncoder(w).Encode(completion(`{"blocks":[{"title":"A","start_time":"10:00","end_time":"09:00"}]}`))
	})

	g := NewGenerator(NewLLMGateway(clientFor(srv.URL, "k")))
	_, err := g.GeneratePlan(context.Background(), "my day", refDate)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
	assert.NotErrorIs(t, err, ErrUpstream)
}
