package planner

import (
	"context"
	"time"

	"github.com/alexanderramin/nora/internal/llm"
)

// Gateway turns a transcript into the model's raw JSON reply.
type Gateway interface {
	GeneratePlan(ctx context.Context, transcript string, ref time.Time) (string, error)
}

type llmGateway struct {
	client llm.LLMClient
}

// NewLLMGateway creates a Gateway backed by a chat-completion client. The
// client owns the credential check and error classification.
func NewLLMGateway(client llm.LLMClient) Gateway {
	return &llmGateway{client: client}
}

func (g *llmGateway) GeneratePlan(ctx context.Context, transcript string, ref time.Time) (string, error) {
	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSchedulePlan,
		SystemPrompt: buildSystemPrompt(ref),
		UserPrompt:   transcript,
		Format: &llm.ResponseFormat{
			Type: "json_schema",
			JSONSchema: &llm.JSONSchemaFormat{
				Name:   "schedule_plan",
				Strict: true,
				Schema: schedulePlanSchema(),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// StaticGateway replies with a fixed body regardless of input. It stands in
// for the model in demos and tests.
type StaticGateway struct {
	Response string
	Err      error
}

func (g StaticGateway) GeneratePlan(context.Context, string, time.Time) (string, error) {
	return g.Response, g.Err
}

// SampleDayResponse is a canned model reply for a typical day.
const SampleDayResponse = `{"blocks":[
{"title":"Gym","start_time":"07:00","end_time":"08:00"},
{"title":"Breakfast","start_time":"08:00","end_time":"08:30"},
{"title":"CAD Work","start_time":"09:00","end_time":"11:00"},
{"title":"Lunch","start_time":"12:30","end_time":"13:00"},
{"title":"Team Meeting","start_time":"17:30","end_time":"18:00"},
{"title":"Homework","start_time":"18:00","end_time":"20:00"}
]}`
