package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/nora/internal/llm"
)

// rawPlan is the model's reply shape. It never leaves this package.
type rawPlan struct {
	Blocks []rawBlock `json:"blocks"`
}

// Fields are pointers so a missing key is distinguishable from "".
type rawBlock struct {
	Title     *string `json:"title"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// Generator runs the full pipeline: gateway, strict decode, time parsing,
// range checks, overlap validation. A batch is accepted or rejected whole.
type Generator struct {
	gateway Gateway
}

// NewGenerator creates a Generator over the given gateway.
func NewGenerator(gateway Gateway) *Generator {
	return &Generator{gateway: gateway}
}

// GeneratePlan returns validated draft blocks in response order, or a
// *PlanError. No partial results are ever returned.
func (g *Generator) GeneratePlan(ctx context.Context, rawText string, ref time.Time) ([]DraftBlock, error) {
	content, err := g.gateway.GeneratePlan(ctx, rawText, ref)
	if err != nil {
		return nil, &PlanError{Kind: KindUpstream, Err: err}
	}

	plan, err := llm.DecodeStrict[rawPlan](content, validateRawPlan)
	if err != nil {
		return nil, &PlanError{Kind: KindInvalidJSON, Err: err}
	}

	blocks := make([]DraftBlock, 0, len(plan.Blocks))
	for i, rb := range plan.Blocks {
		title := *rb.Title
		start, err := ParseClock(*rb.StartTime, ref)
		if err != nil {
			return nil, blockError(i, title, err)
		}
		end, err := ParseClock(*rb.EndTime, ref)
		if err != nil {
			return nil, blockError(i, title, err)
		}

		b := NewDraftBlock(title, start, &end)
		if err := b.CheckRange(); err != nil {
			return nil, blockError(i, title, err)
		}
		blocks = append(blocks, b)
	}

	if err := ValidateSchedule(blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// blockError prefixes the failing block's position onto a PlanError.
func blockError(i int, title string, err error) error {
	var pe *PlanError
	if errors.As(err, &pe) {
		return &PlanError{
			Kind:   pe.Kind,
			Detail: fmt.Sprintf("block %d %q: %s", i+1, title, pe.Detail),
			Err:    pe.Err,
		}
	}
	return err
}

func validateRawPlan(p rawPlan) error {
	if p.Blocks == nil {
		return fmt.Errorf("blocks field is required")
	}
	for i, b := range p.Blocks {
		if b.Title == nil || b.StartTime == nil || b.EndTime == nil {
			return fmt.Errorf("block %d: title, start_time and end_time are required", i+1)
		}
	}
	return nil
}
