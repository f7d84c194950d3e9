package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/nora/internal/llm"
	"github.com/alexanderramin/nora/internal/planner"
)

// Category groups failures by what the user can do about them.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryNetwork       Category = "network"
	CategoryContract      Category = "contract"
	CategoryValidation    Category = "validation"
	CategoryTranscription Category = "transcription"
	CategoryStorage       Category = "storage"
	CategoryUnknown       Category = "unknown"
)

// Description is the display form of a failure.
type Description struct {
	Message   string
	Category  Category
	Retryable bool
}

// Describe maps a failure to a message. HTTP bodies are truncated here; the
// full body is only logged.
func Describe(err error) Description {
	var (
		httpErr *llm.HTTPError
		reqErr  *llm.RequestError
	)
	switch {
	case err == nil:
		return Description{}
	case errors.Is(err, llm.ErrMissingCredential):
		return Description{
			Message:  "API key not configured. Set llm.api_key in ~/.nora/config.yaml or NORA_LLM_API_KEY",
			Category: CategoryConfiguration,
		}
	case errors.As(err, &httpErr):
		return Description{
			Message:   fmt.Sprintf("API error (%d): %s", httpErr.StatusCode, llm.TruncateBody(httpErr.Body)),
			Category:  CategoryNetwork,
			Retryable: true,
		}
	case errors.Is(err, context.DeadlineExceeded) && errors.Is(err, llm.ErrRequestFailed):
		return Description{Message: "Network error: request timed out", Category: CategoryNetwork, Retryable: true}
	case errors.As(err, &reqErr):
		return Description{
			Message:   fmt.Sprintf("Network error: %v", reqErr.Err),
			Category:  CategoryNetwork,
			Retryable: true,
		}
	case errors.Is(err, llm.ErrInvalidResponse):
		return Description{Message: "Invalid response from AI", Category: CategoryContract, Retryable: true}
	case errors.Is(err, planner.ErrInvalidJSON):
		return Description{Message: "Failed to parse AI response", Category: CategoryContract, Retryable: true}
	case errors.Is(err, planner.ErrInvalidTimeFormat):
		return validation("Invalid time format in response", err)
	case errors.Is(err, planner.ErrInvalidTimeRange):
		return validation("Invalid time range (start must be before end)", err)
	case errors.Is(err, planner.ErrOverlappingBlocks):
		return validation("Overlapping time blocks detected", err)
	case errors.Is(err, ErrTranscription):
		return Description{Message: err.Error(), Category: CategoryTranscription}
	case errors.Is(err, ErrPersist):
		return Description{Message: err.Error(), Category: CategoryStorage, Retryable: true}
	default:
		return Description{
			Message:   fmt.Sprintf("Failed to generate plan: %v", err),
			Category:  CategoryUnknown,
			Retryable: true,
		}
	}
}

func validation(msg string, err error) Description {
	var pe *planner.PlanError
	if errors.As(err, &pe) && pe.Detail != "" {
		msg += ": " + pe.Detail
	}
	return Description{Message: msg, Category: CategoryValidation, Retryable: true}
}
