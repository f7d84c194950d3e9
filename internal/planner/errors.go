package planner

import (
	"errors"
	"fmt"
)

// Kind classifies a plan generation failure.
type Kind int

const (
	KindUpstream Kind = iota + 1
	KindInvalidJSON
	KindInvalidTimeFormat
	KindInvalidTimeRange
	KindOverlappingBlocks
)

var (
	// ErrUpstream tags a failure reported by the language-model gateway.
	// The gateway's own error stays reachable through errors.Is/As.
	ErrUpstream = errors.New("language model request failed")

	// ErrInvalidJSON indicates the model content did not decode as a plan.
	ErrInvalidJSON = errors.New("model output is not a valid plan")

	// ErrInvalidTimeFormat indicates a time string that is not HH:mm.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidTimeRange indicates a block whose start is not before its end.
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrOverlappingBlocks indicates two blocks in a batch that conflict.
	ErrOverlappingBlocks = errors.New("overlapping time blocks")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUpstream:
		return ErrUpstream
	case KindInvalidJSON:
		return ErrInvalidJSON
	case KindInvalidTimeFormat:
		return ErrInvalidTimeFormat
	case KindInvalidTimeRange:
		return ErrInvalidTimeRange
	case KindOverlappingBlocks:
		return ErrOverlappingBlocks
	default:
		return nil
	}
}

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindInvalidJSON:
		return "invalid_json"
	case KindInvalidTimeFormat:
		return "invalid_time_format"
	case KindInvalidTimeRange:
		return "invalid_time_range"
	case KindOverlappingBlocks:
		return "overlapping_blocks"
	default:
		return "unknown"
	}
}

// PlanError is the single failure value produced by plan generation.
// errors.Is matches it against the sentinel of its Kind; Unwrap exposes
// the underlying cause.
type PlanError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *PlanError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlanError) Unwrap() error { return e.Err }

func (e *PlanError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func planErrorf(kind Kind, cause error, format string, args ...any) *PlanError {
	return &PlanError{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the Kind of a plan failure, or 0 if err is not one.
func KindOf(err error) Kind {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
