package flow

// Step is where a session is in the capture, review, edit cycle.
type Step int

const (
	StepCapture Step = iota
	StepReview
	StepEdit
)

func (s Step) String() string {
	switch s {
	case StepCapture:
		return "capture"
	case StepReview:
		return "review"
	case StepEdit:
		return "edit"
	}
	return "unknown"
}

// Activity names what a busy session is waiting on.
type Activity string

const (
	ActivityIdle         Activity = ""
	ActivityTranscribing Activity = "transcribing"
	ActivityGenerating   Activity = "generating"
	ActivitySaving       Activity = "saving"
)
