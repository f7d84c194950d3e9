package flow

import "errors"

var (
	// ErrBusy is returned when an operation starts while a transcription,
	// generation or save is still in flight.
	ErrBusy = errors.New("session is busy")

	// ErrSessionEnded is returned by every operation after Confirm or Cancel.
	ErrSessionEnded = errors.New("session has ended")

	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current step.
	ErrInvalidTransition = errors.New("invalid step transition")

	ErrBlockNotFound   = errors.New("draft block not found")
	ErrEmptyTitle      = errors.New("block title must not be empty")
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrNoTranscriber   = errors.New("no transcriber configured")
	ErrNothingToRetry  = errors.New("no transcript to retry")
	ErrTranscription   = errors.New("transcription failed")
	ErrPersist         = errors.New("saving plan failed")
)
