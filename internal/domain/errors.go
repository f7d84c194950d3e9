package domain

import "errors"

var (
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrInvalidMode      = errors.New("mode must be in_person or online")
	ErrInvalidSource    = errors.New("unknown capture source")
)
