package domain

import "fmt"

type ItemMode string

const (
	ModeInPerson ItemMode = "in_person"
	ModeOnline   ItemMode = "online"
)

// ParseItemMode accepts the stored spelling plus a few common aliases.
func ParseItemMode(s string) (ItemMode, error) {
	switch s {
	case "in_person", "in-person", "inperson", "person":
		return ModeInPerson, nil
	case "online", "remote":
		return ModeOnline, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m ItemMode) Valid() bool {
	return m == ModeInPerson || m == ModeOnline
}

func (m ItemMode) Label() string {
	switch m {
	case ModeInPerson:
		return "In person"
	case ModeOnline:
		return "Online"
	}
	return string(m)
}

type CaptureSource string

const (
	CaptureManual    CaptureSource = "manual"
	CaptureStdin     CaptureSource = "stdin"
	CaptureSimulated CaptureSource = "simulated"
)

func (s CaptureSource) Valid() bool {
	switch s {
	case CaptureManual, CaptureStdin, CaptureSimulated:
		return true
	}
	return false
}
