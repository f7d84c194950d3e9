// Package transcribe provides the text sources a plan can be captured from.
package transcribe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
)

// SimulatedTranscript is what the simulated recorder "hears".
const SimulatedTranscript = "Tomorrow: Gym 7-8, Breakfast 8-8:30, CAD 9-11, Lunch 12:30-1, Meeting 5:30-6, Homework 6-8"

// SimulatedDelay is how long the simulated recorder takes.
const SimulatedDelay = 2500 * time.Millisecond

// ErrNoInput is returned when a reader yields only whitespace.
var ErrNoInput = errors.New("no input text")

// Source reports where a transcriber's text comes from.
type Source interface {
	Source() domain.CaptureSource
}

// Text returns fixed text, typically joined command-line arguments.
type Text struct {
	Value string
}

func (t Text) Capture(context.Context) (string, error) {
	if strings.TrimSpace(t.Value) == "" {
		return "", ErrNoInput
	}
	return t.Value, nil
}

func (Text) Source() domain.CaptureSource { return domain.CaptureManual }

// Reader reads all of R, so a plan can be piped in.
type Reader struct {
	R io.Reader
}

func (r Reader) Capture(ctx context.Context) (string, error) {
	type read struct {
		text string
		err  error
	}
	ch := make(chan read, 1)
	go func() {
		var b strings.Builder
		sc := bufio.NewScanner(r.R)
		for sc.Scan() {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(sc.Text())
		}
		ch <- read{text: b.String(), err: sc.Err()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("reading input: %w", res.err)
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", ErrNoInput
		}
		return text, nil
	}
}

func (Reader) Source() domain.CaptureSource { return domain.CaptureStdin }

// Simulated stands in for a voice recorder: it waits Delay, then returns
// SimulatedTranscript. A zero Delay returns immediately.
type Simulated struct {
	Delay time.Duration
}

// NewSimulated returns a Simulated with the standard delay.
func NewSimulated() Simulated {
	return Simulated{Delay: SimulatedDelay}
}

func (s Simulated) Capture(ctx context.Context) (string, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return SimulatedTranscript, nil
}

func (Simulated) Source() domain.CaptureSource { return domain.CaptureSimulated }

// SourceOf returns t's capture source, or manual when it does not say.
func SourceOf(t any) domain.CaptureSource {
	if s, ok := t.(Source); ok {
		return s.Source()
	}
	return domain.CaptureManual
}
