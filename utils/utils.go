package utils

import (
	"strings"
	"time"
)

// Clock abstracts the current time so schedule checks can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock that returns a settable instant. Used in tests.
type FixedClock struct {
	Current time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{Current: t}
}

func (c *FixedClock) Now() time.Time {
	return c.Current
}

func (c *FixedClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

func Ptr[T any](v T) *T {
	return &v
}

func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TrimmedOrNil returns nil for nil or blank input, otherwise a pointer to the trimmed value.
func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
