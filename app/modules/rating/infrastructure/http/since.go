package ratinghttp

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// SinceParser turns a history filter into an instant. It accepts RFC 3339
// timestamps, plain dates and English phrases such as "3 days ago".
type SinceParser struct {
	w *when.Parser
}

// NewSinceParser creates a SinceParser with English and common rules.
func NewSinceParser() *SinceParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &SinceParser{w: w}
}

// Parse returns the zero time for an empty input.
func (p *SinceParser) Parse(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return t, nil
	}

	r, err := p.w.Parse(strings.ToLower(input), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse since %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized since %q", input)
	}
	return r.Time, nil
}
