package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// Default thresholds and set window.
const (
	DefaultPassReps = 8
	DefaultFullReps = 12
	DefaultSetLo    = 1
	DefaultSetHi    = 4
)

// SetRange is the inclusive window of set indices [Lo, Hi] that participate.
type SetRange struct {
	Lo int
	Hi int
}

// Width returns the number of set indices in the range.
func (r SetRange) Width() int {
	return r.Hi - r.Lo + 1
}

// Indices returns Lo..Hi in ascending order.
func (r SetRange) Indices() []int {
	if r.Hi < r.Lo {
		return nil
	}
	out := make([]int, 0, r.Width())
	for i := r.Lo; i <= r.Hi; i++ {
		out = append(out, i)
	}
	return out
}

func (r SetRange) String() string {
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

// ParseSetRange parses "lo-hi" (e.g. "1-4").
func ParseSetRange(s string) (SetRange, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return SetRange{}, fmt.Errorf("set range %q: want lo-hi", s)
	}
	l, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return SetRange{}, fmt.Errorf("set range %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return SetRange{}, fmt.Errorf("set range %q: %w", s, err)
	}
	return SetRange{Lo: l, Hi: h}, nil
}

// UnmarshalYAML accepts either a two-element sequence or a "lo-hi" string.
func (r *SetRange) UnmarshalYAML(unmarshal func(any) error) error {
	var pair []int
	if err := unmarshal(&pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("set_range: want [lo, hi], got %d values", len(pair))
		}
		*r = SetRange{Lo: pair[0], Hi: pair[1]}
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("set_range: want [lo, hi] or \"lo-hi\"")
	}
	parsed, err := ParseSetRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Config drives the metric engine. It is a plain value: pass it explicitly on
// every call and never mutate a shared instance.
type Config struct {
	// PassReps is the minimum reps for a set to count as a pass set.
	PassReps int `yaml:"pass_reps"`
	// FullReps is the minimum reps for a set to count as a full set.
	FullReps int `yaml:"full_reps"`
	// SetRange bounds which weight_i/reps_i pairs are read.
	SetRange SetRange `yaml:"set_range"`
	// StrictColumns turns a configured set index without backing columns
	// into a MissingColumnError instead of treating it as all-null.
	StrictColumns bool `yaml:"strict_columns"`
}

// DefaultConfig returns pass=8, full=12, sets 1..4.
func DefaultConfig() Config {
	return Config{
		PassReps: DefaultPassReps,
		FullReps: DefaultFullReps,
		SetRange: SetRange{Lo: DefaultSetLo, Hi: DefaultSetHi},
	}
}

// Validate reports the first invalid field as a *ConfigurationError.
func (c Config) Validate() error {
	if c.PassReps < 0 {
		return &ConfigurationError{Field: "pass_reps", Reason: fmt.Sprintf("must be >= 0, got %d", c.PassReps)}
	}
	if c.FullReps < 0 {
		return &ConfigurationError{Field: "full_reps", Reason: fmt.Sprintf("must be >= 0, got %d", c.FullReps)}
	}
	if c.FullReps < c.PassReps {
		return &ConfigurationError{Field: "full_reps", Reason: fmt.Sprintf("must be >= pass_reps (%d), got %d", c.PassReps, c.FullReps)}
	}
	if c.SetRange.Lo < 1 {
		return &ConfigurationError{Field: "set_range", Reason: fmt.Sprintf("lower bound must be >= 1, got %d", c.SetRange.Lo)}
	}
	if c.SetRange.Lo > c.SetRange.Hi {
		return &ConfigurationError{Field: "set_range", Reason: fmt.Sprintf("lower bound %d exceeds upper bound %d", c.SetRange.Lo, c.SetRange.Hi)}
	}
	return nil
}

// Overrides replaces individual Config fields for one request. Nil fields
// keep the base value.
type Overrides struct {
	PassReps *int
	FullReps *int
	SetLo    *int
	SetHi    *int
}

// Apply returns a copy of c with the non-nil overrides applied. The result
// is not validated.
func (c Config) Apply(o Overrides) Config {
	if o.PassReps != nil {
		c.PassReps = *o.PassReps
	}
	if o.FullReps != nil {
		c.FullReps = *o.FullReps
	}
	if o.SetLo != nil {
		c.SetRange.Lo = *o.SetLo
	}
	if o.SetHi != nil {
		c.SetRange.Hi = *o.SetHi
	}
	return c
}
