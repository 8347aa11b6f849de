package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Measurement is a (kind, value) pair extracted from a free-text message.
type Measurement struct {
	Kind  string
	Value float64
}

// Pattern pairs a measurement kind with the compiled expression that
// recognizes it in a message.
type Pattern struct {
	Kind string
	re   *regexp.Regexp
}

// NewPattern compiles expr into a Pattern for the given measurement kind.
func NewPattern(kind, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", kind, err)
	}
	return Pattern{Kind: kind, re: re}, nil
}

// MustPattern is NewPattern for patterns known to compile; it panics on error.
func MustPattern(kind, expr string) Pattern {
	p, err := NewPattern(kind, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPatterns are the measurement patterns for the Maji Ndogo weather
// station messages, in precedence order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		MustPattern("Rainfall", `(\d+(\.\d+)?)\s?mm`),
		MustPattern("Temperature", `(\d+(\.\d+)?)\s?C`),
		MustPattern("Pollution_level", `=\s*(-?\d+(\.\d+)?)|Pollution at \s*(-?\d+(\.\d+)?)`),
	}
}

// ExtractMeasurement matches message against the patterns in order and
// returns the first hit. The value comes from the first capture group that
// participated in the match; patterns use alternative groups to tolerate
// different phrasings. The second return is false when no pattern matched.
func ExtractMeasurement(patterns []Pattern, message string) (Measurement, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			v, err := strconv.ParseFloat(group, 64)
			if err != nil {
				continue
			}
			return Measurement{Kind: p.Kind, Value: v}, true
		}
	}
	return Measurement{}, false
}
