package domain

import (
	"math"
	"strings"
)

// NormalizeCropType corrects a crop label against the typo-rename mapping
// and strips surrounding whitespace. The label is trimmed before lookup so
// padded variants of a known typo still correct (" cassaval " -> "cassava").
// Labels absent from the mapping pass through unchanged. Idempotent: a
// corrected label corrects to itself.
func NormalizeCropType(renames map[string]string, crop string) string {
	crop = strings.TrimSpace(crop)
	if fixed, ok := renames[crop]; ok {
		crop = strings.TrimSpace(fixed)
	}
	return crop
}

// CorrectElevation repairs the sign of an elevation value. The sign in the
// source data is a data-entry artifact with no meaning.
func CorrectElevation(v float64) float64 {
	return math.Abs(v)
}
