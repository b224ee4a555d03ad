package errors

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MaxDimensions bounds the number of grid axes accepted from user input.
const MaxDimensions = 8

// ValidateDimensions validates a grid extent vector.
//
// The validation rules are:
//   - At least one axis
//   - At most MaxDimensions axes
//   - Every extent is >= 1
//   - The pixel count does not overflow int
func ValidateDimensions(dims []int) error {
	if len(dims) == 0 {
		return New(ErrCodeInvalidDimensions, "dimensions cannot be empty")
	}
	if len(dims) > MaxDimensions {
		return New(ErrCodeInvalidDimensions, "too many dimensions: %d (max %d)", len(dims), MaxDimensions)
	}

	n := 1
	for i, d := range dims {
		if d < 1 {
			return New(ErrCodeInvalidDimensions, "dimension %d must be positive, got %d", i, d)
		}
		if n > math.MaxInt/d {
			return New(ErrCodeInvalidDimensions, "dimensions %v overflow the pixel count", dims)
		}
		n *= d
	}
	return nil
}

// ParseDimensions parses an extent string such as "64x64" or "16x16x4".
// Both 'x' and ',' are accepted as separators.
func ParseDimensions(s string) ([]int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, New(ErrCodeInvalidDimensions, "dimensions cannot be empty")
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == 'x' || r == ',' })
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, Wrap(ErrCodeInvalidDimensions, err, "invalid extent %q", p)
		}
		dims = append(dims, d)
	}

	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}
	return dims, nil
}

// ValidateLevel validates a threshold level. Levels must lie in [0, 1].
func ValidateLevel(level float64) error {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return New(ErrCodeInvalidLevel, "level must be finite")
	}
	if level < 0 || level > 1 {
		return New(ErrCodeInvalidLevel, "level %g outside [0, 1]", level)
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
