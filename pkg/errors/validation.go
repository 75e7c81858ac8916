package errors

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// MaxIDLength bounds entity identifiers.
const MaxIDLength = 256

// ValidateID checks an entity identifier. Empty ids are allowed here; callers
// generate one before validating.
//
// The rules are conservative:
//   - Maximum length of 256 characters
//   - No control characters or null bytes
func ValidateID(id string) error {
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}
	return nil
}

// ValidateCoordinates rejects NaN and infinite values.
func ValidateCoordinates(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidBounds, "coordinates must be finite, got %v", v)
		}
	}
	return nil
}

// ValidateCorners checks that a rectangle's minimum corner does not exceed
// its maximum corner on either axis.
func ValidateCorners(minX, minY, maxX, maxY float64) error {
	if err := ValidateCoordinates(minX, minY, maxX, maxY); err != nil {
		return err
	}
	if minX > maxX || minY > maxY {
		return New(ErrCodeInvalidBounds, "min (%g,%g) exceeds max (%g,%g)", minX, minY, maxX, maxY)
	}
	return nil
}

// ValidateMaxDistance checks an optional search radius cap.
func ValidateMaxDistance(d *float64) error {
	if d == nil {
		return nil
	}
	if math.IsNaN(*d) || math.IsInf(*d, 0) || *d < 0 {
		return New(ErrCodeInvalidInput, "max_distance must be a finite non-negative number, got %v", *d)
	}
	return nil
}

// ValidatePositive checks a solver tuning value. Zero means "use the
// default" and is accepted.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidOption, "%s must be a finite non-negative number, got %v", name, v)
	}
	return nil
}

// ValidateAngleStep checks the angular increment between search directions.
func ValidateAngleStep(deg float64) error {
	if err := ValidatePositive("angle_step", deg); err != nil {
		return err
	}
	if deg > 360 {
		return New(ErrCodeInvalidOption, "angle_step must not exceed 360, got %v", deg)
	}
	return nil
}

// ValidateBudget checks the solver time budget.
func ValidateBudget(d time.Duration) error {
	if d < 0 {
		return New(ErrCodeInvalidOption, "budget must not be negative, got %s", d)
	}
	return nil
}

// ValidatePath validates an output file path named on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL checks that rawURL uses one of the given schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
