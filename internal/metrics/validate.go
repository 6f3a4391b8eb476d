package metrics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// Accepted input ranges.
const (
	MinTemperature   = 0.0
	MaxTemperature   = 50.0
	MinSunlightHours = 0.0
	MaxSunlightHours = 14.0
	MinPopulation    = 100
	MaxPopulation    = 10000
)

// ErrInvalidInput is matched by every *InputError.
var ErrInvalidInput = errors.New("invalid input")

// Violation describes one rejected field.
type Violation struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Allowed string `json:"allowed"`
}

// InputError lists every out-of-range field of a SystemInputs value.
type InputError struct {
	Violations []Violation
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s=%s (allowed %s)", v.Field, v.Value, v.Allowed))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// Validate rejects inputs outside the documented ranges. Values are never clamped.
func Validate(in models.SystemInputs) error {
	var violations []Violation

	checkRange := func(field string, v, lo, hi float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			violations = append(violations, Violation{
				Field:   field,
				Value:   formatValue(v),
				Allowed: fmt.Sprintf("[%g, %g]", lo, hi),
			})
		}
	}

	checkRange("temperature", in.Temperature, MinTemperature, MaxTemperature)
	checkRange("sunlightHours", in.SunlightHours, MinSunlightHours, MaxSunlightHours)

	if in.Population < MinPopulation || in.Population > MaxPopulation {
		violations = append(violations, Violation{
			Field:   "population",
			Value:   fmt.Sprintf("%d", in.Population),
			Allowed: fmt.Sprintf("[%d, %d]", MinPopulation, MaxPopulation),
		})
	}

	if math.IsNaN(in.DieselPrice) || math.IsInf(in.DieselPrice, 0) || in.DieselPrice < 0 {
		violations = append(violations, Violation{
			Field:   "dieselPrice",
			Value:   formatValue(in.DieselPrice),
			Allowed: ">= 0",
		})
	}

	if len(violations) > 0 {
		return &InputError{Violations: violations}
	}
	return nil
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
