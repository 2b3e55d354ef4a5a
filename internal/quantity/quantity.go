// Package quantity converts cart quantities between their numeric form and
// the unit-aware text an operator reads and types ("2.5 kg", "500 gm", "3 Pack").
package quantity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"sheetpos/pos/internal/domain"
)

const (
	DiscreteStep   = 1.0
	ContinuousStep = 0.1
)

var leadingNumber = regexp.MustCompile(`^\d*\.?\d+`)

// Format renders q for display according to the unit label's class.
func Format(q float64, unitLabel string) string {
	if q <= 0 {
		return "0"
	}

	label := strings.TrimSpace(unitLabel)
	if label == "" {
		label = domain.DefaultUnitLabel
	}

	switch domain.ClassifyUnit(label) {
	case domain.UnitWeight:
		if q >= 1 {
			return formatDecimal(q) + " kg"
		}
		return fmt.Sprintf("%d gm", int64(math.Round(q*1000)))
	case domain.UnitVolume:
		if q >= 1 {
			return formatDecimal(q) + " Liter"
		}
		return fmt.Sprintf("%d ml", int64(math.Round(q*1000)))
	case domain.UnitCount:
		return fmt.Sprintf("%d %s", int64(math.Round(q)), label)
	default:
		return formatDecimal(q) + " " + label
	}
}

// Parse reads operator input such as "500 gm" into the base unit of the
// product (kg, liter or whole pieces). Unparsable input yields 0.
func Parse(input string, unitLabel string) float64 {
	trimmed := strings.ToLower(strings.TrimSpace(input))

	token := leadingNumber.FindString(trimmed)
	if token == "" {
		return 0
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(value) {
		return 0
	}

	class := domain.ClassifyUnit(unitLabel)
	discrete := class.IsDiscrete()

	// a free-form label ("Packet", "Bottle") is the unit itself, not a keyword
	if label := strings.ToLower(strings.TrimSpace(unitLabel)); class == domain.UnitOther && label != "" {
		trimmed = strings.Replace(trimmed, label, "", 1)
	}

	switch {
	case strings.Contains(trimmed, "kilogram") || strings.Contains(trimmed, "kg"):
		// "kilogram" contains "gram", so it must be matched first
	case strings.Contains(trimmed, "gm") || strings.Contains(trimmed, "gram"):
		value /= 1000
	case strings.Contains(trimmed, "ml") || strings.Contains(trimmed, "milliliter") || strings.Contains(trimmed, "millilitre"):
		value /= 1000
	case strings.Contains(trimmed, "liter") || strings.Contains(trimmed, "litre") || strings.Contains(trimmed, "l "):
	case strings.Contains(trimmed, "pack") || strings.Contains(trimmed, "pcs") || strings.Contains(trimmed, "piece"):
		discrete = true
	}

	if discrete {
		return math.Round(value)
	}
	return Round(value)
}

// Step is the increment applied by a single +/- press.
func Step(unitLabel string) float64 {
	if domain.ClassifyUnit(unitLabel).IsDiscrete() {
		return DiscreteStep
	}
	return ContinuousStep
}

// Round trims float drift to gram/ml granularity.
func Round(q float64) float64 {
	return math.Round(q*1000) / 1000
}

func formatDecimal(q float64) string {
	if math.Mod(q, 1) == 0 {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	return strconv.FormatFloat(q, 'f', 2, 64)
}
