// Package normalize maps raw, inconsistent field values onto canonical domain values.
package normalize

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/zed-insights/internal/models"
)

// SetKeyDelimiter joins the sorted slot values of an equipment set key
const SetKeyDelimiter = " | "

// Sentinel returned by StarRatingLabel for non-numeric ratings
const NoRating = "-"

var starLabels = []string{"☆", "★", "★★", "★★★", "★★★★", "★★★★★"}

// EquipmentName trims an augment name, mapping missing or blank values to "N/A"
func EquipmentName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.NoAugment
	}
	return trimmed
}

// EquipmentSetKey returns the order-insensitive identity of a three-slot configuration
func EquipmentSetKey(cpu, hydraulic, ram string) string {
	slots := []string{EquipmentName(cpu), EquipmentName(hydraulic), EquipmentName(ram)}
	sort.Strings(slots)
	return strings.Join(slots, SetKeyDelimiter)
}

// RecordSetKey returns the equipment set key of a record
func RecordSetKey(r *models.RawRecord) string {
	return EquipmentSetKey(r.CPUAugment, r.HydraulicAugment, r.RAMAugment)
}

// StarCount maps a rating to its tier: -1 for non-numeric input, 0 below zero,
// then one star per 200 points up to five.
func StarCount(rating float64) int {
	switch {
	case math.IsNaN(rating) || math.IsInf(rating, 0):
		return -1
	case rating >= 800:
		return 5
	case rating >= 600:
		return 4
	case rating >= 400:
		return 3
	case rating >= 200:
		return 2
	case rating >= 0:
		return 1
	default:
		return 0
	}
}

// StarRatingLabel renders the tier of a rating
func StarRatingLabel(rating float64) string {
	n := StarCount(rating)
	if n < 0 {
		return NoRating
	}
	return starLabels[n]
}

// StandardDeviation returns the population standard deviation, 0 for no values
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := stat.PopVariance(values, nil)
	// rounding can push a zero variance slightly negative
	if variance < 0 || math.IsNaN(variance) {
		variance = 0
	}
	return math.Sqrt(variance)
}
