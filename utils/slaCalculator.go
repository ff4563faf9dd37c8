package utils

import (
	"time"

	"civicpulse-be/models"
)

// CalculateSLA returns the deadline by which an issue of the given
// priority level should be resolved: High 24h, Medium 48h, anything
// else 72h from now.
func CalculateSLA(level models.PriorityLevel, now time.Time) time.Time {
	switch level {
	case models.PriorityHigh:
		return now.Add(24 * time.Hour)
	case models.PriorityMedium:
		return now.Add(48 * time.Hour)
	default:
		return now.Add(72 * time.Hour)
	}
}
