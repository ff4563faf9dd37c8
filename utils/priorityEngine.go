package utils

import (
	"math"
	"time"

	"civicpulse-be/models"
)

// PriorityResult holds the derived priority fields for an issue.
type PriorityResult struct {
	Score float64
	Level models.PriorityLevel
}

// CalculateTimeWeight buckets issue age into a staleness weight. Older
// issues weigh more so that priority rises the longer an issue sits open.
func CalculateTimeWeight(createdAt, now time.Time) float64 {
	hoursPassed := now.Sub(createdAt).Hours()

	switch {
	case hoursPassed < 12:
		return 1
	case hoursPassed < 24:
		return 2
	case hoursPassed < 48:
		return 3
	default:
		return 4
	}
}

// CalculatePriority combines the citizen-submitted urgency, severity and
// public impact (each 1-10) with the age weight. Inputs are assumed
// validated at the HTTP boundary; out-of-range values are not rejected
// here. The score depends on now, so recomputing the same issue later can
// yield a higher score.
func CalculatePriority(urgency, severity, publicImpact int, createdAt, now time.Time) PriorityResult {
	timeWeight := CalculateTimeWeight(createdAt, now)

	score := float64(urgency)*0.3 + float64(severity)*0.3 +
		float64(publicImpact)*0.2 + timeWeight*0.2
	score = math.Round(score*100) / 100

	var level models.PriorityLevel
	switch {
	case score >= 8:
		level = models.PriorityHigh
	case score >= 5:
		level = models.PriorityMedium
	default:
		level = models.PriorityLow
	}

	return PriorityResult{Score: score, Level: level}
}
