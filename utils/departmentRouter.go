package utils

import (
	"strings"

	"civicpulse-be/models"
)

// AssignDepartment maps a free-text category to the responsible handling
// unit. Matching is case-insensitive substring, first rule wins: road,
// then garbage, then water, otherwise General.
func AssignDepartment(category string) models.Department {
	normalized := strings.ToLower(category)

	switch {
	case strings.Contains(normalized, "road"):
		return models.PublicWorks
	case strings.Contains(normalized, "garbage"):
		return models.Sanitation
	case strings.Contains(normalized, "water"):
		return models.WaterDepartment
	default:
		return models.General
	}
}
