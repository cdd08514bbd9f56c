package models

import (
	"strings"
	"time"
)

// CourseType categorises curriculum placement.
type CourseType string

const (
	CourseTypeMandatory CourseType = "MANDATORY"
	CourseTypeElective  CourseType = "ELECTIVE"
	CourseTypeOptional  CourseType = "OPTIONAL"
)

// Course represents a teachable course and its scheduling constraints.
type Course struct {
	ID                string     `db:"id" json:"id"`
	Code              string     `db:"code" json:"code"`
	Name              string     `db:"name" json:"name"`
	Credits           int        `db:"credits" json:"credits"`
	Type              CourseType `db:"type" json:"type"`
	SessionsPerWeek   int        `db:"sessions_per_week" json:"sessions_per_week"`
	SessionDuration   int        `db:"session_duration" json:"session_duration"`
	EstimatedCapacity int        `db:"estimated_capacity" json:"estimated_capacity"`
	RequiredEquipment string     `db:"required_equipment" json:"required_equipment"`
	RequiresLab       bool       `db:"requires_lab" json:"requires_lab"`
	Active            bool       `db:"active" json:"active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// labEquipmentHints mark free-text equipment descriptions that imply a lab.
var labEquipmentHints = []string{"laboratory", "lab", "computer", "software", "workstation"}

// Normalize derives the requires-lab flag from the free-text equipment field
// when it was not set explicitly.
func (c *Course) Normalize() {
	if c.RequiresLab || c.RequiredEquipment == "" {
		return
	}
	equipment := strings.ToLower(c.RequiredEquipment)
	for _, hint := range labEquipmentHints {
		if strings.Contains(equipment, hint) {
			c.RequiresLab = true
			return
		}
	}
}

// EquipmentSatisfiedBy reports whether the room meets the course's equipment
// requirements. A lab course currently demands both a LAB room and a
// projector; the two axes are coupled here so callers never re-encode the
// rule.
func (c Course) EquipmentSatisfiedBy(room Room) bool {
	if !c.RequiresLab {
		return true
	}
	if room.Category != RoomCategoryLab {
		return false
	}
	return room.HasProjector
}

// CourseFilter describes query params for listing courses.
type CourseFilter struct {
	Type        CourseType
	RequiresLab *bool
	Active      *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
