package models

import "time"

// RoomCategory distinguishes ordinary rooms from laboratories.
type RoomCategory string

const (
	RoomCategoryNormal RoomCategory = "NORMAL"
	RoomCategoryLab    RoomCategory = "LAB"
)

// Room represents a physical teaching space.
type Room struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Capacity     int          `db:"capacity" json:"capacity"`
	Category     RoomCategory `db:"category" json:"category"`
	Building     string       `db:"building" json:"building"`
	Floor        string       `db:"floor" json:"floor"`
	HasProjector bool         `db:"has_projector" json:"has_projector"`
	HasComputers bool         `db:"has_computers" json:"has_computers"`
	Active       bool         `db:"active" json:"active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// RoomFilter describes query params for listing rooms.
type RoomFilter struct {
	Category    RoomCategory
	MinCapacity int
	Active      *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
