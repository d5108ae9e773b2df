package models

import (
	"time"

	"github.com/google/uuid"
)

// Tournament представляет турнир.
type Tournament struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	StartDate   time.Time  `json:"startDate" db:"start_date"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	Location    *string    `json:"location,omitempty" db:"location"`
	Description *string    `json:"description,omitempty" db:"description"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`

	MatchCount int `json:"matchCount" db:"-"`
}
