package models

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	ProfilePictureURL string    `json:"profilePictureUrl" db:"profile_picture_url"`
	PreferredCue      *string   `json:"preferredCue,omitempty" db:"preferred_cue"`
	Ranking           int       `json:"ranking" db:"ranking"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`

	MatchCount int `json:"matchCount" db:"-"`
}

// PlayerSummary is the compact player view embedded in matches.
type PlayerSummary struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
}

func (p *Player) Summary() *PlayerSummary {
	if p == nil {
		return nil
	}
	return &PlayerSummary{
		ID:                p.ID,
		Name:              p.Name,
		ProfilePictureURL: p.ProfilePictureURL,
	}
}
