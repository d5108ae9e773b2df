package services

import (
	"log/slog"
	"time"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
)

const (
	// DefaultMatchBuffer is the assumed length of a match and of the slot a new match occupies.
	DefaultMatchBuffer = 30 * time.Minute
	// PastMatchAssumedDuration is the assumed length of a started match that has no end time.
	PastMatchAssumedDuration = 45 * time.Minute
	// UpcomingMatchLeadTime is kept free before an upcoming match.
	UpcomingMatchLeadTime = 15 * time.Minute
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// ConflictDetector decides whether a new slot for two players collides with
// matches already on record.
type ConflictDetector struct {
	clock  utils.Clock
	logger *slog.Logger
}

func NewConflictDetector(clock utils.Clock, logger *slog.Logger) *ConflictDetector {
	return &ConflictDetector{clock: clock, logger: logger}
}

// ExistingWindow is the interval an existing match is assumed to occupy.
func ExistingWindow(m *models.Match, now time.Time) Window {
	w := Window{Start: m.ScheduledTime}
	switch {
	case m.EndTime != nil:
		w.End = *m.EndTime
	case !m.ScheduledTime.After(now):
		w.End = m.ScheduledTime.Add(PastMatchAssumedDuration)
	default:
		w.End = m.ScheduledTime.Add(DefaultMatchBuffer)
	}
	return w
}

// CandidateWindow is the interval a new match at t must keep free, relative to m.
// Upcoming, unfinished matches also reserve a lead time before the new slot.
func CandidateWindow(t time.Time, m *models.Match, now time.Time) Window {
	start := t
	if m.EndTime == nil && m.ScheduledTime.After(now) {
		start = t.Add(-UpcomingMatchLeadTime)
	}
	return Window{Start: start, End: t.Add(DefaultMatchBuffer)}
}

// FindConflict returns the first existing match involving either player whose
// window overlaps a new match at t, or nil. Each match is evaluated once.
func (d *ConflictDetector) FindConflict(p1, p2 uuid.UUID, t time.Time, existing []models.Match) *models.Match {
	now := d.clock.Now()
	for i := range existing {
		m := &existing[i]
		if !m.Involves(p1) && !m.Involves(p2) {
			continue
		}
		if CandidateWindow(t, m, now).Overlaps(ExistingWindow(m, now)) {
			if d.logger != nil {
				d.logger.Debug("Schedule conflict detected",
					slog.String("conflicting_match_id", m.ID.String()),
					slog.Time("existing_start", m.ScheduledTime),
					slog.Time("candidate_time", t),
				)
			}
			return m
		}
	}
	return nil
}

func (d *ConflictDetector) HasConflict(p1, p2 uuid.UUID, t time.Time, existing []models.Match) bool {
	return d.FindConflict(p1, p2, t, existing) != nil
}
