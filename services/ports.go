package services

import "github.com/Dosada05/pool-tournament-manager/events"

// MatchMetrics records match lifecycle outcomes.
type MatchMetrics interface {
	MatchCreated()
	MatchUpdated()
	MatchDeleted()
	ScheduleConflict(operation string)
	RankingAdjusted()
}

// MatchEventPublisher receives committed match changes.
type MatchEventPublisher interface {
	PublishMatchEvent(evt events.MatchEvent)
}

type nopMetrics struct{}

func (nopMetrics) MatchCreated()           {}
func (nopMetrics) MatchUpdated()           {}
func (nopMetrics) MatchDeleted()           {}
func (nopMetrics) ScheduleConflict(string) {}
func (nopMetrics) RankingAdjusted()        {}

type nopPublisher struct{}

func (nopPublisher) PublishMatchEvent(events.MatchEvent) {}
