package services

import (
	"errors"
	"time"

	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
)

func (s *MatchServiceSuite) TestScheduleRoundRobinCreatesAllRounds() {
	tournamentID := s.createTournament(utils.Ptr("Club 147"))
	players := []uuid.UUID{
		s.createPlayer("A", 0), s.createPlayer("B", 0),
		s.createPlayer("C", 0), s.createPlayer("D", 0),
	}

	matches, err := s.service.ScheduleRoundRobin(s.ctx, ScheduleRoundRobinInput{
		TournamentID: tournamentID,
		PlayerIDs:    players,
		StartTime:    at(10, 0),
	})
	s.Require().NoError(err)
	s.Require().Len(matches, 6)

	slots := make(map[string]int)
	for _, m := range matches {
		s.Require().NotNil(m.TournamentID)
		s.Equal(tournamentID, *m.TournamentID)
		s.Require().NotNil(m.Location)
		s.Equal("Club 147", *m.Location)
		s.NotNil(m.Player1)
		slots[m.ScheduledTime.Format("15:04")]++
	}
	s.Equal(map[string]int{"10:00": 2, "11:00": 2, "12:00": 2}, slots)

	s.Equal(6, s.matchCount())
	s.Equal(6, s.metrics.created)
	s.Len(s.publisher.events, 6)
}

func (s *MatchServiceSuite) TestScheduleRoundRobinTightestInterval() {
	tournamentID := s.createTournament(nil)
	players := []uuid.UUID{s.createPlayer("A", 0), s.createPlayer("B", 0), s.createPlayer("C", 0)}

	matches, err := s.service.ScheduleRoundRobin(s.ctx, ScheduleRoundRobinInput{
		TournamentID:  tournamentID,
		PlayerIDs:     players,
		StartTime:     at(10, 0),
		RoundInterval: MinRoundInterval,
		Legs:          2,
	})
	s.Require().NoError(err)
	s.Len(matches, 6)
	s.True(at(10, 0).Add(5*MinRoundInterval).Equal(matches[len(matches)-1].ScheduledTime))
}

func (s *MatchServiceSuite) TestScheduleRoundRobinIsAllOrNothing() {
	tournamentID := s.createTournament(nil)
	a, b, c := s.createPlayer("A", 0), s.createPlayer("B", 0), s.createPlayer("C", 0)
	other := s.createPlayer("Other", 0)
	s.mustCreate(c, other, at(11, 10))

	_, err := s.service.ScheduleRoundRobin(s.ctx, ScheduleRoundRobinInput{
		TournamentID: tournamentID,
		PlayerIDs:    []uuid.UUID{a, b, c},
		StartTime:    at(10, 0),
	})
	var conflict *ScheduleConflictError
	s.Require().True(errors.As(err, &conflict))
	s.Equal(1, s.metrics.conflicts["round_robin"])

	byTournament, err := s.service.ListMatches(s.ctx, repositories.MatchFilter{TournamentID: &tournamentID})
	s.Require().NoError(err)
	s.Empty(byTournament)
	s.Equal(1, s.matchCount())
}

func (s *MatchServiceSuite) TestScheduleRoundRobinValidation() {
	tournamentID := s.createTournament(nil)
	a, b := s.createPlayer("A", 0), s.createPlayer("B", 0)

	cases := map[string]ScheduleRoundRobinInput{
		"no tournament":  {PlayerIDs: []uuid.UUID{a, b}, StartTime: at(10, 0)},
		"no start":       {TournamentID: tournamentID, PlayerIDs: []uuid.UUID{a, b}},
		"short interval": {TournamentID: tournamentID, PlayerIDs: []uuid.UUID{a, b}, StartTime: at(10, 0), RoundInterval: 30 * time.Minute},
		"one player":     {TournamentID: tournamentID, PlayerIDs: []uuid.UUID{a}, StartTime: at(10, 0)},
		"duplicate":      {TournamentID: tournamentID, PlayerIDs: []uuid.UUID{a, a}, StartTime: at(10, 0)},
		"three legs":     {TournamentID: tournamentID, PlayerIDs: []uuid.UUID{a, b}, StartTime: at(10, 0), Legs: 3},
	}
	for name, input := range cases {
		_, err := s.service.ScheduleRoundRobin(s.ctx, input)
		s.ErrorIs(err, ErrValidationFailed, name)
	}

	_, err := s.service.ScheduleRoundRobin(s.ctx, ScheduleRoundRobinInput{TournamentID: uuid.New(), PlayerIDs: []uuid.UUID{a, b}, StartTime: at(10, 0)})
	s.ErrorIs(err, ErrTournamentNotFound)

	_, err = s.service.ScheduleRoundRobin(s.ctx, ScheduleRoundRobinInput{TournamentID: tournamentID, PlayerIDs: []uuid.UUID{a, uuid.New()}, StartTime: at(10, 0)})
	s.ErrorIs(err, ErrPlayerNotFound)
	s.Equal(0, s.matchCount())
}
