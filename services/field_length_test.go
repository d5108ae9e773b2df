package services

import (
	"strings"
	"testing"

	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/stretchr/testify/assert"
)

// Multi-byte runes: limits count characters, not bytes.
func runes(n int) string { return strings.Repeat("é", n) }

func emailOfLength(n int) string {
	const domain = "@example.com"
	return strings.Repeat("a", n-len(domain)) + domain
}

func (s *MatchServiceSuite) TestMatchLocationLength() {
	alice, bob := s.createPlayer("Alice", 0), s.createPlayer("Bob", 0)

	m, err := s.service.CreateMatch(s.ctx, CreateMatchInput{
		ScheduledTime: at(10, 0), Player1ID: alice, Player2ID: bob, Location: utils.Ptr(runes(repositories.MaxLocationLength)),
	})
	s.Require().NoError(err)
	s.Equal(runes(repositories.MaxLocationLength), *m.Location)

	_, err = s.service.CreateMatch(s.ctx, CreateMatchInput{
		ScheduledTime: at(14, 0), Player1ID: alice, Player2ID: bob, Location: utils.Ptr(runes(repositories.MaxLocationLength + 1)),
	})
	s.ErrorIs(err, ErrValidationFailed)
	s.Equal(1, s.matchCount())

	_, found, err := s.service.UpdateMatch(s.ctx, m.ID, UpdateMatchInput{Location: utils.Ptr(runes(repositories.MaxLocationLength + 1))})
	s.True(found)
	s.ErrorIs(err, ErrValidationFailed)

	stored, err := s.service.GetMatch(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(runes(repositories.MaxLocationLength), *stored.Location)
}

func (s *MatchServiceSuite) TestScheduleRoundRobinLocationLength() {
	tournament := s.createTournament(nil)
	ids := []string{"Alice", "Bob"}
	input := ScheduleRoundRobinInput{TournamentID: tournament, StartTime: at(10, 0), Location: utils.Ptr(runes(repositories.MaxLocationLength + 1))}
	for _, name := range ids {
		input.PlayerIDs = append(input.PlayerIDs, s.createPlayer(name, 0))
	}

	_, err := s.service.ScheduleRoundRobin(s.ctx, input)
	s.ErrorIs(err, ErrValidationFailed)
	s.Equal(0, s.matchCount())
}

func (s *PlayerServiceSuite) TestPlayerFieldLengths() {
	cases := []struct {
		name  string
		input CreatePlayerInput
		ok    bool
	}{
		{"name at limit", CreatePlayerInput{Name: runes(repositories.MaxPlayerNameLength)}, true},
		{"name too long", CreatePlayerInput{Name: runes(repositories.MaxPlayerNameLength + 1)}, false},
		{"email at limit", CreatePlayerInput{Name: "Earl", Email: emailOfLength(repositories.MaxEmailLength)}, true},
		{"email too long", CreatePlayerInput{Name: "Earl", Email: emailOfLength(repositories.MaxEmailLength + 1)}, false},
		{"cue at limit", CreatePlayerInput{Name: "Earl", PreferredCue: utils.Ptr(runes(repositories.MaxPreferredCueLength))}, true},
		{"cue too long", CreatePlayerInput{Name: "Earl", PreferredCue: utils.Ptr(runes(repositories.MaxPreferredCueLength + 1))}, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.CreatePlayer(s.ctx, tc.input)
			if tc.ok {
				s.NoError(err)
			} else {
				s.ErrorIs(err, ErrValidationFailed)
			}
		})
	}
}

func (s *PlayerServiceSuite) TestUpdatePlayerFieldLengths() {
	res, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Earl", PreferredCue: utils.Ptr("Mezz")})
	s.Require().NoError(err)
	id := res.Player.ID

	_, err = s.service.UpdatePlayer(s.ctx, id, UpdatePlayerInput{PreferredCue: utils.Ptr(runes(repositories.MaxPreferredCueLength + 1))})
	s.ErrorIs(err, ErrValidationFailed)
	_, err = s.service.UpdatePlayer(s.ctx, id, UpdatePlayerInput{Email: utils.Ptr(emailOfLength(repositories.MaxEmailLength + 1))})
	s.ErrorIs(err, ErrValidationFailed)

	stored, err := s.service.GetPlayer(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Mezz", *stored.PreferredCue)
	s.Empty(stored.Email)

	updated, err := s.service.UpdatePlayer(s.ctx, id, UpdatePlayerInput{PreferredCue: utils.Ptr(runes(repositories.MaxPreferredCueLength))})
	s.Require().NoError(err)
	s.Equal(runes(repositories.MaxPreferredCueLength), *updated.PreferredCue)
}

func (s *TournamentServiceSuite) TestTournamentFieldLengths() {
	cases := []struct {
		name  string
		input CreateTournamentInput
		ok    bool
	}{
		{"name at limit", CreateTournamentInput{Name: runes(repositories.MaxTournamentNameLength), StartDate: at(9, 0)}, true},
		{"name too long", CreateTournamentInput{Name: runes(repositories.MaxTournamentNameLength + 1), StartDate: at(9, 0)}, false},
		{"location at limit", CreateTournamentInput{Name: "Open", StartDate: at(9, 0), Location: utils.Ptr(runes(repositories.MaxLocationLength))}, true},
		{"location too long", CreateTournamentInput{Name: "Open", StartDate: at(9, 0), Location: utils.Ptr(runes(repositories.MaxLocationLength + 1))}, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.CreateTournament(s.ctx, tc.input)
			if tc.ok {
				s.NoError(err)
			} else {
				s.ErrorIs(err, ErrValidationFailed)
			}
		})
	}
}

func (s *TournamentServiceSuite) TestUpdateTournamentFieldLengths() {
	t, err := s.service.CreateTournament(s.ctx, CreateTournamentInput{Name: "Open", StartDate: at(9, 0)})
	s.Require().NoError(err)

	_, err = s.service.UpdateTournament(s.ctx, t.ID, UpdateTournamentInput{Name: utils.Ptr(runes(repositories.MaxTournamentNameLength + 1))})
	s.ErrorIs(err, ErrValidationFailed)
	_, err = s.service.UpdateTournament(s.ctx, t.ID, UpdateTournamentInput{Location: utils.Ptr(runes(repositories.MaxLocationLength + 1))})
	s.ErrorIs(err, ErrValidationFailed)

	stored, err := s.service.GetTournament(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal("Open", stored.Name)
	s.Nil(stored.Location)
}

func TestTranslateRepoErrorValueTooLong(t *testing.T) {
	err := translateRepoError(repositories.ErrValueTooLong)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, repositories.ErrValueTooLong)
}
