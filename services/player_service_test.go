package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories/memory"
	"github.com/Dosada05/pool-tournament-manager/testutil"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PlayerServiceSuite struct {
	suite.Suite
	db       *memory.DB
	pictures *testutil.FakePictureStore
	service  PlayerService
	ctx      context.Context
}

func TestPlayerServiceSuite(t *testing.T) {
	suite.Run(t, new(PlayerServiceSuite))
}

func (s *PlayerServiceSuite) SetupTest() {
	s.db = memory.New()
	s.pictures = &testutil.FakePictureStore{}
	s.service = NewPlayerService(s.db.Store().Players, s.pictures, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *PlayerServiceSuite) TestCreatePlayerIssuesUpload() {
	res, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{
		Name:         "  Efren Reyes ",
		Email:        "efren@example.com",
		PreferredCue: utils.Ptr("Predator"),
		ContentType:  "image/png",
	})
	s.Require().NoError(err)

	s.Equal("Efren Reyes", res.Player.Name)
	s.Equal(0, res.Player.Ranking)
	s.Equal(res.Upload.ObjectURL, res.Player.ProfilePictureURL)
	s.Contains(res.Upload.Key, res.Player.ID.String())

	stored, err := s.service.GetPlayer(s.ctx, res.Player.ID)
	s.Require().NoError(err)
	s.Equal(res.Upload.ObjectURL, stored.ProfilePictureURL)
	s.Equal("Predator", *stored.PreferredCue)
}

func (s *PlayerServiceSuite) TestCreatePlayerDefaultsToJPEG() {
	res, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Shane"})
	s.Require().NoError(err)
	s.Contains(res.Upload.Key, ".jpg")
}

func (s *PlayerServiceSuite) TestCreatePlayerValidation() {
	_, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "  "})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Jayson", Email: "not-an-email"})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Jayson", ContentType: "image/gif"})
	s.ErrorIs(err, ErrValidationFailed)

	players, err := s.service.ListPlayers(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *PlayerServiceSuite) TestListPlayersSearchesNameAndEmail() {
	for _, in := range []CreatePlayerInput{
		{Name: "Alice Cooper", Email: "alice@club.test"},
		{Name: "Bob", Email: "bob.alison@club.test"},
		{Name: "Carol", Email: "carol@club.test"},
	} {
		_, err := s.service.CreatePlayer(s.ctx, in)
		s.Require().NoError(err)
	}

	found, err := s.service.ListPlayers(s.ctx, "ALI")
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("Alice Cooper", found[0].Name)
	s.Equal("Bob", found[1].Name)

	all, err := s.service.ListPlayers(s.ctx, " ")
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *PlayerServiceSuite) TestUpdatePlayer() {
	res, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Alice", Email: "alice@club.test"})
	s.Require().NoError(err)

	updated, err := s.service.UpdatePlayer(s.ctx, res.Player.ID, UpdatePlayerInput{PreferredCue: utils.Ptr("Mezz")})
	s.Require().NoError(err)
	s.Equal("Alice", updated.Name)
	s.Equal("alice@club.test", updated.Email)
	s.Equal("Mezz", *updated.PreferredCue)

	_, err = s.service.UpdatePlayer(s.ctx, uuid.New(), UpdatePlayerInput{Name: utils.Ptr("Ghost")})
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *PlayerServiceSuite) TestDeletePlayer() {
	deleted, err := s.service.DeletePlayer(s.ctx, uuid.New())
	s.NoError(err)
	s.False(deleted)

	res, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Alice"})
	s.Require().NoError(err)

	deleted, err = s.service.DeletePlayer(s.ctx, res.Player.ID)
	s.NoError(err)
	s.True(deleted)
	s.Equal([]string{res.Upload.Key}, s.pictures.DeletedKeys())
}

func (s *PlayerServiceSuite) TestDeletePlayerWithMatchesRefused() {
	alice, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Alice"})
	s.Require().NoError(err)
	bob, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Bob"})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Store().Matches.Create(s.ctx, &models.Match{
		ID:            uuid.New(),
		ScheduledTime: time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC),
		Player1ID:     alice.Player.ID,
		Player2ID:     bob.Player.ID,
	}))

	deleted, err := s.service.DeletePlayer(s.ctx, alice.Player.ID)
	s.ErrorIs(err, ErrPlayerHasMatches)
	s.False(deleted)
	s.Empty(s.pictures.DeletedKeys())
}

func (s *PlayerServiceSuite) TestGenerateProfilePictureUploadReplacesPicture() {
	res, err := s.service.CreatePlayer(s.ctx, CreatePlayerInput{Name: "Alice"})
	s.Require().NoError(err)

	next, err := s.service.GenerateProfilePictureUpload(s.ctx, res.Player.ID, "image/png")
	s.Require().NoError(err)
	s.NotEqual(res.Upload.Key, next.Upload.Key)
	s.Equal(next.Upload.ObjectURL, next.Player.ProfilePictureURL)
	s.Equal([]string{res.Upload.Key}, s.pictures.DeletedKeys())

	_, err = s.service.GenerateProfilePictureUpload(s.ctx, res.Player.ID, "text/plain")
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.service.GenerateProfilePictureUpload(s.ctx, uuid.New(), "image/png")
	s.ErrorIs(err, ErrPlayerNotFound)
}
