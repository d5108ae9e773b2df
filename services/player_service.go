package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/storage"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
)

const defaultPictureType = "image/jpeg"

type CreatePlayerInput struct {
	Name         string
	Email        string
	PreferredCue *string
	ContentType  string
}

type UpdatePlayerInput struct {
	Name         *string
	Email        *string
	PreferredCue *string
}

// PlayerWithUpload is a player together with the upload slot for its picture.
type PlayerWithUpload struct {
	Player *models.Player
	Upload *storage.PresignedUpload
}

type PlayerService interface {
	ListPlayers(ctx context.Context, search string) ([]models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*PlayerWithUpload, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, input UpdatePlayerInput) (*models.Player, error)
	// DeletePlayer returns false, with no error, when the player does not exist.
	DeletePlayer(ctx context.Context, id uuid.UUID) (bool, error)
	GenerateProfilePictureUpload(ctx context.Context, id uuid.UUID, contentType string) (*PlayerWithUpload, error)
}

type playerService struct {
	players repositories.PlayerRepository
	storage storage.ProfilePictureStore
	logger  *slog.Logger
}

func NewPlayerService(players repositories.PlayerRepository, pictures storage.ProfilePictureStore, logger *slog.Logger) PlayerService {
	return &playerService{
		players: players,
		storage: pictures,
		logger:  logger,
	}
}

func (s *playerService) ListPlayers(ctx context.Context, search string) ([]models.Player, error) {
	players, err := s.players.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return player, nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*PlayerWithUpload, error) {
	name, err := validatePlayerName(input.Name)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(input.Email)
	if err != nil {
		return nil, err
	}
	cue, err := validatePreferredCue(input.PreferredCue)
	if err != nil {
		return nil, err
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultPictureType
	}

	player := &models.Player{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PreferredCue: cue,
	}

	upload, err := s.presign(ctx, player.ID, contentType)
	if err != nil {
		return nil, err
	}
	player.ProfilePictureURL = upload.ObjectURL

	if err := s.players.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", translateRepoError(err))
	}

	s.logger.InfoContext(ctx, "Player created", slog.String("player_id", player.ID.String()))
	return &PlayerWithUpload{Player: player, Upload: upload}, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id uuid.UUID, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if input.Name != nil {
		if player.Name, err = validatePlayerName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		if player.Email, err = validateEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.PreferredCue != nil {
		if player.PreferredCue, err = validatePreferredCue(input.PreferredCue); err != nil {
			return nil, err
		}
	}

	if err := s.players.Update(ctx, player); err != nil {
		return nil, translateRepoError(err)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id uuid.UUID) (bool, error) {
	player, err := s.players.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if player.MatchCount > 0 {
		return false, fmt.Errorf("%w: %d matches reference player %s", ErrPlayerHasMatches, player.MatchCount, id)
	}

	if err := s.players.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return false, nil
		}
		return false, translateRepoError(err)
	}

	s.removePicture(ctx, player.ProfilePictureURL)
	s.logger.InfoContext(ctx, "Player deleted", slog.String("player_id", id.String()))
	return true, nil
}

func (s *playerService) GenerateProfilePictureUpload(ctx context.Context, id uuid.UUID, contentType string) (*PlayerWithUpload, error) {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if contentType == "" {
		contentType = defaultPictureType
	}

	upload, err := s.presign(ctx, id, contentType)
	if err != nil {
		return nil, err
	}

	previous := player.ProfilePictureURL
	player.ProfilePictureURL = upload.ObjectURL
	if err := s.players.Update(ctx, player); err != nil {
		return nil, translateRepoError(err)
	}
	s.removePicture(ctx, previous)

	return &PlayerWithUpload{Player: player, Upload: upload}, nil
}

func (s *playerService) presign(ctx context.Context, id uuid.UUID, contentType string) (*storage.PresignedUpload, error) {
	upload, err := s.storage.GeneratePresignedUpload(ctx, id, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to generate upload url for player %s: %w", id, err)
	}
	return upload, nil
}

// removePicture deletes an object this store issued. Failures are logged only.
func (s *playerService) removePicture(ctx context.Context, objectURL string) {
	key, ok := s.storage.ObjectKey(objectURL)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Failed to delete profile picture", slog.String("key", key), slog.Any("error", err))
	}
}

func validatePlayerName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrPlayerNameRequired
	}
	if err := checkLength("player name", &name, repositories.MaxPlayerNameLength); err != nil {
		return "", err
	}
	return name, nil
}

func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", nil
	}
	if err := checkLength("email", &email, repositories.MaxEmailLength); err != nil {
		return "", err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address %q", ErrValidationFailed, email)
	}
	return email, nil
}

func validatePreferredCue(raw *string) (*string, error) {
	cue := utils.TrimmedOrNil(raw)
	if err := checkLength("preferred cue", cue, repositories.MaxPreferredCueLength); err != nil {
		return nil, err
	}
	return cue, nil
}
