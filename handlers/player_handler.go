package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/pool-tournament-manager/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
	logger        *slog.Logger
}

func NewPlayerHandler(ps services.PlayerService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		playerService: ps,
		logger:        logger,
	}
}

type createPlayerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PreferredCue *string `json:"preferredCue"`
	ContentType  string  `json:"contentType"`
}

type updatePlayerRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	PreferredCue *string `json:"preferredCue"`
}

type profilePictureRequest struct {
	ContentType string `json:"contentType"`
}

// ListHandler обрабатывает GET /api/players
func (h *PlayerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("searchTerm"))

	players, err := h.playerService.ListPlayers(r.Context(), search)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetByIDHandler обрабатывает GET /api/players/{id}
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	player, err := h.playerService.GetPlayer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// CreateHandler обрабатывает POST /api/players. Ответ содержит ссылку для загрузки аватара.
func (h *PlayerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	result, err := h.playerService.CreatePlayer(r.Context(), services.CreatePlayerInput{
		Name:         req.Name,
		Email:        req.Email,
		PreferredCue: req.PreferredCue,
		ContentType:  req.ContentType,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	headers := http.Header{"Location": []string{"/api/players/" + result.Player.ID.String()}}
	env := jsonResponse{"player": result.Player, "upload": result.Upload}
	if err := writeJSON(w, http.StatusCreated, env, headers); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// UpdateHandler обрабатывает PUT /api/players/{id}
func (h *PlayerHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	var req updatePlayerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	player, err := h.playerService.UpdatePlayer(r.Context(), id, services.UpdatePlayerInput{
		Name:         req.Name,
		Email:        req.Email,
		PreferredCue: req.PreferredCue,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/players/{id}
func (h *PlayerHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	deleted, err := h.playerService.DeletePlayer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if !deleted {
		notFoundResponse(w, r, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProfilePictureHandler обрабатывает POST /api/players/{id}/profile-picture
func (h *PlayerHandler) ProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	var req profilePictureRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, h.logger, err)
			return
		}
	}

	result, err := h.playerService.GenerateProfilePictureUpload(r.Context(), id, req.ContentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	env := jsonResponse{"player": result.Player, "upload": result.Upload}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
