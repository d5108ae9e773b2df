package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/services"
	"github.com/google/uuid"
)

type MatchHandler struct {
	matchService services.MatchService
	logger       *slog.Logger
}

func NewMatchHandler(ms services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
		logger:       logger,
	}
}

type createMatchRequest struct {
	ScheduledTime time.Time  `json:"scheduledTime"`
	Player1ID     uuid.UUID  `json:"player1Id"`
	Player2ID     uuid.UUID  `json:"player2Id"`
	TournamentID  *uuid.UUID `json:"tournamentId"`
	Location      *string    `json:"location"`
	Notes         *string    `json:"notes"`
}

type updateMatchRequest struct {
	ScheduledTime *time.Time `json:"scheduledTime"`
	EndTime       *time.Time `json:"endTime"`
	WinnerID      *uuid.UUID `json:"winnerId"`
	TournamentID  *uuid.UUID `json:"tournamentId"`
	Player1ID     *uuid.UUID `json:"player1Id"`
	Player2ID     *uuid.UUID `json:"player2Id"`
	Location      *string    `json:"location"`
	Notes         *string    `json:"notes"`
	Player1Score  *int       `json:"player1Score"`
	Player2Score  *int       `json:"player2Score"`
}

// ListHandler обрабатывает GET /api/matches
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.MatchFilter
	var err error

	if filter.StartDate, err = parseTimeQuery(r, "startDate"); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	if filter.EndDate, err = parseTimeQuery(r, "endDate"); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	if filter.PlayerID, err = parseUUIDQuery(r, "playerId"); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	if filter.TournamentID, err = parseUUIDQuery(r, "tournamentId"); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetByIDHandler обрабатывает GET /api/matches/{id}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// CreateHandler обрабатывает POST /api/matches
func (h *MatchHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), services.CreateMatchInput{
		ScheduledTime: req.ScheduledTime,
		Player1ID:     req.Player1ID,
		Player2ID:     req.Player2ID,
		TournamentID:  req.TournamentID,
		Location:      req.Location,
		Notes:         req.Notes,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	headers := http.Header{"Location": []string{"/api/matches/" + match.ID.String()}}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, headers); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// UpdateHandler обрабатывает PUT /api/matches/{id}
func (h *MatchHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	var req updateMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	match, found, err := h.matchService.UpdateMatch(r.Context(), id, services.UpdateMatchInput{
		ScheduledTime: req.ScheduledTime,
		EndTime:       req.EndTime,
		WinnerID:      req.WinnerID,
		TournamentID:  req.TournamentID,
		Player1ID:     req.Player1ID,
		Player2ID:     req.Player2ID,
		Location:      req.Location,
		Notes:         req.Notes,
		Player1Score:  req.Player1Score,
		Player2Score:  req.Player2Score,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if !found {
		notFoundResponse(w, r, h.logger)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/matches/{id}
func (h *MatchHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	deleted, err := h.matchService.DeleteMatch(r.Context(), id)
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
