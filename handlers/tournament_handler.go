package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/services"
	"github.com/google/uuid"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	matchService      services.MatchService
	logger            *slog.Logger
}

func NewTournamentHandler(ts services.TournamentService, ms services.MatchService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		matchService:      ms,
		logger:            logger,
	}
}

type createTournamentRequest struct {
	Name        string     `json:"name"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"isActive"`
}

type updateTournamentRequest struct {
	Name        *string    `json:"name"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"isActive"`
}

type roundRobinRequest struct {
	PlayerIDs            []uuid.UUID `json:"playerIds"`
	StartTime            time.Time   `json:"startTime"`
	RoundIntervalMinutes int         `json:"roundIntervalMinutes"`
	Legs                 int         `json:"legs"`
	Location             *string     `json:"location"`
}

// ListHandler обрабатывает GET /api/tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var isActive *bool
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, h.logger, errors.New("invalid isActive query parameter"))
			return
		}
		isActive = &v
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), isActive)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetByIDHandler обрабатывает GET /api/tournaments/{id}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// CreateHandler обрабатывает POST /api/tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), services.CreateTournamentInput{
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	headers := http.Header{"Location": []string{"/api/tournaments/" + tournament.ID.String()}}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, headers); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// UpdateHandler обрабатывает PUT /api/tournaments/{id}
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	var req updateTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	tournament, err := h.tournamentService.UpdateTournament(r.Context(), id, services.UpdateTournamentInput{
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/tournaments/{id}
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	deleted, err := h.tournamentService.DeleteTournament(r.Context(), id)
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

// ListMatchesHandler обрабатывает GET /api/tournaments/{id}/matches
func (h *TournamentHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), repositories.MatchFilter{TournamentID: &id})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// RoundRobinHandler обрабатывает POST /api/tournaments/{id}/round-robin
func (h *TournamentHandler) RoundRobinHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	var req roundRobinRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	if req.RoundIntervalMinutes < 0 {
		badRequestResponse(w, r, h.logger, errors.New("roundIntervalMinutes must not be negative"))
		return
	}

	matches, err := h.matchService.ScheduleRoundRobin(r.Context(), services.ScheduleRoundRobinInput{
		TournamentID:  id,
		PlayerIDs:     req.PlayerIDs,
		StartTime:     req.StartTime,
		RoundInterval: time.Duration(req.RoundIntervalMinutes) * time.Minute,
		Legs:          req.Legs,
		Location:      req.Location,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
