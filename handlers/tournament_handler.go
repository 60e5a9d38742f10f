package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sparkychildcharlie/tournament-engine/middleware"
	"github.com/sparkychildcharlie/tournament-engine/models"
	"github.com/sparkychildcharlie/tournament-engine/repositories"
	"github.com/sparkychildcharlie/tournament-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// organizerOnly guards the mutating tournament operations: any
// authenticated user may read, only organizers may change state.
func organizerOnly(r *http.Request) error {
	if middleware.RoleFromContext(r.Context()) != models.RoleOrganizer {
		return services.ErrForbiddenOperation
	}
	return nil
}

// Create godoc
// @Summary Create a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Success 201 {object} models.Tournament
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	organizerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.OrganizerID = organizerID

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Success 200 {array} models.Tournament
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{}

	if v := r.URL.Query().Get("organizer_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid organizer_id filter"))
			return
		}
		filter.OrganizerID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.TournamentStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Tournament details with participants and result log
// @Tags tournaments
// @Produce json
// @Success 200 {object} models.Tournament
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetWithDetails(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Handle string `json:"handle"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.tournamentService.AddParticipant(r.Context(), id, input.Handle)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	handle := chi.URLParam(r, "handle")

	if err := h.tournamentService.RemoveParticipant(r.Context(), id, handle); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) SubstituteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	oldHandle := chi.URLParam(r, "handle")

	var input struct {
		NewHandle string `json:"new_handle"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.SubstituteParticipant(r.Context(), id, oldHandle, input.NewHandle); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Freeze(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bracket, err := h.tournamentService.BracketData(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) AvailableMatches(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.AvailableMatches(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) SetParticipantBusy(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	handle := chi.URLParam(r, "handle")

	var input struct {
		Busy bool `json:"busy"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.SetParticipantBusy(r.Context(), id, handle, input.Busy); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.SubmitResult(r.Context(), id, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) Disqualify(w http.ResponseWriter, r *http.Request) {
	if err := organizerOnly(r); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	handle := chi.URLParam(r, "handle")

	if err := h.tournamentService.Disqualify(r.Context(), id, handle); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bracket godoc
// @Summary Bracket table snapshot
// @Tags tournaments
// @Produce json
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *TournamentHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.tournamentService.BracketData(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tiers, err := h.tournamentService.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": tiers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
