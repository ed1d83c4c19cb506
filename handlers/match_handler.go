package handlers

import (
	"net/http"

	"github.com/aidosbek/tournament-hub/services"
)

type MatchHandler struct {
	resultService services.ResultService
}

func NewMatchHandler(rs services.ResultService) *MatchHandler {
	return &MatchHandler{resultService: rs}
}

// SubmitResultHandler обрабатывает POST /matches/{matchID}/result
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.resultService.SubmitResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
