package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

type errorResponse struct {
	Error string      `json:"error"`
	Kind  string      `json:"kind"`
	Data  interface{} `json:"data,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP status codes. Conflict
// slots ride along with availability errors so the client can offer
// alternatives.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *domain.NotFoundError
		invalidTr   *domain.InvalidTransitionError
		unavailable *domain.UnavailableError
		temporal    *domain.InvalidTemporalOrderingError
		configViol  *domain.ConfigurationViolationError
		notInRental *domain.BikeNotInRentalError
		incomplete  *domain.IncompleteCheckOutError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
	case errors.As(err, &invalidTr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "invalid_transition"})
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "unavailable", Data: unavailable.Conflicts})
	case errors.As(err, &temporal):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "invalid_temporal_ordering"})
	case errors.As(err, &configViol):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "configuration_violation"})
	case errors.As(err, &notInRental):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "bike_not_in_rental"})
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "incomplete_check_out", Data: incomplete.MissingBikeIDs})
	default:
		logger.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
	}
}
