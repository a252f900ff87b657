// Package http is the REST adapter. It translates requests into typed
// service commands; all domain decisions live below it.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"bikerental-backend/internal/security"
)

// NewRouter wires the API routes behind the auth middleware.
func NewRouter(
	tokens security.TokenManager,
	rentalHandler *RentalHandler,
	availabilityHandler *AvailabilityHandler,
	pricingHandler *PricingHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/rentals", rentalHandler.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/rentals", rentalHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}", rentalHandler.GetDetail).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}/status", rentalHandler.ChangeStatus).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/check-in", rentalHandler.CheckIn).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/check-out", rentalHandler.CheckOut).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/early-return", rentalHandler.EarlyReturn).Methods(http.MethodPost)

	api.HandleFunc("/bikes/available", availabilityHandler.AvailableBikes).Methods(http.MethodGet)
	api.HandleFunc("/bikes/{id:[0-9]+}/availability", availabilityHandler.CheckBike).Methods(http.MethodGet)
	api.HandleFunc("/bikes/{id:[0-9]+}/unavailability-slots", availabilityHandler.UnavailabilitySlots).Methods(http.MethodGet)
	api.HandleFunc("/bikes/{id:[0-9]+}/rentals", availabilityHandler.BikeRentals).Methods(http.MethodGet)

	api.HandleFunc("/pricing/quote", pricingHandler.Quote).Methods(http.MethodPost)
	api.HandleFunc("/pricing/estimate", pricingHandler.Estimate).Methods(http.MethodPost)

	return router
}
