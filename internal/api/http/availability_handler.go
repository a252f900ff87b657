package http

import (
	"net/http"
	"strconv"
	"time"

	"bikerental-backend/internal/availability"
	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/service"
)

type AvailabilityHandler struct {
	resolver *availability.Resolver
	rentals  service.RentalService
}

func NewAvailabilityHandler(resolver *availability.Resolver, rentals service.RentalService) *AvailabilityHandler {
	return &AvailabilityHandler{resolver: resolver, rentals: rentals}
}

func (h *AvailabilityHandler) CheckBike(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	bikeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	var exclude *int64
	if s := r.URL.Query().Get("exclude_rental_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid exclude_rental_id", Kind: "bad_request"})
			return
		}
		exclude = &id
	}

	result, err := h.resolver.IsAvailableForPeriod(r.Context(), claims.TenantID, bikeID, start, end, exclude)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AvailabilityHandler) UnavailabilitySlots(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	bikeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	slots, err := h.resolver.GetUnavailabilitySlots(r.Context(), claims.TenantID, bikeID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

func (h *AvailabilityHandler) AvailableBikes(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	categoryID := optionalID(q.Get("category_id"))
	pricingClassID := optionalID(q.Get("pricing_class_id"))

	bikes, err := h.resolver.GetAvailableBikesForPeriod(r.Context(), claims.TenantID, claims.SiteID, start, end, categoryID, pricingClassID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bikes": bikes})
}

func (h *AvailabilityHandler) BikeRentals(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	bikeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var statuses []domain.RentalStatus
	for _, s := range r.URL.Query()["status"] {
		statuses = append(statuses, domain.RentalStatus(s))
	}

	rentals, err := h.rentals.GetBikeRentals(r.Context(), claims.TenantID, bikeID, statuses)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rentals": rentals})
}

func parseWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid start; want RFC 3339", Kind: "bad_request"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid end; want RFC 3339", Kind: "bad_request"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func optionalID(s string) *int64 {
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
