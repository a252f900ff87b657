package http

import (
	"encoding/json"
	"net/http"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/pricing"
)

type PricingHandler struct {
	engine *pricing.Engine
}

func NewPricingHandler(engine *pricing.Engine) *PricingHandler {
	return &PricingHandler{engine: engine}
}

type quoteRequest struct {
	CategoryID     int64  `json:"category_id"`
	PricingClassID int64  `json:"pricing_class_id"`
	Duration       string `json:"duration"`
	CustomDays     int32  `json:"custom_days,omitempty"`
}

// Quote returns the full calculation with discounts applied.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	calc, err := h.engine.Calculate(r.Context(), claims.TenantID, req.CategoryID, req.PricingClassID, domain.RentalDuration(req.Duration), req.CustomDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// Estimate is the fast preview path: rate lookup only, no discounts.
func (h *PricingHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	calc, err := h.engine.CalculateQuickEstimate(r.Context(), claims.TenantID, req.CategoryID, req.PricingClassID, domain.RentalDuration(req.Duration), req.CustomDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}
