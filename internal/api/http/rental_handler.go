package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/service"
)

type RentalHandler struct {
	rentals service.RentalService
}

func NewRentalHandler(rentals service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

type createReservationRequest struct {
	CustomerID         int64                  `json:"customer_id"`
	StartDate          time.Time              `json:"start_date"`
	ExpectedReturnDate time.Time              `json:"expected_return_date"`
	Duration           string                 `json:"duration"`
	CustomDays         int32                  `json:"custom_days,omitempty"`
	TaxRate            float64                `json:"tax_rate"`
	DepositCents       int64                  `json:"deposit_cents"`
	BikeIDs            []int64                `json:"bike_ids"`
	Equipment          []reservationEquipment `json:"equipment,omitempty"`
}

type reservationEquipment struct {
	Type              string `json:"type"`
	Quantity          int32  `json:"quantity"`
	PricePerUnitCents int64  `json:"price_per_unit_cents"`
}

func (h *RentalHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	in := service.CreateReservationInput{
		TenantID:           claims.TenantID,
		SiteID:             claims.SiteID,
		CustomerID:         req.CustomerID,
		StartDate:          req.StartDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Duration:           domain.RentalDuration(req.Duration),
		CustomDays:         req.CustomDays,
		TaxRate:            req.TaxRate,
		DepositCents:       req.DepositCents,
		BikeIDs:            req.BikeIDs,
	}
	for _, eq := range req.Equipment {
		in.Equipment = append(in.Equipment, service.EquipmentInput{
			Type:              domain.EquipmentType(eq.Type),
			Quantity:          eq.Quantity,
			PricePerUnitCents: eq.PricePerUnitCents,
		})
	}

	rental, err := h.rentals.CreateReservation(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

type changeStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (h *RentalHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleManager)
	if claims == nil {
		return
	}
	rentalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	result, err := h.rentals.ChangeRentalStatus(r.Context(), claims.TenantID, rentalID, domain.RentalStatus(req.Status), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rental":  result.Rental,
		"message": result.Message,
	})
}

type checkInRequest struct {
	Items []checkInItem `json:"items"`
}

type checkInItem struct {
	BikeID             int64   `json:"bike_id"`
	ClientHeightCm     float64 `json:"client_height_cm"`
	ClientWeightKg     float64 `json:"client_weight_kg"`
	SaddleHeightMm     float64 `json:"saddle_height_mm"`
	FrontSuspensionPSI float64 `json:"front_suspension_psi"`
	RearSuspensionPSI  float64 `json:"rear_suspension_psi"`
	PedalType          string  `json:"pedal_type"`
	Notes              string  `json:"notes"`
}

func (h *RentalHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	rentalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	items := make([]service.CheckInItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CheckInItemInput{
			BikeID: it.BikeID,
			Data: domain.CheckInData{
				ClientHeightCm:     it.ClientHeightCm,
				ClientWeightKg:     it.ClientWeightKg,
				SaddleHeightMm:     it.SaddleHeightMm,
				FrontSuspensionPSI: it.FrontSuspensionPSI,
				RearSuspensionPSI:  it.RearSuspensionPSI,
				PedalType:          it.PedalType,
				Notes:              it.Notes,
			},
		})
	}

	rental, err := h.rentals.CheckInRental(r.Context(), claims.TenantID, rentalID, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type checkOutRequest struct {
	Items                []checkOutItem `json:"items"`
	DepositRetainedCents int64          `json:"deposit_retained_cents"`
	LateFeeRate          string         `json:"late_fee_rate,omitempty"`
}

type checkOutItem struct {
	BikeID            int64    `json:"bike_id"`
	Condition         string   `json:"condition"`
	DamageDescription string   `json:"damage_description,omitempty"`
	DamagePhotos      []string `json:"damage_photos,omitempty"`
}

func (r checkOutRequest) toInput() service.CheckOutInput {
	in := service.CheckOutInput{
		DepositRetainedCents: r.DepositRetainedCents,
		LateFeeRate:          service.LateFeeRateKind(r.LateFeeRate),
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, service.CheckOutItemInput{
			BikeID:            it.BikeID,
			Condition:         domain.ReturnCondition(it.Condition),
			DamageDescription: it.DamageDescription,
			DamagePhotos:      it.DamagePhotos,
		})
	}
	return in
}

func (h *RentalHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	rentalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	result, err := h.rentals.CheckOutRental(r.Context(), claims.TenantID, rentalID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RentalHandler) EarlyReturn(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	rentalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	outcome, err := h.rentals.EarlyReturn(r.Context(), claims.TenantID, rentalID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *RentalHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}
	rentalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.rentals.GetRentalDetail(r.Context(), claims.TenantID, rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, RoleOperator)
	if claims == nil {
		return
	}

	q := r.URL.Query()
	page := parseInt32(q.Get("page"), 1)
	pageSize := parseInt32(q.Get("page_size"), 20)

	rentals, total, err := h.rentals.ListRentals(r.Context(), claims.TenantID, claims.SiteID, q.Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rentals": rentals,
		"total":   total,
	})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id", Kind: "bad_request"})
		return 0, false
	}
	return id, true
}

func parseInt32(s string, fallback int32) int32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < 1 {
		return fallback
	}
	return int32(v)
}
