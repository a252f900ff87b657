package domain

import (
	"math"
	"time"
)

type RentalStatus string

const (
	RentalStatusReserved  RentalStatus = "RESERVED"
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

// rentalTransitions is the legal transition graph of the rental state machine.
// COMPLETED and CANCELLED are terminal.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusReserved:  {RentalStatusPending, RentalStatusActive, RentalStatusCancelled},
	RentalStatusPending:   {RentalStatusActive, RentalStatusCancelled},
	RentalStatusActive:    {RentalStatusCompleted},
	RentalStatusCompleted: {},
	RentalStatusCancelled: {},
}

// CanTransitionTo reports whether from -> to is a legal transition. A
// transition to the current status is allowed (callers treat it as an
// idempotent no-op).
func (s RentalStatus) CanTransitionTo(to RentalStatus) bool {
	if s == to {
		return true
	}
	for _, allowed := range rentalTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanStart reports whether the rental is ready for check-in.
func (s RentalStatus) CanStart() bool {
	return s == RentalStatusPending
}

func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// BlocksCalendar reports whether a rental in this status occupies the bike's
// booking calendar. Terminal rentals never block.
func (s RentalStatus) BlocksCalendar() bool {
	return s == RentalStatusReserved || s == RentalStatusPending || s == RentalStatusActive
}

// BlocksBikePhysically reports whether this status implies the bike's discrete
// status has been flipped to RENTED. Only ACTIVE touches the bike; RESERVED
// and PENDING occupy the calendar alone.
func (s RentalStatus) BlocksBikePhysically() bool {
	return s == RentalStatusActive
}

type DepositStatus string

const (
	DepositStatusHeld     DepositStatus = "HELD"
	DepositStatusReleased DepositStatus = "RELEASED"
	DepositStatusPartial  DepositStatus = "PARTIAL"
	DepositStatusRetained DepositStatus = "RETAINED"
)

type RentalDuration string

const (
	DurationHalfDay   RentalDuration = "half_day"
	DurationFullDay   RentalDuration = "full_day"
	DurationTwoDays   RentalDuration = "two_days"
	DurationThreeDays RentalDuration = "three_days"
	DurationWeek      RentalDuration = "week"
	DurationCustom    RentalDuration = "custom"
)

// Days returns the configured day count for the duration. The second return
// is false for custom durations (which carry their own day count) and for
// unknown values.
func (d RentalDuration) Days() (int32, bool) {
	switch d {
	case DurationHalfDay, DurationFullDay:
		return 1, true
	case DurationTwoDays:
		return 2, true
	case DurationThreeDays:
		return 3, true
	case DurationWeek:
		return 7, true
	}
	return 0, false
}

type ReturnCondition string

const (
	ReturnConditionOK          ReturnCondition = "OK"
	ReturnConditionMinorDamage ReturnCondition = "MINOR_DAMAGE"
	ReturnConditionMajorDamage ReturnCondition = "MAJOR_DAMAGE"
	ReturnConditionLost        ReturnCondition = "LOST"
)

// RequiresMaintenance reports whether a bike returned in this condition must
// be routed to the workshop instead of going back to the available pool.
func (c ReturnCondition) RequiresMaintenance() bool {
	return c == ReturnConditionMinorDamage || c == ReturnConditionMajorDamage
}

// ReleaseStatus returns the bike status a completed rental releases the bike
// into, given its returned condition.
func (c ReturnCondition) ReleaseStatus() BikeStatus {
	switch {
	case c == ReturnConditionLost:
		return BikeStatusUnavailable
	case c.RequiresMaintenance():
		return BikeStatusMaintenance
	}
	return BikeStatusAvailable
}

type EquipmentType string

const (
	EquipmentHelmet     EquipmentType = "HELMET"
	EquipmentLock       EquipmentType = "LOCK"
	EquipmentChildSeat  EquipmentType = "CHILD_SEAT"
	EquipmentPannier    EquipmentType = "PANNIER"
	EquipmentPhoneMount EquipmentType = "PHONE_MOUNT"
)

// CheckInData captures the fitting measurements taken when a bike is handed
// to the customer.
type CheckInData struct {
	ClientHeightCm     float64 `json:"client_height_cm"`
	ClientWeightKg     float64 `json:"client_weight_kg"`
	SaddleHeightMm     float64 `json:"saddle_height_mm"`
	FrontSuspensionPSI float64 `json:"front_suspension_psi"`
	RearSuspensionPSI  float64 `json:"rear_suspension_psi"`
	PedalType          string  `json:"pedal_type"`
	Notes              string  `json:"notes"`
}

// CheckOutData captures the condition assessment taken when a bike comes back.
type CheckOutData struct {
	Condition         ReturnCondition `json:"condition"`
	DamageDescription string          `json:"damage_description"`
	DamagePhotos      []string        `json:"damage_photos,omitempty"`
}

// RentalItem is one bike leased within a rental. It is owned exclusively by
// its Rental.
type RentalItem struct {
	ID             int64         `json:"id"`
	RentalID       int64         `json:"rental_id"`
	BikeID         int64         `json:"bike_id"`
	DailyRateCents int64         `json:"daily_rate_cents"`
	Quantity       int32         `json:"quantity"`
	CheckIn        *CheckInData  `json:"check_in,omitempty"`
	CheckOut       *CheckOutData `json:"check_out,omitempty"`
}

// RentalEquipment is an ancillary rented item (helmet, lock, ...).
type RentalEquipment struct {
	ID                int64         `json:"id"`
	RentalID          int64         `json:"rental_id"`
	Type              EquipmentType `json:"type"`
	Quantity          int32         `json:"quantity"`
	PricePerUnitCents int64         `json:"price_per_unit_cents"`
}

// Rental is the aggregate root and consistency boundary for a booking. Money
// fields (TotalAmountCents, TaxAmountCents, TotalWithTaxCents) are always
// derived via RecalculateTotalAmount and never set independently.
type Rental struct {
	ID                   int64             `json:"id"`
	Reference            string            `json:"reference"`
	TenantID             int64             `json:"tenant_id"`
	SiteID               *int64            `json:"site_id,omitempty"`
	CustomerID           int64             `json:"customer_id"`
	StartDate            time.Time         `json:"start_date"`
	ExpectedReturnDate   time.Time         `json:"expected_return_date"`
	ActualReturnDate     *time.Time        `json:"actual_return_date,omitempty"`
	Duration             RentalDuration    `json:"duration"`
	CustomDays           int32             `json:"custom_days,omitempty"`
	DepositCents         int64             `json:"deposit_cents"`
	TotalAmountCents     int64             `json:"total_amount_cents"`
	DiscountAmountCents  int64             `json:"discount_amount_cents"`
	TaxRate              float64           `json:"tax_rate"`
	TaxAmountCents       int64             `json:"tax_amount_cents"`
	TotalWithTaxCents    int64             `json:"total_with_tax_cents"`
	Status               RentalStatus      `json:"status"`
	DepositStatus        DepositStatus     `json:"deposit_status"`
	DepositRetainedCents *int64            `json:"deposit_retained_cents,omitempty"`
	CancellationReason   *string           `json:"cancellation_reason,omitempty"`
	Items                []RentalItem      `json:"items"`
	Equipment            []RentalEquipment `json:"equipment"`
	CreatedOn            time.Time         `json:"created_on"`
	UpdatedOn            time.Time         `json:"updated_on"`
}

// NumberOfDays resolves the billable day count: the custom day count when the
// duration is custom, else the duration's configured count, else 1.
func (r *Rental) NumberOfDays() int32 {
	if r.Duration == DurationCustom && r.CustomDays > 0 {
		return r.CustomDays
	}
	if days, ok := r.Duration.Days(); ok {
		return days
	}
	return 1
}

// RecalculateTotalAmount is the single source of truth for the aggregate's
// money fields. It must be invoked after any structural mutation (item or
// equipment change, duration change). Calling it twice with no intervening
// mutation yields identical totals.
func (r *Rental) RecalculateTotalAmount() {
	days := int64(r.NumberOfDays())

	var subtotal int64
	for _, item := range r.Items {
		subtotal += item.DailyRateCents * int64(item.Quantity) * days
	}
	for _, eq := range r.Equipment {
		subtotal += eq.PricePerUnitCents * int64(eq.Quantity)
	}

	total := subtotal - r.DiscountAmountCents
	if total < 0 {
		total = 0
	}

	r.TotalAmountCents = total
	r.TaxAmountCents = int64(math.Round(float64(total) * r.TaxRate / 100))
	r.TotalWithTaxCents = r.TotalAmountCents + r.TaxAmountCents
}

// ItemForBike returns the rental item leasing the given bike, or nil when the
// bike is not part of this rental.
func (r *Rental) ItemForBike(bikeID int64) *RentalItem {
	for i := range r.Items {
		if r.Items[i].BikeID == bikeID {
			return &r.Items[i]
		}
	}
	return nil
}

func (r *Rental) AllItemsCheckedIn() bool {
	for i := range r.Items {
		if r.Items[i].CheckIn == nil {
			return false
		}
	}
	return len(r.Items) > 0
}

func (r *Rental) AllItemsCheckedOut() bool {
	for i := range r.Items {
		if r.Items[i].CheckOut == nil {
			return false
		}
	}
	return len(r.Items) > 0
}

// UncheckedOutBikeIDs lists the bikes still waiting for a return condition.
func (r *Rental) UncheckedOutBikeIDs() []int64 {
	var ids []int64
	for i := range r.Items {
		if r.Items[i].CheckOut == nil {
			ids = append(ids, r.Items[i].BikeID)
		}
	}
	return ids
}

// ApplyDepositRetention records how much of the deposit is withheld and
// derives the deposit status. The retained amount never exceeds the deposit.
func (r *Rental) ApplyDepositRetention(retainedCents int64) {
	if retainedCents < 0 {
		retainedCents = 0
	}
	if retainedCents > r.DepositCents {
		retainedCents = r.DepositCents
	}
	r.DepositRetainedCents = &retainedCents

	switch {
	case retainedCents == 0:
		r.DepositStatus = DepositStatusReleased
	case retainedCents >= r.DepositCents:
		r.DepositStatus = DepositStatusRetained
	default:
		r.DepositStatus = DepositStatusPartial
	}
}

// IsLate reports whether the rental is past its expected return date at the
// given instant. Listings flag lateness purely by this comparison; the
// configured tolerance only affects fee calculation.
func (r *Rental) IsLate(now time.Time) bool {
	return r.Status == RentalStatusActive && now.After(r.ExpectedReturnDate)
}
