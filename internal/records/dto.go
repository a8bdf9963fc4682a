package records

import (
	"time"

	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// CreateInput captures a new dispatch as the plant gate submits it. Plates is
// the combined "TRACTOR/TRAILER" pair; both parts are mandatory.
type CreateInput struct {
	DispatchDate  time.Time
	Booking       string
	OrderCode     string
	ContainerCode string
	CustomsDoc    string

	Thermograph1 string
	Thermograph2 string
	SealBeta     string
	SealCustoms  string
	SealOperator string

	Senasa string
	Line   string

	Plates         string
	DriverDocument string
	CarrierName    string

	Actor string
}

// EditInput groups the allowed corrections to a processed record. Every group
// is optional; at least one must be present. The full code set is re-derived
// and re-claimed after any edit.
type EditInput struct {
	Booking      *BookingEdit
	Container    *ContainerEdit
	Driver       *DriverEdit
	Carrier      *CarrierEdit
	Thermographs *ThermographEdit
	Seals        *SealsEdit

	Actor string
}

// BookingEdit swaps the booking and re-runs the reference autofill over the
// dependent codes.
type BookingEdit struct {
	Booking string `json:"booking" validate:"required"`
}

// ContainerEdit corrects the container code.
type ContainerEdit struct {
	ContainerCode string `json:"container_code" validate:"required"`
}

// DriverEdit re-resolves the driver by document.
type DriverEdit struct {
	DriverDocument string `json:"driver_document" validate:"required"`
}

// CarrierEdit re-resolves the carrier by name search.
type CarrierEdit struct {
	CarrierName string `json:"carrier_name" validate:"required"`
}

// ThermographEdit replaces both thermograph codes.
type ThermographEdit struct {
	Thermograph1 string `json:"thermograph1"`
	Thermograph2 string `json:"thermograph2"`
}

// SealsEdit replaces the full seal bundle.
type SealsEdit struct {
	SealBeta     string `json:"seal_beta"`
	SealCustoms  string `json:"seal_customs"`
	SealOperator string `json:"seal_operator"`
}

func (e EditInput) empty() bool {
	return e.Booking == nil && e.Container == nil && e.Driver == nil &&
		e.Carrier == nil && e.Thermographs == nil && e.Seals == nil
}

// DayCount is one dashboard bucket.
type DayCount struct {
	Day   string `json:"day"`
	Total int64  `json:"total"`
}

// CarrierCount aggregates processed dispatches per trucking company.
type CarrierCount struct {
	Carrier string `json:"carrier"`
	Total   int64  `json:"total"`
}

// DashboardStats is the operations overview for a date range.
type DashboardStats struct {
	ByStatus  map[enums.RecordStatus]int64 `json:"by_status"`
	ByDay     []DayCount                   `json:"by_day"`
	ByCarrier []CarrierCount               `json:"by_carrier"`
}
