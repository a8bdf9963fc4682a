package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// Record is a reefer dispatch: one container leaving the plant with its
// driver, vehicle and the full set of business codes stamped on the cargo.
type Record struct {
	ID     uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Status enums.RecordStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	DispatchDate  time.Time `gorm:"column:dispatch_date;not null"`
	Booking       string    `gorm:"column:booking;not null;default:''"`
	OrderCode     string    `gorm:"column:order_code;not null;default:''"`
	ContainerCode string    `gorm:"column:container_code;not null;default:''"`
	CustomsDoc    string    `gorm:"column:customs_doc;not null;default:''"`

	Thermograph1 string `gorm:"column:thermograph1;not null;default:''"`
	Thermograph2 string `gorm:"column:thermograph2;not null;default:''"`
	SealBeta     string `gorm:"column:seal_beta;not null;default:''"`
	SealCustoms  string `gorm:"column:seal_customs;not null;default:''"`
	SealOperator string `gorm:"column:seal_operator;not null;default:''"`

	Senasa              string `gorm:"column:senasa;not null;default:''"`
	Line                string `gorm:"column:line;not null;default:''"`
	SenasaLineComposite string `gorm:"column:senasa_line_composite;not null;default:''"`

	PlateTractor string `gorm:"column:plate_tractor;not null;default:''"`
	PlateTrailer string `gorm:"column:plate_trailer;not null;default:''"`

	DriverID  *uuid.UUID `gorm:"column:driver_id;type:uuid"`
	VehicleID *uuid.UUID `gorm:"column:vehicle_id;type:uuid"`
	CarrierID *uuid.UUID `gorm:"column:carrier_id;type:uuid"`

	Driver  *Driver  `gorm:"foreignKey:DriverID"`
	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
	Carrier *Carrier `gorm:"foreignKey:CarrierID"`

	CreatedBy   string     `gorm:"column:created_by;not null;default:''"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`
	VoidedAt    *time.Time `gorm:"column:voided_at"`
	VoidReason  string     `gorm:"column:void_reason;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OwnerRef is the ledger owner reference for this record.
func (r Record) OwnerRef() string {
	return "REG-" + r.ID.String()
}
