package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a tractor/trailer pair. The tractor plate is the lookup key at
// dispatch; the carrier rides along through the association.
type Vehicle struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PlateTractor string    `gorm:"column:plate_tractor;not null;uniqueIndex"`
	PlateTrailer string    `gorm:"column:plate_trailer;not null;default:''"`
	Brand        string    `gorm:"column:brand;not null;default:''"`
	CertTractor  string    `gorm:"column:cert_tractor;not null;default:''"`
	CertTrailer  string    `gorm:"column:cert_trailer;not null;default:''"`

	CarrierID *uuid.UUID `gorm:"column:carrier_id;type:uuid"`
	Carrier   *Carrier   `gorm:"foreignKey:CarrierID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PlatesCombined renders the pair the way dispatch forms capture it.
func (v Vehicle) PlatesCombined() string {
	return v.PlateTractor + "/" + v.PlateTrailer
}

// CertsCombined concatenates the circulation certs tractor-first.
func (v Vehicle) CertsCombined() string {
	if v.CertTractor == "" && v.CertTrailer == "" {
		return ""
	}
	return v.CertTractor + "/" + v.CertTrailer
}
