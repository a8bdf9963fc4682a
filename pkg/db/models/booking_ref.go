package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingRef carries the pre-assigned codes for a booking so dispatch forms
// can autofill order, container and customs document.
type BookingRef struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Booking        string    `gorm:"column:booking;not null;uniqueIndex"`
	OrderCode      string    `gorm:"column:order_code;not null;default:''"`
	ContainerCode  string    `gorm:"column:container_code;not null;default:''"`
	CustomsDocCode string    `gorm:"column:customs_doc_code;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
