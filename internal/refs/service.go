package refs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/internal/uniqueness"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
)

// BookingCodes are the pre-assigned codes for a booking. Unknown bookings
// resolve to the zero value so dispatch forms simply stay blank.
type BookingCodes struct {
	OrderCode      string `json:"order_code"`
	ContainerCode  string `json:"container_code"`
	CustomsDocCode string `json:"customs_doc_code"`
}

// Service looks up and maintains booking references.
type Service interface {
	LookupByBooking(ctx context.Context, booking string) (BookingCodes, error)
	Upsert(ctx context.Context, input UpsertInput) (*models.BookingRef, error)
}

// UpsertInput creates or refreshes the reference row for a booking.
type UpsertInput struct {
	Booking        string `json:"booking" validate:"required"`
	OrderCode      string `json:"order_code"`
	ContainerCode  string `json:"container_code"`
	CustomsDocCode string `json:"customs_doc_code"`
}

type service struct {
	db *gorm.DB
}

// NewService wires the booking reference service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("refs db handle required")
	}
	return &service{db: db}, nil
}

func (s *service) LookupByBooking(ctx context.Context, booking string) (BookingCodes, error) {
	normalized := uniqueness.Normalize(booking)
	if normalized == "" {
		return BookingCodes{}, nil
	}
	var ref models.BookingRef
	err := s.db.WithContext(ctx).Where("booking = ?", normalized).First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BookingCodes{}, nil
	}
	if err != nil {
		return BookingCodes{}, err
	}
	return BookingCodes{
		OrderCode:      ref.OrderCode,
		ContainerCode:  ref.ContainerCode,
		CustomsDocCode: ref.CustomsDocCode,
	}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.BookingRef, error) {
	booking := uniqueness.Normalize(input.Booking)
	if booking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking is required")
	}

	var ref models.BookingRef
	err := s.db.WithContext(ctx).Where("booking = ?", booking).First(&ref).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ref = models.BookingRef{ID: uuid.New(), Booking: booking}
	case err != nil:
		return nil, err
	}

	ref.OrderCode = uniqueness.Normalize(input.OrderCode)
	ref.ContainerCode = uniqueness.Normalize(input.ContainerCode)
	ref.CustomsDocCode = uniqueness.Normalize(input.CustomsDocCode)

	if err := s.db.WithContext(ctx).Save(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}
