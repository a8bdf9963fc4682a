package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/api/validators"
	"github.com/frescamar/reefertrack-backend/internal/refs"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
)

// BookingRefLookup returns the pre-assigned codes for a booking, empty when
// the booking is unknown.
func BookingRefLookup(svc refs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := svc.LookupByBooking(r.Context(), chi.URLParam(r, "booking"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, codes)
	}
}

// BookingRefUpsert creates or refreshes the reference row for a booking.
func BookingRefUpsert(svc refs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload refs.UpsertInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ref, err := svc.Upsert(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, refs.BookingCodes{
			OrderCode:      ref.OrderCode,
			ContainerCode:  ref.ContainerCode,
			CustomsDocCode: ref.CustomsDocCode,
		})
	}
}
