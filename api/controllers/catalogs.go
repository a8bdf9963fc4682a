package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/api/middleware"
	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/api/validators"
	"github.com/frescamar/reefertrack-backend/internal/catalogs"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

// DriverCreate registers a driver in the catalog.
func DriverCreate(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogs.CreateDriverInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateDriver(r.Context(), payload, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, driverResponseFromModel(created))
	}
}

// DriverList pages through the driver catalog.
func DriverList(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		drivers, total, err := svc.ListDrivers(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]driverResponse, 0, len(drivers))
		for i := range drivers {
			items = append(items, driverResponseFromModel(&drivers[i]))
		}
		responses.WriteSuccess(w, listResponse{Items: items, Total: total})
	}
}

// DriverLookup resolves a driver by national document.
func DriverLookup(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, err := svc.DriverByDocument(r.Context(), chi.URLParam(r, "document"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, driverResponseFromModel(driver))
	}
}

// VehicleCreate registers a tractor/trailer pair.
func VehicleCreate(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogs.CreateVehicleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateVehicle(r.Context(), payload, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicleResponseFromModel(created))
	}
}

// VehicleList pages through the vehicle catalog.
func VehicleList(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicles, total, err := svc.ListVehicles(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]vehicleResponse, 0, len(vehicles))
		for i := range vehicles {
			items = append(items, vehicleResponseFromModel(&vehicles[i]))
		}
		responses.WriteSuccess(w, listResponse{Items: items, Total: total})
	}
}

// PlatePairLookup resolves a dispatch plate pair, warning on a trailer that
// does not match the registered pairing.
func PlatePairLookup(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tractor := r.URL.Query().Get("tractor")
		trailer := r.URL.Query().Get("trailer")
		result, err := svc.PlatePairLookup(r.Context(), tractor, trailer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := platePairResponse{Warning: result.Warning}
		if result.Vehicle != nil {
			vehicle := vehicleResponseFromModel(result.Vehicle)
			resp.Vehicle = &vehicle
		}
		responses.WriteSuccess(w, resp)
	}
}

type assignCarrierRequest struct {
	CarrierID string `json:"carrier_id" validate:"required"`
}

// VehicleAssignCarrier binds a vehicle to a trucking company.
func VehicleAssignCarrier(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle id"))
			return
		}

		var payload assignCarrierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		carrierID, err := uuid.Parse(payload.CarrierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid carrier id"))
			return
		}

		updated, err := svc.AssignCarrier(r.Context(), vehicleID, carrierID, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicleResponseFromModel(updated))
	}
}

// CarrierCreate registers a trucking company.
func CarrierCreate(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogs.CreateCarrierInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateCarrier(r.Context(), payload, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, carrierResponseFromModel(created))
	}
}

// CarrierList pages through the carrier catalog.
func CarrierList(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		carriers, total, err := svc.ListCarriers(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]carrierResponse, 0, len(carriers))
		for i := range carriers {
			items = append(items, carrierResponseFromModel(&carriers[i]))
		}
		responses.WriteSuccess(w, listResponse{Items: items, Total: total})
	}
}

// CarrierResolve resolves a free-text carrier search to exactly one company.
func CarrierResolve(svc catalogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carrier, err := svc.ResolveCarrier(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, carrierResponseFromModel(carrier))
	}
}

func pageFromQuery(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Offset: offset}, nil
}

type driverResponse struct {
	ID         uuid.UUID `json:"id"`
	DocumentID string    `json:"document_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	SAPName    string    `json:"sap_name,omitempty"`
	License    string    `json:"license,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func driverResponseFromModel(m *models.Driver) driverResponse {
	return driverResponse{
		ID:         m.ID,
		DocumentID: m.DocumentID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		SAPName:    m.SAPName,
		License:    m.License,
		CreatedAt:  m.CreatedAt,
	}
}

type vehicleResponse struct {
	ID           uuid.UUID       `json:"id"`
	PlateTractor string          `json:"plate_tractor"`
	PlateTrailer string          `json:"plate_trailer"`
	Brand        string          `json:"brand,omitempty"`
	CertTractor  string          `json:"cert_tractor,omitempty"`
	CertTrailer  string          `json:"cert_trailer,omitempty"`
	Carrier      *carrierSummary `json:"carrier,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func vehicleResponseFromModel(m *models.Vehicle) vehicleResponse {
	resp := vehicleResponse{
		ID:           m.ID,
		PlateTractor: m.PlateTractor,
		PlateTrailer: m.PlateTrailer,
		Brand:        m.Brand,
		CertTractor:  m.CertTractor,
		CertTrailer:  m.CertTrailer,
		CreatedAt:    m.CreatedAt,
	}
	if m.Carrier != nil {
		resp.Carrier = &carrierSummary{ID: m.Carrier.ID, Name: m.Carrier.Name}
	}
	return resp
}

type platePairResponse struct {
	Vehicle *vehicleResponse `json:"vehicle"`
	Warning string           `json:"warning,omitempty"`
}

type carrierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	TaxID         string    `json:"tax_id,omitempty"`
	SAPCode       string    `json:"sap_code,omitempty"`
	RegistryEntry string    `json:"registry_entry,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func carrierResponseFromModel(m *models.Carrier) carrierResponse {
	return carrierResponse{
		ID:            m.ID,
		Name:          m.Name,
		TaxID:         m.TaxID,
		SAPCode:       m.SAPCode,
		RegistryEntry: m.RegistryEntry,
		CreatedAt:     m.CreatedAt,
	}
}
