package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/api/middleware"
	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/api/validators"
	"github.com/frescamar/reefertrack-backend/internal/records"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

type recordCreateRequest struct {
	DispatchDate  string `json:"dispatch_date" validate:"required"`
	Booking       string `json:"booking"`
	OrderCode     string `json:"order_code"`
	ContainerCode string `json:"container_code"`
	CustomsDoc    string `json:"customs_doc"`

	Thermograph1 string `json:"thermograph1"`
	Thermograph2 string `json:"thermograph2"`
	SealBeta     string `json:"seal_beta"`
	SealCustoms  string `json:"seal_customs"`
	SealOperator string `json:"seal_operator"`

	Senasa string `json:"senasa"`
	Line   string `json:"line"`

	Plates         string `json:"plates" validate:"required"`
	DriverDocument string `json:"driver_document" validate:"required"`
	CarrierName    string `json:"carrier_name"`
}

func (req recordCreateRequest) toInput(actor string, loc *time.Location) (records.CreateInput, error) {
	dispatchDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.DispatchDate), loc)
	if err != nil {
		return records.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "dispatch_date must be a YYYY-MM-DD date")
	}
	return records.CreateInput{
		DispatchDate:   dispatchDate,
		Booking:        req.Booking,
		OrderCode:      req.OrderCode,
		ContainerCode:  req.ContainerCode,
		CustomsDoc:     req.CustomsDoc,
		Thermograph1:   req.Thermograph1,
		Thermograph2:   req.Thermograph2,
		SealBeta:       req.SealBeta,
		SealCustoms:    req.SealCustoms,
		SealOperator:   req.SealOperator,
		Senasa:         req.Senasa,
		Line:           req.Line,
		Plates:         req.Plates,
		DriverDocument: req.DriverDocument,
		CarrierName:    req.CarrierName,
		Actor:          actor,
	}, nil
}

// RecordCreate registers a new dispatch and claims its business codes.
func RecordCreate(svc records.Service, logg *logger.Logger, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recordCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(middleware.ActorFromContext(r.Context()), loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, recordResponseFromModel(created))
	}
}

// RecordDetail fetches one record with its resolved associations.
func RecordDetail(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := recordIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recordResponseFromModel(record))
	}
}

// RecordProcess confirms the dispatch and releases the container lock.
func RecordProcess(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := recordIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		processed, err := svc.Process(r.Context(), id, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recordResponseFromModel(processed))
	}
}

type recordVoidRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RecordVoid cancels a processed dispatch.
func RecordVoid(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := recordIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordVoidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voided, err := svc.Void(r.Context(), id, strings.TrimSpace(payload.Reason), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recordResponseFromModel(voided))
	}
}

type recordEditRequest struct {
	Booking      *records.BookingEdit     `json:"booking"`
	Container    *records.ContainerEdit   `json:"container"`
	Driver       *records.DriverEdit      `json:"driver"`
	Carrier      *records.CarrierEdit     `json:"carrier"`
	Thermographs *records.ThermographEdit `json:"thermographs"`
	Seals        *records.SealsEdit       `json:"seals"`
}

// RecordEdit corrects a processed dispatch by group.
func RecordEdit(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := recordIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordEditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		edited, err := svc.Edit(r.Context(), id, records.EditInput{
			Booking:      payload.Booking,
			Container:    payload.Container,
			Driver:       payload.Driver,
			Carrier:      payload.Carrier,
			Thermographs: payload.Thermographs,
			Seals:        payload.Seals,
			Actor:        middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recordResponseFromModel(edited))
	}
}

// RecordHistory lists dispatches filtered by date range, status and booking.
func RecordHistory(svc records.Service, logg *logger.Logger, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryDate(r, "from", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := records.HistoryFilter{
			From:    from,
			To:      to,
			Status:  enums.RecordStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Booking: r.URL.Query().Get("booking"),
			Page:    pagination.Params{Limit: limit, Offset: offset},
		}

		rows, total, err := svc.History(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{
			Items: recordResponsesFromModels(rows),
			Total: total,
		})
	}
}

// RecordsProcessedOn lists dispatches processed during one reporting day,
// defaulting to today.
func RecordsProcessedOn(svc records.Service, logg *logger.Logger, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.ParseQueryDate(r, "date", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target := time.Now().In(loc)
		if day != nil {
			target = *day
		}

		rows, err := svc.ProcessedOn(r.Context(), target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{
			Items: recordResponsesFromModels(rows),
			Total: int64(len(rows)),
		})
	}
}

// RecordsDashboard serves the operations overview for a date range.
func RecordsDashboard(svc records.Service, logg *logger.Logger, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryDate(r, "from", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if from == nil || to == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "from and to query parameters are required"))
			return
		}

		stats, err := svc.Dashboard(r.Context(), *from, to.AddDate(0, 0, 1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func recordIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid record id").
			WithDetails(map[string]string{"id": raw})
	}
	return id, nil
}

type listResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

type recordResponse struct {
	ID           uuid.UUID          `json:"id"`
	Status       enums.RecordStatus `json:"status"`
	DispatchDate string             `json:"dispatch_date"`

	Booking       string `json:"booking"`
	OrderCode     string `json:"order_code"`
	ContainerCode string `json:"container_code"`
	CustomsDoc    string `json:"customs_doc"`

	Thermograph1 string `json:"thermograph1"`
	Thermograph2 string `json:"thermograph2"`
	SealBeta     string `json:"seal_beta"`
	SealCustoms  string `json:"seal_customs"`
	SealOperator string `json:"seal_operator"`

	Senasa     string `json:"senasa"`
	Line       string `json:"line"`
	SenasaLine string `json:"senasa_line"`

	Plates  string          `json:"plates"`
	Driver  *driverSummary  `json:"driver,omitempty"`
	Carrier *carrierSummary `json:"carrier,omitempty"`

	CreatedBy   string     `json:"created_by"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	VoidedAt    *time.Time `json:"voided_at,omitempty"`
	VoidReason  string     `json:"void_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type driverSummary struct {
	ID         uuid.UUID `json:"id"`
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
}

type carrierSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func recordResponseFromModel(m *models.Record) recordResponse {
	resp := recordResponse{
		ID:            m.ID,
		Status:        m.Status,
		DispatchDate:  m.DispatchDate.Format("2006-01-02"),
		Booking:       m.Booking,
		OrderCode:     m.OrderCode,
		ContainerCode: m.ContainerCode,
		CustomsDoc:    m.CustomsDoc,
		Thermograph1:  m.Thermograph1,
		Thermograph2:  m.Thermograph2,
		SealBeta:      m.SealBeta,
		SealCustoms:   m.SealCustoms,
		SealOperator:  m.SealOperator,
		Senasa:        m.Senasa,
		Line:          m.Line,
		SenasaLine:    m.SenasaLineComposite,
		Plates:        m.PlateTractor + "/" + m.PlateTrailer,
		CreatedBy:     m.CreatedBy,
		ProcessedAt:   m.ProcessedAt,
		VoidedAt:      m.VoidedAt,
		VoidReason:    m.VoidReason,
		CreatedAt:     m.CreatedAt,
	}
	if m.Driver != nil {
		resp.Driver = &driverSummary{
			ID:         m.Driver.ID,
			DocumentID: m.Driver.DocumentID,
			Name:       m.Driver.DisplayName(),
		}
	}
	if m.Carrier != nil {
		resp.Carrier = &carrierSummary{ID: m.Carrier.ID, Name: m.Carrier.Name}
	}
	return resp
}

func recordResponsesFromModels(rows []models.Record) []recordResponse {
	out := make([]recordResponse, 0, len(rows))
	for i := range rows {
		out = append(out, recordResponseFromModel(&rows[i]))
	}
	return out
}
