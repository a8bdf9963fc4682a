package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/internal/records"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

type stubRecordsService struct {
	createFn  func(ctx context.Context, input records.CreateInput) (*models.Record, error)
	voidFn    func(ctx context.Context, id uuid.UUID, reason, actor string) (*models.Record, error)
	historyFn func(ctx context.Context, filter records.HistoryFilter) ([]models.Record, int64, error)
}

func (s stubRecordsService) Create(ctx context.Context, input records.CreateInput) (*models.Record, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Record{ID: uuid.New(), Status: enums.RecordStatusPending}, nil
}

func (s stubRecordsService) Get(context.Context, uuid.UUID) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (s stubRecordsService) Process(context.Context, uuid.UUID, string) (*models.Record, error) {
	return &models.Record{ID: uuid.New(), Status: enums.RecordStatusProcessed}, nil
}

func (s stubRecordsService) Void(ctx context.Context, id uuid.UUID, reason, actor string) (*models.Record, error) {
	if s.voidFn != nil {
		return s.voidFn(ctx, id, reason, actor)
	}
	return &models.Record{ID: id, Status: enums.RecordStatusVoided}, nil
}

func (s stubRecordsService) Edit(context.Context, uuid.UUID, records.EditInput) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (s stubRecordsService) History(ctx context.Context, filter records.HistoryFilter) ([]models.Record, int64, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, filter)
	}
	return nil, 0, nil
}

func (s stubRecordsService) ProcessedOn(context.Context, time.Time) ([]models.Record, error) {
	return nil, nil
}

func (s stubRecordsService) Dashboard(context.Context, time.Time, time.Time) (*records.DashboardStats, error) {
	return &records.DashboardStats{}, nil
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestRecordCreateParsesDispatchDate(t *testing.T) {
	var got records.CreateInput
	svc := stubRecordsService{
		createFn: func(_ context.Context, input records.CreateInput) (*models.Record, error) {
			got = input
			return &models.Record{ID: uuid.New(), Status: enums.RecordStatusPending}, nil
		},
	}
	handler := RecordCreate(svc, nil, time.UTC)

	body := `{"dispatch_date":"2025-08-20","booking":"BK-100","plates":"ABC-123/XYZ-987","driver_document":"44556677"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !got.DispatchDate.Equal(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected dispatch date %v", got.DispatchDate)
	}
	if got.Booking != "BK-100" || got.DriverDocument != "44556677" {
		t.Fatalf("payload not carried into input: %+v", got)
	}
}

func TestRecordCreateRejectsBadDate(t *testing.T) {
	handler := RecordCreate(stubRecordsService{}, nil, time.UTC)

	body := `{"dispatch_date":"20/08/2025","plates":"A/B","driver_document":"1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRecordVoidRequiresReason(t *testing.T) {
	handler := RecordVoid(stubRecordsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/x/void", strings.NewReader(`{}`))
	req = withURLParam(req, "id", uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without reason got %d", resp.Code)
	}
}

func TestRecordProcessRejectsBadID(t *testing.T) {
	handler := RecordProcess(stubRecordsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/nope/process", nil)
	req = withURLParam(req, "id", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id got %d", resp.Code)
	}
}

func TestRecordHistoryFilters(t *testing.T) {
	var got records.HistoryFilter
	svc := stubRecordsService{
		historyFn: func(_ context.Context, filter records.HistoryFilter) ([]models.Record, int64, error) {
			got = filter
			return nil, 0, nil
		},
	}
	handler := RecordHistory(svc, nil, time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records?from=2025-08-01&to=2025-08-31&status=processed&booking=BK-100&limit=10", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.From == nil || got.To == nil {
		t.Fatalf("date range not parsed: %+v", got)
	}
	if got.Status != enums.RecordStatusProcessed || got.Booking != "BK-100" {
		t.Fatalf("filters not carried: %+v", got)
	}
	if got.Page.Limit != 10 {
		t.Fatalf("limit not applied: %+v", got.Page)
	}

	var payload struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
}
