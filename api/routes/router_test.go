package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/internal/audit"
	"github.com/frescamar/reefertrack-backend/internal/catalogs"
	"github.com/frescamar/reefertrack-backend/internal/export"
	"github.com/frescamar/reefertrack-backend/internal/records"
	"github.com/frescamar/reefertrack-backend/internal/refs"
	"github.com/frescamar/reefertrack-backend/pkg/config"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRecordsService struct{}

func (stubRecordsService) Create(context.Context, records.CreateInput) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (stubRecordsService) Get(context.Context, uuid.UUID) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (stubRecordsService) Process(context.Context, uuid.UUID, string) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (stubRecordsService) Void(context.Context, uuid.UUID, string, string) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (stubRecordsService) Edit(context.Context, uuid.UUID, records.EditInput) (*models.Record, error) {
	return &models.Record{ID: uuid.New()}, nil
}

func (stubRecordsService) History(context.Context, records.HistoryFilter) ([]models.Record, int64, error) {
	return nil, 0, nil
}

func (stubRecordsService) ProcessedOn(context.Context, time.Time) ([]models.Record, error) {
	return nil, nil
}

func (stubRecordsService) Dashboard(context.Context, time.Time, time.Time) (*records.DashboardStats, error) {
	return &records.DashboardStats{}, nil
}

type stubCatalogsService struct{}

func (stubCatalogsService) DriverByDocument(context.Context, string) (*models.Driver, error) {
	return &models.Driver{ID: uuid.New()}, nil
}

func (stubCatalogsService) CreateDriver(context.Context, catalogs.CreateDriverInput, string) (*models.Driver, error) {
	return &models.Driver{ID: uuid.New()}, nil
}

func (stubCatalogsService) ListDrivers(context.Context, pagination.Params) ([]models.Driver, int64, error) {
	return nil, 0, nil
}

func (stubCatalogsService) VehicleByTractorPlate(context.Context, string) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New()}, nil
}

func (stubCatalogsService) PlatePairLookup(context.Context, string, string) (*catalogs.PlatePairResult, error) {
	return &catalogs.PlatePairResult{}, nil
}

func (stubCatalogsService) CreateVehicle(context.Context, catalogs.CreateVehicleInput, string) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New()}, nil
}

func (stubCatalogsService) ListVehicles(context.Context, pagination.Params) ([]models.Vehicle, int64, error) {
	return nil, 0, nil
}

func (stubCatalogsService) AssignCarrier(context.Context, uuid.UUID, uuid.UUID, string) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New()}, nil
}

func (stubCatalogsService) ResolveCarrier(context.Context, string) (*models.Carrier, error) {
	return &models.Carrier{ID: uuid.New()}, nil
}

func (stubCatalogsService) CreateCarrier(context.Context, catalogs.CreateCarrierInput, string) (*models.Carrier, error) {
	return &models.Carrier{ID: uuid.New()}, nil
}

func (stubCatalogsService) ListCarriers(context.Context, pagination.Params) ([]models.Carrier, int64, error) {
	return nil, 0, nil
}

type stubRefsService struct{}

func (stubRefsService) LookupByBooking(context.Context, string) (refs.BookingCodes, error) {
	return refs.BookingCodes{}, nil
}

func (stubRefsService) Upsert(context.Context, refs.UpsertInput) (*models.BookingRef, error) {
	return &models.BookingRef{ID: uuid.New()}, nil
}

type stubAuditReader struct {
	lastAdmin bool
}

func (s *stubAuditReader) List(_ context.Context, _ audit.Filter, admin bool) ([]models.AuditEvent, int64, error) {
	s.lastAdmin = admin
	return nil, 0, nil
}

type stubExportService struct{}

func (stubExportService) DailySheet(context.Context, time.Time) ([]export.Row, error) {
	return nil, nil
}

func testConfig(jwtSecret string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: jwtSecret, Issuer: "reefertrack-test"},
	}
}

func newTestRouter(cfg *config.Config, auditReader *stubAuditReader) http.Handler {
	if auditReader == nil {
		auditReader = &stubAuditReader{}
	}
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Cfg:      cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Loc:      time.UTC,
		Records:  stubRecordsService{},
		Catalogs: stubCatalogsService{},
		Refs:     stubRefsService{},
		Audit:    auditReader,
		Export:   stubExportService{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, subject, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iss":  cfg.JWT.Issuer,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(""), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRequiresTokenWhenJWTConfigured(t *testing.T) {
	cfg := testConfig("s3cret")
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	authed.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "mrodriguez", "operator"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestAPIHeaderIdentityWhenJWTDisabled(t *testing.T) {
	router := newTestRouter(testConfig(""), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without token when JWT disabled got %d", resp.Code)
	}
}

func TestAuditVisibilityFollowsRole(t *testing.T) {
	cfg := testConfig("s3cret")
	reader := &stubAuditReader{}
	router := newTestRouter(cfg, reader)

	operator := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	operator.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "jperez", "operator"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for operator audit got %d", resp.Code)
	}
	if reader.lastAdmin {
		t.Fatalf("operator must not read the trail as admin")
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	admin.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, "root", "admin"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin audit got %d", resp.Code)
	}
	if !reader.lastAdmin {
		t.Fatalf("admin flag not propagated to the audit reader")
	}
}

func TestCatalogCreateRequiresAdmin(t *testing.T) {
	router := newTestRouter(testConfig(""), nil)
	body := `{"name":"Transportes Andinos","tax_id":"20123456789"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carriers", strings.NewReader(body))
	req.Header.Set("X-User-Role", "operator")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator carrier create got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/carriers", strings.NewReader(body))
	admin.Header.Set("X-User-Role", "admin")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin carrier create got %d", resp.Code)
	}
}

func TestRecordCreateRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig(""), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig("s3cret")
	router := newTestRouter(cfg, nil)

	claims := jwt.MapClaims{
		"sub":  "mrodriguez",
		"role": "operator",
		"iss":  cfg.JWT.Issuer,
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token got %d", resp.Code)
	}
}
