package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/frescamar/reefertrack-backend/api/controllers"
	"github.com/frescamar/reefertrack-backend/api/middleware"
	"github.com/frescamar/reefertrack-backend/internal/audit"
	"github.com/frescamar/reefertrack-backend/internal/catalogs"
	"github.com/frescamar/reefertrack-backend/internal/export"
	"github.com/frescamar/reefertrack-backend/internal/records"
	"github.com/frescamar/reefertrack-backend/internal/refs"
	"github.com/frescamar/reefertrack-backend/pkg/config"
	"github.com/frescamar/reefertrack-backend/pkg/db"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
	"github.com/frescamar/reefertrack-backend/pkg/metrics"
	"github.com/frescamar/reefertrack-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cfg      *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Metrics  *metrics.HTTPMetrics
	Loc      *time.Location
	Records  records.Service
	Catalogs catalogs.Service
	Refs     refs.Service
	Audit    audit.Reader
	Export   export.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg, loc := d.Cfg, d.Logger, d.Loc
	if loc == nil {
		loc = time.UTC
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	var cache interface{ Ping(ctx context.Context) error }
	if d.Redis != nil {
		cache = d.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, cache))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWT, logg))
		if d.Redis != nil {
			r.Use(middleware.Idempotency(d.Redis, logg))
			r.Use(middleware.RateLimit(d.Redis, cfg.RateLimit, logg))
		}

		r.Route("/records", func(r chi.Router) {
			r.Get("/", controllers.RecordHistory(d.Records, logg, loc))
			r.Post("/", controllers.RecordCreate(d.Records, logg, loc))
			r.Get("/processed", controllers.RecordsProcessedOn(d.Records, logg, loc))
			r.Get("/dashboard", controllers.RecordsDashboard(d.Records, logg, loc))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.RecordDetail(d.Records, logg))
				r.Patch("/", controllers.RecordEdit(d.Records, logg))
				r.Post("/process", controllers.RecordProcess(d.Records, logg))
				r.Post("/void", controllers.RecordVoid(d.Records, logg))
			})
		})

		adminOnly := middleware.RequireRole(middleware.RoleAdmin, logg)

		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", controllers.DriverList(d.Catalogs, logg))
			r.With(adminOnly).Post("/", controllers.DriverCreate(d.Catalogs, logg))
			r.Get("/{document}", controllers.DriverLookup(d.Catalogs, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(d.Catalogs, logg))
			r.With(adminOnly).Post("/", controllers.VehicleCreate(d.Catalogs, logg))
			r.Get("/lookup", controllers.PlatePairLookup(d.Catalogs, logg))
			r.With(adminOnly).Put("/{id}/carrier", controllers.VehicleAssignCarrier(d.Catalogs, logg))
		})

		r.Route("/carriers", func(r chi.Router) {
			r.Get("/", controllers.CarrierList(d.Catalogs, logg))
			r.With(adminOnly).Post("/", controllers.CarrierCreate(d.Catalogs, logg))
			r.Get("/resolve", controllers.CarrierResolve(d.Catalogs, logg))
		})

		r.Route("/booking-refs", func(r chi.Router) {
			r.Put("/", controllers.BookingRefUpsert(d.Refs, logg))
			r.Get("/{booking}", controllers.BookingRefLookup(d.Refs, logg))
		})

		r.Get("/audit", controllers.AuditList(d.Audit, logg))
		r.Get("/exports/daily", controllers.ExportDaily(d.Export, logg, loc))
	})

	return r
}
