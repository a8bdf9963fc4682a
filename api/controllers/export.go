package controllers

import (
	"net/http"
	"time"

	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/api/validators"
	"github.com/frescamar/reefertrack-backend/internal/export"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
)

// ExportDaily serves the SAP dispatch sheet for one reporting day. The
// default JSON shape suits the frontend grid; format=csv streams the file
// the SAP import consumes.
func ExportDaily(svc export.Service, logg *logger.Logger, loc *time.Location) http.HandlerFunc {
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

		rows, err := svc.DailySheet(r.Context(), target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="dispatches-`+target.Format("2006-01-02")+`.csv"`)
			if err := export.WriteCSV(w, rows); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv"))
			}
			return
		}
		responses.WriteSuccess(w, listResponse{Items: rows, Total: int64(len(rows))})
	}
}
