package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/api/middleware"
	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/internal/audit"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
)

// AuditList serves the trail newest first. What a caller sees depends on
// their role; the reader hides account-management actions from non-admins.
func AuditList(svc audit.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := audit.Filter{
			Actor: strings.TrimSpace(r.URL.Query().Get("actor")),
			Page:  page,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, parseErr := enums.ParseAuditAction(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown audit action").
						WithDetails(map[string]string{"action": raw}))
				return
			}
			filter.Action = action
		}

		events, total, err := svc.List(r.Context(), filter, middleware.IsAdmin(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]auditEventResponse, 0, len(events))
		for i := range events {
			items = append(items, auditEventResponseFromModel(&events[i]))
		}
		responses.WriteSuccess(w, listResponse{Items: items, Total: total})
	}
}

type auditEventResponse struct {
	ID        uuid.UUID         `json:"id"`
	RecordID  *uuid.UUID        `json:"record_id,omitempty"`
	Action    enums.AuditAction `json:"action"`
	Before    json.RawMessage   `json:"before,omitempty"`
	After     json.RawMessage   `json:"after,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Actor     string            `json:"actor"`
	CreatedAt time.Time         `json:"created_at"`
}

func auditEventResponseFromModel(m *models.AuditEvent) auditEventResponse {
	return auditEventResponse{
		ID:        m.ID,
		RecordID:  m.RecordID,
		Action:    m.Action,
		Before:    m.Before,
		After:     m.After,
		Reason:    m.Reason,
		Actor:     m.Actor,
		CreatedAt: m.CreatedAt,
	}
}
