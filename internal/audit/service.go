package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// Entry is one trail write. Before/After carry JSON snapshots of the touched
// row; either may be nil.
type Entry struct {
	RecordID *uuid.UUID
	Action   enums.AuditAction
	Before   json.RawMessage
	After    json.RawMessage
	Reason   string
	Actor    string
}

// Sink appends trail entries. Write runs on the caller's transaction handle
// so the event commits or rolls back with the mutation it describes.
type Sink interface {
	Write(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Reader serves the audit trail API.
type Reader interface {
	List(ctx context.Context, filter Filter, admin bool) ([]models.AuditEvent, int64, error)
}

// Service is both the sink and the reader over one repository.
type Service interface {
	Sink
	Reader
}

type service struct {
	repo Repository
}

// NewService wires the audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Write(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid audit action %q", entry.Action)
	}
	event := &models.AuditEvent{
		ID:       uuid.New(),
		RecordID: entry.RecordID,
		Action:   entry.Action,
		Before:   entry.Before,
		After:    entry.After,
		Reason:   entry.Reason,
		Actor:    entry.Actor,
	}
	return s.repo.WithTx(tx).Create(ctx, event)
}

// List returns trail entries newest first. Non-admin callers never see the
// account-management family of actions.
func (s *service) List(ctx context.Context, filter Filter, admin bool) ([]models.AuditEvent, int64, error) {
	if filter.Action != "" && !filter.Action.IsValid() {
		return nil, 0, fmt.Errorf("invalid audit action %q", filter.Action)
	}
	if !admin {
		if filter.Action.IsUserManagement() {
			return nil, 0, nil
		}
		filter.HideUserManagement = true
	}
	return s.repo.List(ctx, filter)
}
