package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/enums"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

const auditSchema = `CREATE TABLE audit_events (
	id TEXT PRIMARY KEY,
	record_id TEXT,
	action TEXT NOT NULL,
	before TEXT,
	after TEXT,
	reason TEXT NOT NULL DEFAULT '',
	actor TEXT NOT NULL DEFAULT '',
	created_at DATETIME
)`

func newAuditService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(auditSchema).Error)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestWriteAndList(t *testing.T) {
	svc, conn := newAuditService(t)
	ctx := context.Background()

	recordID := uuid.New()
	require.NoError(t, svc.Write(ctx, conn, Entry{
		RecordID: &recordID,
		Action:   enums.AuditActionRecordCreate,
		After:    json.RawMessage(`{"booking":"BK-1"}`),
		Actor:    "mrodriguez",
	}))
	require.NoError(t, svc.Write(ctx, conn, Entry{
		RecordID: &recordID,
		Action:   enums.AuditActionRecordVoid,
		Reason:   "duplicate dispatch",
		Actor:    "jperez",
	}))

	events, total, err := svc.List(ctx, Filter{}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, enums.AuditActionRecordVoid, events[0].Action)

	events, total, err = svc.List(ctx, Filter{Actor: "mrodriguez"}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, enums.AuditActionRecordCreate, events[0].Action)
}

func TestWriteRejectsUnknownAction(t *testing.T) {
	svc, conn := newAuditService(t)
	err := svc.Write(context.Background(), conn, Entry{Action: "WHATEVER"})
	require.Error(t, err)
}

func TestListHidesUserManagementFromNonAdmins(t *testing.T) {
	svc, conn := newAuditService(t)
	ctx := context.Background()

	require.NoError(t, svc.Write(ctx, conn, Entry{Action: enums.AuditActionRecordProcess, Actor: "ops"}))
	require.NoError(t, svc.Write(ctx, conn, Entry{Action: enums.AuditActionUserDisable, Actor: "admin"}))

	events, total, err := svc.List(ctx, Filter{}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, enums.AuditActionRecordProcess, events[0].Action)

	// Asking for a hidden action directly returns nothing rather than leaking.
	events, total, err = svc.List(ctx, Filter{Action: enums.AuditActionUserDisable}, false)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, events)

	events, total, err = svc.List(ctx, Filter{}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, events, 2)
}

func TestListPagination(t *testing.T) {
	svc, conn := newAuditService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Write(ctx, conn, Entry{Action: enums.AuditActionRecordEdit, Actor: "ops"}))
	}

	events, total, err := svc.List(ctx, Filter{Page: pagination.Params{Limit: 2, Offset: 2}}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, events, 2)
}
