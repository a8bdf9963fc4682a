package uniqueness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

var ledgerSchema = []string{
	`CREATE TABLE ledger_entries (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		owner_ref TEXT NOT NULL,
		origin TEXT NOT NULL DEFAULT '',
		set_by TEXT NOT NULL DEFAULT '',
		locked BOOLEAN NOT NULL DEFAULT 0,
		locked_since DATETIME,
		released_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_ledger_entries_historic
		ON ledger_entries (type, value) WHERE type <> 'CONTAINER'`,
	`CREATE UNIQUE INDEX idx_ledger_entries_container_locked
		ON ledger_entries (type, value) WHERE type = 'CONTAINER' AND locked`,
}

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	for _, stmt := range ledgerSchema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newLedgerService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newLedgerDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestValidateReportsHistoricConflicts(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef: "REG-a",
		Actor:    "mrodriguez",
		Candidates: []Candidate{
			{Type: enums.CodeTypeBooking, Value: "bk-100"},
			{Type: enums.CodeTypeSealBeta, Value: "pb-1"},
		},
	}))

	conflicts, err := svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeBooking, Value: " bk-100 "},
		{Type: enums.CodeTypeSealBeta, Value: "pb-2"},
	}, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, enums.CodeTypeBooking, conflicts[0].Type)
	assert.Equal(t, "BK-100", conflicts[0].Value)
	assert.Equal(t, "REG-a", conflicts[0].OwnerRef)
	assert.Equal(t, ReasonCodeInUse, conflicts[0].Reason)
}

func TestValidateExcludesOwner(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-a",
		Candidates: []Candidate{{Type: enums.CodeTypeOrder, Value: "ord-1"}},
	}))

	conflicts, err := svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeOrder, Value: "ORD-1"},
	}, "REG-a")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestValidateSkipsWildcardsAndBlanks(t *testing.T) {
	svc, conn := newLedgerService(t)

	conflicts, err := svc.Validate(context.Background(), conn, []Candidate{
		{Type: enums.CodeTypeBooking, Value: "*"},
		{Type: enums.CodeTypeSealBeta, Value: "   "},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestContainerLockWindow(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-a",
		Lock:       true,
		Candidates: []Candidate{{Type: enums.CodeTypeContainer, Value: "MSKU1"}},
	}))

	conflicts, err := svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeContainer, Value: "msku1"},
	}, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ReasonContainerInTrip, conflicts[0].Reason)

	// Age the lock past the travel window; it must stop blocking.
	expired := time.Now().AddDate(0, 0, -(TravelWindowDays + 1))
	require.NoError(t, conn.Model(&models.LedgerEntry{}).
		Where("owner_ref = ?", "REG-a").
		Update("locked_since", expired).Error)

	conflicts, err = svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeContainer, Value: "MSKU1"},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestClaimReleasesExpiredContainerLocks(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-a",
		Lock:       true,
		Candidates: []Candidate{{Type: enums.CodeTypeContainer, Value: "MSKU1"}},
	}))
	expired := time.Now().AddDate(0, 0, -(TravelWindowDays + 1))
	require.NoError(t, conn.Model(&models.LedgerEntry{}).
		Where("owner_ref = ?", "REG-a").
		Update("locked_since", expired).Error)

	// A new dispatch can take the container again even though the stale row
	// still holds the partial index slot.
	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-b",
		Lock:       true,
		Candidates: []Candidate{{Type: enums.CodeTypeContainer, Value: "MSKU1"}},
	}))

	old, err := svc.EntriesByOwner(ctx, "REG-a")
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.False(t, old[0].Locked)
	assert.NotNil(t, old[0].ReleasedAt)

	fresh, err := svc.EntriesByOwner(ctx, "REG-b")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.True(t, fresh[0].Locked)
}

func TestClaimReplacesPreviousEntries(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef: "REG-a",
		Candidates: []Candidate{
			{Type: enums.CodeTypeBooking, Value: "BK-1"},
			{Type: enums.CodeTypeThermograph, Value: "T-1"},
		},
	}))
	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef: "REG-a",
		Candidates: []Candidate{
			{Type: enums.CodeTypeBooking, Value: "BK-2"},
		},
	}))

	entries, err := svc.EntriesByOwner(ctx, "REG-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BK-2", entries[0].Value)

	// The old thermograph is free again.
	conflicts, err := svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeThermograph, Value: "T-1"},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestClaimUnlockedContainerDoesNotBlock(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	// Edits of already-processed records re-claim container codes unlocked.
	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-a",
		Lock:       false,
		Candidates: []Candidate{{Type: enums.CodeTypeContainer, Value: "MSKU9"}},
	}))

	conflicts, err := svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeContainer, Value: "MSKU9"},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestClaimSurfacesStorageRace(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-a",
		Candidates: []Candidate{{Type: enums.CodeTypeBooking, Value: "BK-1"}},
	}))

	err := svc.Claim(ctx, conn, ClaimInput{
		OwnerRef:   "REG-b",
		Candidates: []Candidate{{Type: enums.CodeTypeBooking, Value: "BK-1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageRace))
}

func TestReleaseByOwner(t *testing.T) {
	svc, conn := newLedgerService(t)
	ctx := context.Background()

	require.NoError(t, svc.Claim(ctx, conn, ClaimInput{
		OwnerRef: "REG-a",
		Lock:     true,
		Candidates: []Candidate{
			{Type: enums.CodeTypeContainer, Value: "MSKU1"},
			{Type: enums.CodeTypeBooking, Value: "BK-1"},
		},
	}))

	require.NoError(t, svc.Release(ctx, conn, "REG-a", []enums.CodeType{enums.CodeTypeContainer}))

	entries, err := svc.EntriesByOwner(ctx, "REG-a")
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, entry.Locked, "type %s", entry.Type)
	}

	// Historic claims survive a release untouched.
	conflicts, err := svc.Validate(ctx, conn, []Candidate{
		{Type: enums.CodeTypeBooking, Value: "BK-1"},
	}, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
}
