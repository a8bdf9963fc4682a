package enums

import (
	"fmt"
	"strings"
)

// AuditAction labels an entry in the audit trail.
type AuditAction string

const (
	AuditActionRecordCreate  AuditAction = "RECORD_CREATE"
	AuditActionRecordEdit    AuditAction = "RECORD_EDIT"
	AuditActionRecordProcess AuditAction = "RECORD_PROCESS"
	AuditActionRecordVoid    AuditAction = "RECORD_VOID"
	AuditActionVehicleCreate AuditAction = "VEHICLE_CREATE"
	AuditActionDriverCreate  AuditAction = "DRIVER_CREATE"
	AuditActionCarrierCreate AuditAction = "CARRIER_CREATE"
	AuditActionCarrierAssign AuditAction = "CARRIER_ASSIGN"

	// User-management actions are written by the identity service into the
	// same trail; they are hidden from non-admin readers.
	AuditActionUserCreate  AuditAction = "USER_CREATE"
	AuditActionUserUpdate  AuditAction = "USER_UPDATE"
	AuditActionUserDisable AuditAction = "USER_DISABLE"
)

var validAuditActions = []AuditAction{
	AuditActionRecordCreate,
	AuditActionRecordEdit,
	AuditActionRecordProcess,
	AuditActionRecordVoid,
	AuditActionVehicleCreate,
	AuditActionDriverCreate,
	AuditActionCarrierCreate,
	AuditActionCarrierAssign,
	AuditActionUserCreate,
	AuditActionUserUpdate,
	AuditActionUserDisable,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsUserManagement reports whether the action belongs to the account
// management family hidden from non-admin audit readers.
func (a AuditAction) IsUserManagement() bool {
	return strings.HasPrefix(string(a), "USER_")
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
