package enums

import "testing"

func TestCodeTypeTransient(t *testing.T) {
	if !CodeTypeContainer.Transient() {
		t.Fatal("container codes must be transient")
	}
	for _, ct := range []CodeType{
		CodeTypeOrder, CodeTypeBooking, CodeTypeThermograph,
		CodeTypeSealBeta, CodeTypeSealCustoms, CodeTypeSealOperator,
		CodeTypeSenasaLine,
	} {
		if ct.Transient() {
			t.Fatalf("%s must be historic", ct)
		}
	}
}

func TestParseCodeType(t *testing.T) {
	got, err := ParseCodeType("BOOKING")
	if err != nil || got != CodeTypeBooking {
		t.Fatalf("expected BOOKING, got %v (%v)", got, err)
	}
	if _, err := ParseCodeType("AWB"); err == nil {
		t.Fatal("unknown code type must not parse")
	}
}

func TestRecordStatusProcessedLike(t *testing.T) {
	if !RecordStatusProcessed.IsProcessedLike() {
		t.Fatal("processed must be processed-like")
	}
	if !RecordStatusClosed.IsProcessedLike() {
		t.Fatal("legacy closed must be processed-like")
	}
	if RecordStatusPending.IsProcessedLike() || RecordStatusVoided.IsProcessedLike() {
		t.Fatal("pending/voided are not processed-like")
	}
}

func TestAuditActionUserManagement(t *testing.T) {
	if !AuditActionUserDisable.IsUserManagement() {
		t.Fatal("USER_DISABLE is a user-management action")
	}
	if AuditActionRecordVoid.IsUserManagement() {
		t.Fatal("RECORD_VOID is not a user-management action")
	}
}
