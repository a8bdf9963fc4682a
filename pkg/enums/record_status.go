package enums

import "fmt"

// RecordStatus tracks the lifecycle of a dispatch record.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusProcessed RecordStatus = "processed"
	RecordStatusVoided    RecordStatus = "voided"

	// RecordStatusClosed survives in rows written by the previous system.
	// New writes never produce it; every guard treats it like processed.
	RecordStatusClosed RecordStatus = "closed"
)

var validRecordStatuses = []RecordStatus{
	RecordStatusPending,
	RecordStatusProcessed,
	RecordStatusVoided,
	RecordStatusClosed,
}

// String implements fmt.Stringer.
func (r RecordStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecordStatus.
func (r RecordStatus) IsValid() bool {
	for _, candidate := range validRecordStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsProcessedLike reports whether the record counts as processed, folding the
// legacy closed status into the check.
func (r RecordStatus) IsProcessedLike() bool {
	return r == RecordStatusProcessed || r == RecordStatusClosed
}

// ParseRecordStatus converts raw input into a RecordStatus.
func ParseRecordStatus(value string) (RecordStatus, error) {
	for _, candidate := range validRecordStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid record status %q", value)
}
