package enums

import "fmt"

// CodeType identifies a business code tracked by the uniqueness ledger.
type CodeType string

const (
	CodeTypeOrder        CodeType = "ORDER"
	CodeTypeBooking      CodeType = "BOOKING"
	CodeTypeContainer    CodeType = "CONTAINER"
	CodeTypeThermograph  CodeType = "THERMOGRAPH"
	CodeTypeSealBeta     CodeType = "SEAL_BETA"
	CodeTypeSealCustoms  CodeType = "SEAL_CUSTOMS"
	CodeTypeSealOperator CodeType = "SEAL_OPERATOR"
	CodeTypeSenasaLine   CodeType = "SENASA_LINE"
)

var validCodeTypes = []CodeType{
	CodeTypeOrder,
	CodeTypeBooking,
	CodeTypeContainer,
	CodeTypeThermograph,
	CodeTypeSealBeta,
	CodeTypeSealCustoms,
	CodeTypeSealOperator,
	CodeTypeSenasaLine,
}

// String implements fmt.Stringer.
func (c CodeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CodeType.
func (c CodeType) IsValid() bool {
	for _, candidate := range validCodeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// Transient reports whether entries of this type lock only for the travel
// window instead of permanently. Containers return to the pool once the
// round trip completes; every other code is single-use.
func (c CodeType) Transient() bool {
	return c == CodeTypeContainer
}

// ParseCodeType converts raw input into a CodeType.
func ParseCodeType(value string) (CodeType, error) {
	for _, candidate := range validCodeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid code type %q", value)
}
