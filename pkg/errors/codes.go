package errors

// ErrorCode is the typed identifier for a failure category.  Codes are
// stable strings so they can be emitted as metric labels and matched by
// operational alerting without parsing error messages.
type ErrorCode string

// ─────────────────────────────────────────────────────────────────────────────
// Common codes (COMMON_*)
// ─────────────────────────────────────────────────────────────────────────────

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeDatabaseError      ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_009"
	ErrCodeInvalidState       ErrorCode = "COMMON_010"
)

// ─────────────────────────────────────────────────────────────────────────────
// Schedule / recurrence codes (SCHED_*)
// ─────────────────────────────────────────────────────────────────────────────

const (
	// ErrCodeFrequencyUnsupported: the frequency enum value has no recurrence
	// semantics (None, OneTime) or is unknown.
	ErrCodeFrequencyUnsupported ErrorCode = "SCHED_001"

	// ErrCodeFrequencyConfigMissing: a required configuration field for the
	// frequency class is absent (e.g. quarterly without a day-of-month).
	ErrCodeFrequencyConfigMissing ErrorCode = "SCHED_002"

	// ErrCodeFrequencyConfigInvalid: a configuration field is present but out
	// of range (day 32, hour interval 0, unknown month).
	ErrCodeFrequencyConfigInvalid ErrorCode = "SCHED_003"

	// ErrCodePeriodMalformed: a period identifier string does not parse under
	// the shape its frequency class defines.
	ErrCodePeriodMalformed ErrorCode = "SCHED_004"
)

// ─────────────────────────────────────────────────────────────────────────────
// Timeline / work-record codes (TLN_*)
// ─────────────────────────────────────────────────────────────────────────────

const (
	// ErrCodeRecordExists: an insert hit the identity-tuple uniqueness
	// constraint.  Callers treat this as "already present", not a failure.
	ErrCodeRecordExists ErrorCode = "TLN_001"

	// ErrCodeLegacyIndexConflict: an insert was rejected by the old
	// jurisdiction-less unique index.  This signals that the index migration
	// has not been applied, not that the data is duplicated.
	ErrCodeLegacyIndexConflict ErrorCode = "TLN_002"

	// ErrCodeRecordNotFound: a work record lookup matched nothing.
	ErrCodeRecordNotFound ErrorCode = "TLN_003"

	// ErrCodeAssignmentSkipped: an obligation assignment was excluded from a
	// generation pass because its configuration could not be resolved.
	ErrCodeAssignmentSkipped ErrorCode = "TLN_004"
)
