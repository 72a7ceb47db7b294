package services

import "errors"

// Validation errors: surfaced immediately, never retried.
var (
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrBlankContent     = errors.New("note content is blank")
	ErrContentTooLong   = errors.New("note content exceeds 1000 characters")
	ErrInvalidDecision  = errors.New("decision must be approve or reject")
)

// State errors: a precondition the caller must resolve before retrying.
var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidRecordStatus     = errors.New("record status does not allow this operation")
)

// Uniqueness violations.
var (
	ErrDuplicateSession    = errors.New("a session with this program, date and start time already exists")
	ErrDuplicateAttendance = errors.New("child is already registered for this session")
	ErrDuplicateNote       = errors.New("provider already has a note on this record")
)
