package models

import (
	"time"

	"gorm.io/gorm"
)

// Parent and Child belong to the family/identity subsystem. The attendance
// core never touches these tables directly; it reads them through the
// resolver adapter only.

type Parent struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string
	Phone string `gorm:"uniqueIndex;not null"` // unique parent identity
	Email string

	// Data-sharing consent gates what the parent's children expose on
	// rosters and whether behavioral notes are visible to the parent.
	DataSharingConsent bool

	Children []Child
}

type Child struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"` // deleted children resolve as not-found

	Name      string
	BirthDate time.Time

	Allergies    string
	MedicalNotes string

	ParentID uint
	Parent   Parent
}

// ProgramSession statuses.
const (
	SessionScheduled  = "scheduled"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
)

// ProgramSession is one scheduled run of a program. Lifecycle:
// scheduled -> in_progress -> completed, or scheduled -> cancelled.
// Completed and cancelled are terminal.
type ProgramSession struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProgramID   uint      `gorm:"not null;uniqueIndex:idx_sessions_program_date_start"`
	SessionDate time.Time `gorm:"not null;uniqueIndex:idx_sessions_program_date_start"`
	StartTime   string    `gorm:"not null;uniqueIndex:idx_sessions_program_date_start"` // "15:04"
	EndTime     string    `gorm:"not null"`                                             // "15:04", must be after StartTime
	Location    string
	MaxCapacity int
	Notes       string
	ProviderID  uint // lead provider, if assigned

	Status string `gorm:"not null;default:scheduled"`

	// Optimistic concurrency token; compared-and-incremented by the store.
	Version int `gorm:"not null;default:1"`
}

// ParticipationRecord statuses.
const (
	RecordRegistered = "registered"
	RecordCheckedIn  = "checked_in"
	RecordCheckedOut = "checked_out"
	RecordAbsent     = "absent"
)

// ParticipationRecord is one child's participation in one session.
// Transitions are monotonic: registered -> checked_in -> checked_out,
// or registered -> absent. Checked_out and absent are terminal.
type ParticipationRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SessionID uint `gorm:"not null;uniqueIndex:idx_records_session_child"`
	ChildID   uint `gorm:"not null;uniqueIndex:idx_records_session_child"`
	ParentID  uint `gorm:"not null"`

	// Provider who registered or first checked in the child.
	ProviderID uint

	Status string `gorm:"not null;default:registered"`

	// Human check-in code, e.g. ATT-1A2B3C4D; feeds the QR scan flow.
	Code string `gorm:"uniqueIndex"`

	CheckInAt    *time.Time
	CheckInBy    uint
	CheckInNotes string

	CheckOutAt    *time.Time
	CheckOutBy    uint
	CheckOutNotes string

	Version int `gorm:"not null;default:1"`
}

// AllowsBehavioralNote reports whether a provider may attach a behavioral
// note to this record: only children who were actually present qualify.
func (r ParticipationRecord) AllowsBehavioralNote() bool {
	return r.Status == RecordCheckedIn || r.Status == RecordCheckedOut
}

// BehavioralNote statuses.
const (
	NotePendingApproval = "pending_approval"
	NoteApproved        = "approved"
	NoteRejected        = "rejected"
)

// MaxNoteContentLen caps behavioral-note content after trimming.
const MaxNoteContentLen = 1000

// AnonymizedNoteContent replaces note content on GDPR erasure.
const AnonymizedNoteContent = "[Removed - account deleted]"

// BehavioralNote is a provider observation about one child in one session,
// moderated before a parent can see it. pending_approval -> approved is
// terminal; pending_approval -> rejected can be revised back to
// pending_approval. Erasure forces rejected with redacted content.
type BehavioralNote struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ParticipationRecordID uint `gorm:"not null;uniqueIndex:idx_notes_record_provider"`
	ProviderID            uint `gorm:"not null;uniqueIndex:idx_notes_record_provider"`

	// Denormalized from the record so parent-facing queries don't join.
	ChildID  uint `gorm:"not null;index"`
	ParentID uint `gorm:"not null;index"`

	Content string `gorm:"not null"` // trimmed, 1..1000 chars
	Status  string `gorm:"not null;default:pending_approval"`

	// Set only on reject; cleared on revise and approve.
	RejectionReason *string

	SubmittedAt time.Time
	ReviewedAt  *time.Time

	Version int `gorm:"not null;default:1"`
}
