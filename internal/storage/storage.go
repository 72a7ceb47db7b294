// Package storage defines the persistence ports the attendance core depends
// on. The core only ever sees these interfaces; exactly one concrete adapter
// (internal/storage/sqlite) is wired in at startup.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lojf/kidstrack/internal/models"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate indicates a unique-key violation.
var ErrDuplicate = errors.New("duplicate record")

// ErrStale indicates a version-checked update lost to a concurrent writer.
// The caller should re-fetch and retry.
var ErrStale = errors.New("stale version")

// SessionStore persists ProgramSession rows.
type SessionStore interface {
	Create(ctx context.Context, s *models.ProgramSession) error
	GetByID(ctx context.Context, id uint) (*models.ProgramSession, error)
	// Update writes the session conditioned on the version it was fetched
	// at, incrementing it. Returns ErrStale on a lost race.
	Update(ctx context.Context, s *models.ProgramSession) error
	ListByProgram(ctx context.Context, programID uint) ([]models.ProgramSession, error)
	ListTodaySessions(ctx context.Context) ([]models.ProgramSession, error)
	ListByProviderAndDate(ctx context.Context, providerID uint, date time.Time) ([]models.ProgramSession, error)
	GetManyByIDs(ctx context.Context, ids []uint) ([]models.ProgramSession, error)
}

// AttendanceStore persists ParticipationRecord rows.
type AttendanceStore interface {
	Create(ctx context.Context, r *models.ParticipationRecord) error
	GetByID(ctx context.Context, id uint) (*models.ParticipationRecord, error)
	GetByCode(ctx context.Context, code string) (*models.ParticipationRecord, error)
	GetBySessionAndChild(ctx context.Context, sessionID, childID uint) (*models.ParticipationRecord, error)
	GetManyByIDs(ctx context.Context, ids []uint) ([]models.ParticipationRecord, error)
	Update(ctx context.Context, r *models.ParticipationRecord) error
	ListBySession(ctx context.Context, sessionID uint) ([]models.ParticipationRecord, error)
	ListBySessionIDs(ctx context.Context, sessionIDs []uint) ([]models.ParticipationRecord, error)
	ListByChild(ctx context.Context, childID uint) ([]models.ParticipationRecord, error)
	ListByParent(ctx context.Context, parentID uint) ([]models.ParticipationRecord, error)
	// CheckInAtomic is a single native upsert on (session_id, child_id):
	// insert a checked_in record, or overwrite the check-in fields of the
	// existing row. It bypasses optimistic locking and returns the row as
	// persisted.
	CheckInAtomic(ctx context.Context, r *models.ParticipationRecord) (*models.ParticipationRecord, error)
	// SubmitBatch inserts many registered records in one transaction.
	SubmitBatch(ctx context.Context, rs []models.ParticipationRecord) error
}

// BehavioralNoteStore persists BehavioralNote rows.
type BehavioralNoteStore interface {
	Create(ctx context.Context, n *models.BehavioralNote) error
	Update(ctx context.Context, n *models.BehavioralNote) error
	GetByID(ctx context.Context, id uint) (*models.BehavioralNote, error)
	GetByIDAndProvider(ctx context.Context, id, providerID uint) (*models.BehavioralNote, error)
	GetByIDAndParent(ctx context.Context, id, parentID uint) (*models.BehavioralNote, error)
	GetByRecordAndProvider(ctx context.Context, recordID, providerID uint) (*models.BehavioralNote, error)
	ListByRecordsAndProvider(ctx context.Context, recordIDs []uint, providerID uint) ([]models.BehavioralNote, error)
	ListPendingByParent(ctx context.Context, parentID uint) ([]models.BehavioralNote, error)
	ListApprovedByChild(ctx context.Context, childID uint) ([]models.BehavioralNote, error)
	ListApprovedByChildren(ctx context.Context, childIDs []uint) (map[uint][]models.BehavioralNote, error)
	// AnonymizeAllForChild redacts every note for the child in one statement
	// and reports how many rows it touched.
	AnonymizeAllForChild(ctx context.Context, childID uint) (int64, error)
}
