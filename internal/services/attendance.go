package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lojf/kidstrack/internal/events"
	"github.com/lojf/kidstrack/internal/models"
	"github.com/lojf/kidstrack/internal/resolver"
	"github.com/lojf/kidstrack/internal/storage"
)

// AttendanceLedger owns ParticipationRecord transitions and the atomic
// first-check-in path.
type AttendanceLedger struct {
	store    storage.AttendanceStore
	children resolver.ChildInfoResolver
	pub      events.Publisher
}

func NewAttendanceLedger(store storage.AttendanceStore, children resolver.ChildInfoResolver, pub events.Publisher) *AttendanceLedger {
	return &AttendanceLedger{store: store, children: children, pub: pub}
}

// generateCheckInCode returns a short scannable code, e.g. ATT-1A2B3C4D.
func generateCheckInCode() string {
	return fmt.Sprintf("ATT-%08X", uuid.New().ID())
}

// resolveParentID maps a child to its guardian; a missing child is a
// not-found for the caller.
func (l *AttendanceLedger) resolveParentID(ctx context.Context, childID uint) (uint, error) {
	infos, err := l.children.ResolveChildrenInfo(ctx, []uint{childID})
	if err != nil {
		return 0, err
	}
	info, ok := infos[childID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return info.ParentID, nil
}

// Register creates a registered record for the child in the session.
func (l *AttendanceLedger) Register(ctx context.Context, sessionID, childID, providerID uint) (*models.ParticipationRecord, error) {
	parentID, err := l.resolveParentID(ctx, childID)
	if err != nil {
		return nil, err
	}
	rec := &models.ParticipationRecord{
		SessionID:  sessionID,
		ChildID:    childID,
		ParentID:   parentID,
		ProviderID: providerID,
		Status:     models.RecordRegistered,
		Code:       generateCheckInCode(),
		Version:    1,
	}
	if err := l.store.Create(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateAttendance
		}
		return nil, fmt.Errorf("register child %d: %w", childID, err)
	}
	return rec, nil
}

// RegisterBatch registers many children at once in one store transaction.
func (l *AttendanceLedger) RegisterBatch(ctx context.Context, sessionID uint, childIDs []uint, providerID uint) ([]models.ParticipationRecord, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}
	infos, err := l.children.ResolveChildrenInfo(ctx, childIDs)
	if err != nil {
		return nil, err
	}

	recs := make([]models.ParticipationRecord, 0, len(childIDs))
	for _, childID := range childIDs {
		info, ok := infos[childID]
		if !ok {
			return nil, fmt.Errorf("child %d: %w", childID, storage.ErrNotFound)
		}
		recs = append(recs, models.ParticipationRecord{
			SessionID:  sessionID,
			ChildID:    childID,
			ParentID:   info.ParentID,
			ProviderID: providerID,
			Status:     models.RecordRegistered,
			Code:       generateCheckInCode(),
			Version:    1,
		})
	}
	if err := l.store.SubmitBatch(ctx, recs); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateAttendance
		}
		return nil, err
	}
	return recs, nil
}

// CheckInAtomic is the walk-up path: one native upsert keyed on
// (session_id, child_id), so simultaneous first check-ins collapse into a
// single row. Repeating the call just refreshes the check-in fields.
func (l *AttendanceLedger) CheckInAtomic(ctx context.Context, sessionID, childID, providerID uint, notes string) (*models.ParticipationRecord, error) {
	parentID, err := l.resolveParentID(ctx, childID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &models.ParticipationRecord{
		SessionID:    sessionID,
		ChildID:      childID,
		ParentID:     parentID,
		ProviderID:   providerID,
		Status:       models.RecordCheckedIn,
		Code:         generateCheckInCode(),
		CheckInAt:    &now,
		CheckInBy:    providerID,
		CheckInNotes: notes,
		Version:      1,
	}
	persisted, err := l.store.CheckInAtomic(ctx, rec)
	if err != nil {
		return nil, err
	}

	ev := events.New(events.ChildCheckedIn)
	ev.SessionID = persisted.SessionID
	ev.ChildID = persisted.ChildID
	ev.RecordID = persisted.ID
	ev.ActorID = providerID
	publish(ctx, l.pub, ev)

	return persisted, nil
}

// CheckIn is the explicit registered -> checked_in transition.
func (l *AttendanceLedger) CheckIn(ctx context.Context, rec *models.ParticipationRecord, by uint, notes string) (*models.ParticipationRecord, error) {
	if rec.Status != models.RecordRegistered {
		return nil, ErrInvalidStatusTransition
	}
	now := time.Now()
	rec.Status = models.RecordCheckedIn
	rec.CheckInAt = &now
	rec.CheckInBy = by
	rec.CheckInNotes = notes
	if err := l.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	ev := events.New(events.ChildCheckedIn)
	ev.SessionID = rec.SessionID
	ev.ChildID = rec.ChildID
	ev.RecordID = rec.ID
	ev.ActorID = by
	publish(ctx, l.pub, ev)

	return rec, nil
}

// CheckOut is valid only from checked_in.
func (l *AttendanceLedger) CheckOut(ctx context.Context, rec *models.ParticipationRecord, by uint, notes string) (*models.ParticipationRecord, error) {
	if rec.Status != models.RecordCheckedIn {
		return nil, ErrInvalidStatusTransition
	}
	now := time.Now()
	rec.Status = models.RecordCheckedOut
	rec.CheckOutAt = &now
	rec.CheckOutBy = by
	rec.CheckOutNotes = notes
	if err := l.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	ev := events.New(events.ChildCheckedOut)
	ev.SessionID = rec.SessionID
	ev.ChildID = rec.ChildID
	ev.RecordID = rec.ID
	ev.ActorID = by
	publish(ctx, l.pub, ev)

	return rec, nil
}

// MarkAbsent is valid only from registered.
func (l *AttendanceLedger) MarkAbsent(ctx context.Context, rec *models.ParticipationRecord, by uint) (*models.ParticipationRecord, error) {
	if rec.Status != models.RecordRegistered {
		return nil, ErrInvalidStatusTransition
	}
	rec.Status = models.RecordAbsent
	if err := l.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	ev := events.New(events.ChildMarkedAbsent)
	ev.SessionID = rec.SessionID
	ev.ChildID = rec.ChildID
	ev.RecordID = rec.ID
	ev.ActorID = by
	publish(ctx, l.pub, ev)

	return rec, nil
}

// BulkCheckInResult reports a batch outcome; the batch itself never aborts
// on one bad record.
type BulkCheckInResult struct {
	Successful []models.ParticipationRecord `json:"successful"`
	Failed     []BulkCheckInFailure         `json:"failed"`
}

type BulkCheckInFailure struct {
	RecordID uint   `json:"record_id"`
	Reason   string `json:"reason"`
}

// BulkCheckIn attempts each record independently and reports per-item
// outcomes. One event is published per success (inside CheckIn).
func (l *AttendanceLedger) BulkCheckIn(ctx context.Context, recordIDs []uint, by uint, notes string) BulkCheckInResult {
	var out BulkCheckInResult
	for _, id := range recordIDs {
		rec, err := l.store.GetByID(ctx, id)
		if err != nil {
			out.Failed = append(out.Failed, BulkCheckInFailure{RecordID: id, Reason: failureReason(err)})
			continue
		}
		updated, err := l.CheckIn(ctx, rec, by, notes)
		if err != nil {
			out.Failed = append(out.Failed, BulkCheckInFailure{RecordID: id, Reason: failureReason(err)})
			continue
		}
		out.Successful = append(out.Successful, *updated)
	}
	return out
}

// failureReason flattens an error into the stable per-item reason strings
// batch callers switch on.
func failureReason(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrStale):
		return "stale_data"
	case errors.Is(err, ErrInvalidStatusTransition):
		return "invalid_status_transition"
	default:
		return "error"
	}
}
