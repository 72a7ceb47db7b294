package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lojf/kidstrack/internal/events"
	"github.com/lojf/kidstrack/internal/models"
	"github.com/lojf/kidstrack/internal/storage"
)

// BehavioralNoteWorkflow owns the moderation state machine:
// pending_approval -> approved (terminal), or pending_approval -> rejected
// -> pending_approval again via revise. GDPR erasure forces rejected.
type BehavioralNoteWorkflow struct {
	notes storage.BehavioralNoteStore
	pub   events.Publisher
}

func NewBehavioralNoteWorkflow(notes storage.BehavioralNoteStore, pub events.Publisher) *BehavioralNoteWorkflow {
	return &BehavioralNoteWorkflow{notes: notes, pub: pub}
}

// validateContent trims and bounds note content.
func validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrBlankContent
	}
	if len([]rune(trimmed)) > models.MaxNoteContentLen {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// Submit attaches a provider observation to a record. The child must have
// actually been present (checked_in or checked_out), and a provider gets at
// most one note per record.
func (w *BehavioralNoteWorkflow) Submit(ctx context.Context, rec *models.ParticipationRecord, providerID uint, content string) (*models.BehavioralNote, error) {
	if !rec.AllowsBehavioralNote() {
		return nil, ErrInvalidRecordStatus
	}
	trimmed, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	note := &models.BehavioralNote{
		ParticipationRecordID: rec.ID,
		ProviderID:            providerID,
		ChildID:               rec.ChildID,
		ParentID:              rec.ParentID,
		Content:               trimmed,
		Status:                models.NotePendingApproval,
		SubmittedAt:           time.Now(),
		Version:               1,
	}
	if err := w.notes.Create(ctx, note); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateNote
		}
		return nil, fmt.Errorf("submit note: %w", err)
	}

	w.publishNote(ctx, events.BehavioralNoteSubmitted, note, providerID)
	return note, nil
}

// Approve makes a pending note visible to the (consenting) parent.
func (w *BehavioralNoteWorkflow) Approve(ctx context.Context, note *models.BehavioralNote, by uint) (*models.BehavioralNote, error) {
	if note.Status != models.NotePendingApproval {
		return nil, ErrInvalidStatusTransition
	}
	now := time.Now()
	note.Status = models.NoteApproved
	note.RejectionReason = nil
	note.ReviewedAt = &now
	if err := w.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	w.publishNote(ctx, events.BehavioralNoteApproved, note, by)
	return note, nil
}

// Reject sends a pending note back to the provider, optionally with a
// reason. A whitespace-only reason is stored as none.
func (w *BehavioralNoteWorkflow) Reject(ctx context.Context, note *models.BehavioralNote, by uint, reason string) (*models.BehavioralNote, error) {
	if note.Status != models.NotePendingApproval {
		return nil, ErrInvalidStatusTransition
	}
	now := time.Now()
	note.Status = models.NoteRejected
	note.ReviewedAt = &now
	note.RejectionReason = nil
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		note.RejectionReason = &trimmed
	}
	if err := w.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	w.publishNote(ctx, events.BehavioralNoteRejected, note, by)
	return note, nil
}

// Review applies a parent decision by name; anything other than approve or
// reject is invalid input, not a state error.
func (w *BehavioralNoteWorkflow) Review(ctx context.Context, note *models.BehavioralNote, by uint, decision, reason string) (*models.BehavioralNote, error) {
	switch decision {
	case "approve":
		return w.Approve(ctx, note, by)
	case "reject":
		return w.Reject(ctx, note, by, reason)
	default:
		return nil, ErrInvalidDecision
	}
}

// Revise resubmits a rejected note with new content. It re-enters
// moderation as if freshly submitted: same validation, fresh submitted_at,
// reason and review stamp cleared, and the same submitted event kind.
func (w *BehavioralNoteWorkflow) Revise(ctx context.Context, note *models.BehavioralNote, newContent string) (*models.BehavioralNote, error) {
	if note.Status != models.NoteRejected {
		return nil, ErrInvalidStatusTransition
	}
	trimmed, err := validateContent(newContent)
	if err != nil {
		return nil, err
	}

	note.Content = trimmed
	note.Status = models.NotePendingApproval
	note.RejectionReason = nil
	note.ReviewedAt = nil
	note.SubmittedAt = time.Now()
	if err := w.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	w.publishNote(ctx, events.BehavioralNoteSubmitted, note, note.ProviderID)
	return note, nil
}

// AnonymizeAllForChild redacts every note for the child (GDPR erasure) and
// returns how many notes the child had. Content-wise it is idempotent:
// re-running rewrites the same redaction but still reports the count.
func (w *BehavioralNoteWorkflow) AnonymizeAllForChild(ctx context.Context, childID uint) (int64, error) {
	return w.notes.AnonymizeAllForChild(ctx, childID)
}

func (w *BehavioralNoteWorkflow) publishNote(ctx context.Context, kind string, note *models.BehavioralNote, actorID uint) {
	ev := events.New(kind)
	ev.NoteID = note.ID
	ev.RecordID = note.ParticipationRecordID
	ev.ChildID = note.ChildID
	ev.ActorID = actorID
	publish(ctx, w.pub, ev)
}
