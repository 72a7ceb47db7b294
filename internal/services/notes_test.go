package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lojf/kidstrack/internal/models"
)

// seedCheckedInRecord gets a child checked in so notes are allowed.
func seedCheckedInRecord(t *testing.T, env *testEnv) *models.ParticipationRecord {
	t.Helper()
	child := env.seedFamily(t, "Ana", "+6281100000001", true)
	sess := env.seedSession(t, 1, "2025-06-01", "09:00", "10:00")
	rec, err := env.ledger.CheckInAtomic(context.Background(), sess.ID, child, 7, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	return rec
}

func TestSubmitNote_RequiresPresence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.seedFamily(t, "Ana", "+6281100000001", true)
	sess := env.seedSession(t, 1, "2025-06-01", "09:00", "10:00")

	reg, err := env.ledger.Register(ctx, sess.ID, child, 7)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.workflow.Submit(ctx, reg, 7, "never showed up"); !errors.Is(err, ErrInvalidRecordStatus) {
		t.Fatalf("note on registered record: want ErrInvalidRecordStatus, got %v", err)
	}
}

func TestSubmitNote_ContentBoundaries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := seedCheckedInRecord(t, env)

	if _, err := env.workflow.Submit(ctx, rec, 7, "   \t\n  "); !errors.Is(err, ErrBlankContent) {
		t.Errorf("whitespace content: want ErrBlankContent, got %v", err)
	}
	if _, err := env.workflow.Submit(ctx, rec, 7, strings.Repeat("x", 1001)); !errors.Is(err, ErrContentTooLong) {
		t.Errorf("1001 chars: want ErrContentTooLong, got %v", err)
	}

	// Exactly 1000 characters is accepted, and surrounding whitespace is
	// trimmed before the length check.
	note, err := env.workflow.Submit(ctx, rec, 7, "  "+strings.Repeat("x", 1000)+"  ")
	if err != nil {
		t.Fatalf("1000 chars: %v", err)
	}
	if len(note.Content) != 1000 {
		t.Errorf("stored content length: want 1000, got %d", len(note.Content))
	}
	if note.Status != models.NotePendingApproval {
		t.Errorf("status: want pending_approval, got %s", note.Status)
	}
	if note.ParentID != rec.ParentID {
		t.Errorf("parent not copied from record: %d vs %d", note.ParentID, rec.ParentID)
	}
}

func TestSubmitNote_DuplicateProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := seedCheckedInRecord(t, env)

	if _, err := env.workflow.Submit(ctx, rec, 7, "Did great"); err != nil {
		t.Fatalf("first note: %v", err)
	}
	if _, err := env.workflow.Submit(ctx, rec, 7, "Did great again"); !errors.Is(err, ErrDuplicateNote) {
		t.Fatalf("second note same provider: want ErrDuplicateNote, got %v", err)
	}
	// A different provider may still add their own note.
	if _, err := env.workflow.Submit(ctx, rec, 8, "Shared well"); err != nil {
		t.Fatalf("note from other provider: %v", err)
	}
}

// TestNoteModeration_RoundTrip: submit -> reject(reason) ->
// revise(new content) lands back in pending_approval with the reason gone.
func TestNoteModeration_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := seedCheckedInRecord(t, env)

	note, err := env.workflow.Submit(ctx, rec, 7, "Did great")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if note.Status != models.NotePendingApproval {
		t.Fatalf("after submit: want pending_approval, got %s", note.Status)
	}

	rejected, err := env.workflow.Reject(ctx, note, rec.ParentID, "inaccurate")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.NoteRejected {
		t.Fatalf("after reject: want rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "inaccurate" {
		t.Fatalf("rejection reason: want inaccurate, got %v", rejected.RejectionReason)
	}
	if rejected.ReviewedAt == nil {
		t.Fatal("reviewed_at not stamped on reject")
	}

	revised, err := env.workflow.Revise(ctx, rejected, "Did great today")
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if revised.Status != models.NotePendingApproval {
		t.Errorf("after revise: want pending_approval, got %s", revised.Status)
	}
	if revised.Content != "Did great today" {
		t.Errorf("content: want revised text, got %q", revised.Content)
	}
	if revised.RejectionReason != nil {
		t.Errorf("rejection reason not cleared: %v", *revised.RejectionReason)
	}
	if revised.ReviewedAt != nil {
		t.Errorf("reviewed_at not cleared on revise")
	}

	// Resubmission reuses the submitted event kind; no distinct kind exists.
	if n := env.pub.count("behavioral_note_submitted"); n != 2 {
		t.Errorf("behavioral_note_submitted events: want 2, got %d", n)
	}
	if n := env.pub.count("behavioral_note_rejected"); n != 1 {
		t.Errorf("behavioral_note_rejected events: want 1, got %d", n)
	}
}

func TestApprove_Terminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := seedCheckedInRecord(t, env)

	note, err := env.workflow.Submit(ctx, rec, 7, "Helped tidy up")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved, err := env.workflow.Approve(ctx, note, rec.ParentID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.NoteApproved || approved.ReviewedAt == nil {
		t.Fatalf("approve result: status=%s reviewed=%v", approved.Status, approved.ReviewedAt)
	}

	if _, err := env.workflow.Approve(ctx, approved, rec.ParentID); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("re-approve: want ErrInvalidStatusTransition, got %v", err)
	}
	if _, err := env.workflow.Reject(ctx, approved, rec.ParentID, "no"); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("reject approved: want ErrInvalidStatusTransition, got %v", err)
	}
	if _, err := env.workflow.Revise(ctx, approved, "new"); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("revise approved: want ErrInvalidStatusTransition, got %v", err)
	}
}

func TestReview_InvalidDecision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := seedCheckedInRecord(t, env)

	note, err := env.workflow.Submit(ctx, rec, 7, "Did great")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.workflow.Review(ctx, note, rec.ParentID, "maybe", ""); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("want ErrInvalidDecision, got %v", err)
	}
}

func TestReject_WhitespaceReasonStoredAsNil(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := seedCheckedInRecord(t, env)

	note, err := env.workflow.Submit(ctx, rec, 7, "Did great")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rejected, err := env.workflow.Reject(ctx, note, rec.ParentID, "   ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.RejectionReason != nil {
		t.Errorf("whitespace reason should be nil, got %q", *rejected.RejectionReason)
	}
}

// TestAnonymizeAllForChild: both notes redacted, forced to a non-revisable
// rejected state, count reported; re-running reports the same count.
func TestAnonymizeAllForChild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.seedFamily(t, "Ana", "+6281100000001", true)
	sess1 := env.seedSession(t, 1, "2025-06-01", "09:00", "10:00")
	sess2 := env.seedSession(t, 1, "2025-06-08", "09:00", "10:00")

	rec1, err := env.ledger.CheckInAtomic(ctx, sess1.ID, child, 7, "")
	if err != nil {
		t.Fatalf("check in 1: %v", err)
	}
	rec2, err := env.ledger.CheckInAtomic(ctx, sess2.ID, child, 7, "")
	if err != nil {
		t.Fatalf("check in 2: %v", err)
	}

	n1, err := env.workflow.Submit(ctx, rec1, 7, "Week one")
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if _, err := env.workflow.Approve(ctx, n1, rec1.ParentID); err != nil {
		t.Fatalf("approve 1: %v", err)
	}
	if _, err := env.workflow.Submit(ctx, rec2, 7, "Week two"); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	count, err := env.workflow.AnonymizeAllForChild(ctx, child)
	if err != nil {
		t.Fatalf("anonymize: %v", err)
	}
	if count != 2 {
		t.Fatalf("count: want 2, got %d", count)
	}

	var notes []models.BehavioralNote
	if err := env.db.Where("child_id = ?", child).Find(&notes).Error; err != nil {
		t.Fatalf("reload notes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("want 2 notes, got %d", len(notes))
	}
	for _, n := range notes {
		if n.Content != models.AnonymizedNoteContent {
			t.Errorf("note %d content: %q", n.ID, n.Content)
		}
		if n.Status != models.NoteRejected {
			t.Errorf("note %d status: want rejected, got %s", n.ID, n.Status)
		}
		if n.RejectionReason != nil {
			t.Errorf("note %d reason should be nil, got %q", n.ID, *n.RejectionReason)
		}
	}

	// Idempotent for content; count still reports the rows present.
	again, err := env.workflow.AnonymizeAllForChild(ctx, child)
	if err != nil {
		t.Fatalf("anonymize again: %v", err)
	}
	if again != 2 {
		t.Errorf("re-run count: want 2, got %d", again)
	}

	// No child at all: zero, no error.
	zero, err := env.workflow.AnonymizeAllForChild(ctx, 98765)
	if err != nil || zero != 0 {
		t.Errorf("unknown child: want (0, nil), got (%d, %v)", zero, err)
	}
}
