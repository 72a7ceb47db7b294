// Package events carries the domain-event catalog and the publisher port.
// Delivery is advisory: persisted state is authoritative, and a failed
// dispatch is logged, never rolled back into domain state.
package events

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event kinds.
const (
	SessionCreated   = "session_created"
	SessionStarted   = "session_started"
	SessionCompleted = "session_completed"

	ChildCheckedIn    = "child_checked_in"
	ChildCheckedOut   = "child_checked_out"
	ChildMarkedAbsent = "child_marked_absent"

	BehavioralNoteSubmitted = "behavioral_note_submitted"
	BehavioralNoteApproved  = "behavioral_note_approved"
	BehavioralNoteRejected  = "behavioral_note_rejected"
)

// Event is one domain occurrence. Only the ids relevant to the kind are set.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`

	ActorID   uint `json:"actor_id,omitempty"`
	SessionID uint `json:"session_id,omitempty"`
	ChildID   uint `json:"child_id,omitempty"`
	RecordID  uint `json:"record_id,omitempty"`
	NoteID    uint `json:"note_id,omitempty"`
}

// New stamps a fresh event of the given kind.
func New(kind string) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now(),
	}
}

// Publisher is the outbound bus port. Dispatch is best-effort and must not
// block on delivery confirmation.
type Publisher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// LogPublisher writes events to the process log. It is the default sink
// until a real bus is configured.
type LogPublisher struct{}

func (LogPublisher) Dispatch(_ context.Context, ev Event) error {
	log.Printf("event %s id=%s session=%d child=%d record=%d note=%d actor=%d",
		ev.Kind, ev.ID, ev.SessionID, ev.ChildID, ev.RecordID, ev.NoteID, ev.ActorID)
	return nil
}
