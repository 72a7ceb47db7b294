package services

import (
	"context"
	"fmt"

	"github.com/lojf/kidstrack/internal/models"
	"github.com/lojf/kidstrack/internal/resolver"
	"github.com/lojf/kidstrack/internal/storage"
)

// PlaceholderChildName stands in for children the family subsystem no
// longer knows about (deleted accounts); the roster row itself survives.
const PlaceholderChildName = "Unknown child"

// RosterEntry is one record enriched for display. It is never persisted.
type RosterEntry struct {
	Record models.ParticipationRecord `json:"record"`

	ChildName  string `json:"child_name"`
	HasConsent bool   `json:"has_consent"`

	// nil unless the guardian consented to data sharing.
	Allergies    *string `json:"allergies"`
	MedicalNotes *string `json:"medical_notes"`

	// Approved notes only, and only for consented children.
	Notes []models.BehavioralNote `json:"notes"`
}

// SessionRoster is a session with its enriched participation records.
type SessionRoster struct {
	Session models.ProgramSession `json:"session"`
	Entries []RosterEntry         `json:"entries"`
}

// RosterAggregator composes the read side: session + records + resolved
// child info + approved notes, consent-gated. It never caches.
type RosterAggregator struct {
	sessions   storage.SessionStore
	attendance storage.AttendanceStore
	notes      storage.BehavioralNoteStore
	children   resolver.ChildInfoResolver
}

func NewRosterAggregator(sessions storage.SessionStore, attendance storage.AttendanceStore, notes storage.BehavioralNoteStore, children resolver.ChildInfoResolver) *RosterAggregator {
	return &RosterAggregator{sessions: sessions, attendance: attendance, notes: notes, children: children}
}

// GetSessionWithRoster resolves everything in one round trip per resource
// kind: one records query, one child-info batch, one approved-notes batch
// for the consented children. Children the resolver doesn't know degrade
// to a placeholder name instead of failing the call.
func (a *RosterAggregator) GetSessionWithRoster(ctx context.Context, sessionID uint) (*SessionRoster, error) {
	sess, err := a.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := a.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	childIDs := make([]uint, 0, len(records))
	for _, rec := range records {
		childIDs = append(childIDs, rec.ChildID)
	}
	infos, err := a.children.ResolveChildrenInfo(ctx, childIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve children: %w", err)
	}

	consented := make([]uint, 0, len(infos))
	for id, info := range infos {
		if info.HasConsent {
			consented = append(consented, id)
		}
	}
	notesByChild, err := a.notes.ListApprovedByChildren(ctx, consented)
	if err != nil {
		return nil, fmt.Errorf("list approved notes: %w", err)
	}

	entries := make([]RosterEntry, 0, len(records))
	for _, rec := range records {
		entry := RosterEntry{
			Record:    rec,
			ChildName: PlaceholderChildName,
			Notes:     []models.BehavioralNote{},
		}
		if info, ok := infos[rec.ChildID]; ok {
			entry.ChildName = info.Name
			entry.HasConsent = info.HasConsent
			if info.HasConsent {
				entry.Allergies = info.Allergies
				entry.MedicalNotes = info.MedicalNotes
				if notes, ok := notesByChild[rec.ChildID]; ok {
					entry.Notes = notes
				}
			}
		}
		entries = append(entries, entry)
	}

	return &SessionRoster{Session: *sess, Entries: entries}, nil
}
