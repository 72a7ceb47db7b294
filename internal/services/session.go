package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lojf/kidstrack/internal/events"
	"github.com/lojf/kidstrack/internal/models"
	"github.com/lojf/kidstrack/internal/storage"
)

// SessionLifecycle owns ProgramSession state transitions:
// scheduled -> in_progress -> completed, or scheduled -> cancelled.
type SessionLifecycle struct {
	sessions storage.SessionStore
	ledger   *AttendanceLedger
	pub      events.Publisher
}

func NewSessionLifecycle(sessions storage.SessionStore, ledger *AttendanceLedger, pub events.Publisher) *SessionLifecycle {
	return &SessionLifecycle{sessions: sessions, ledger: ledger, pub: pub}
}

// SessionAttrs is the input for creating a session.
type SessionAttrs struct {
	ProgramID   uint
	SessionDate time.Time
	StartTime   string // "15:04"
	EndTime     string // "15:04"
	Location    string
	MaxCapacity int
	Notes       string
	ProviderID  uint
}

// Create persists a new scheduled session. The time range must be a valid
// HH:MM pair with EndTime strictly after StartTime.
func (s *SessionLifecycle) Create(ctx context.Context, attrs SessionAttrs) (*models.ProgramSession, error) {
	start, err := time.Parse("15:04", attrs.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	end, err := time.Parse("15:04", attrs.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	sess := &models.ProgramSession{
		ProgramID:   attrs.ProgramID,
		SessionDate: attrs.SessionDate,
		StartTime:   attrs.StartTime,
		EndTime:     attrs.EndTime,
		Location:    attrs.Location,
		MaxCapacity: attrs.MaxCapacity,
		Notes:       attrs.Notes,
		ProviderID:  attrs.ProviderID,
		Status:      models.SessionScheduled,
		Version:     1,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateSession
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	ev := events.New(events.SessionCreated)
	ev.SessionID = sess.ID
	ev.ActorID = attrs.ProviderID
	publish(ctx, s.pub, ev)

	return sess, nil
}

// Start moves a scheduled session to in_progress.
func (s *SessionLifecycle) Start(ctx context.Context, id, actorID uint) (*models.ProgramSession, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionScheduled {
		return nil, ErrInvalidStatusTransition
	}
	sess.Status = models.SessionInProgress
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}

	ev := events.New(events.SessionStarted)
	ev.SessionID = sess.ID
	ev.ActorID = actorID
	publish(ctx, s.pub, ev)

	return sess, nil
}

// Cancel moves a scheduled session to cancelled. Sessions already running
// must be completed instead.
func (s *SessionLifecycle) Cancel(ctx context.Context, id, actorID uint) (*models.ProgramSession, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionScheduled {
		return nil, ErrInvalidStatusTransition
	}
	sess.Status = models.SessionCancelled
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Complete moves an in_progress session to completed, then marks every
// still-registered child absent. The cascade is deliberately best-effort
// and per record: one failing record never reverts the completion or
// blocks the other children.
func (s *SessionLifecycle) Complete(ctx context.Context, id, actorID uint) (*models.ProgramSession, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionInProgress {
		return nil, ErrInvalidStatusTransition
	}
	sess.Status = models.SessionCompleted
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}

	ev := events.New(events.SessionCompleted)
	ev.SessionID = sess.ID
	ev.ActorID = actorID
	publish(ctx, s.pub, ev)

	records, err := s.ledger.store.ListBySession(ctx, sess.ID)
	if err != nil {
		log.Printf("complete session %d: list records for absence cascade: %v", sess.ID, err)
		return sess, nil
	}
	for i := range records {
		rec := records[i]
		if rec.Status != models.RecordRegistered {
			continue
		}
		if _, err := s.ledger.MarkAbsent(ctx, &rec, actorID); err != nil {
			log.Printf("complete session %d: mark child %d absent: %v", sess.ID, rec.ChildID, err)
		}
	}

	return sess, nil
}
