// Package sqlite is the GORM-backed adapter for the storage ports. It is the
// only place that knows SQL; version checks and the check-in upsert live
// here so the services stay free of persistence detail.
package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lojf/kidstrack/internal/storage"
)

// Sessions implements storage.SessionStore.
type Sessions struct {
	db *gorm.DB
}

// Attendance implements storage.AttendanceStore.
type Attendance struct {
	db *gorm.DB
}

// Notes implements storage.BehavioralNoteStore.
type Notes struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions     { return &Sessions{db: db} }
func NewAttendance(db *gorm.DB) *Attendance { return &Attendance{db: db} }
func NewNotes(db *gorm.DB) *Notes           { return &Notes{db: db} }

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	// The sqlite driver reports unique-key violations as a constraint
	// error; match on the message since gorm only translates it when
	// TranslateError is enabled.
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return storage.ErrDuplicate
	}
	return err
}

// staleOrMissing disambiguates a zero-row conditional update: the row is
// either gone (not found) or was rewritten by a concurrent writer (stale).
func staleOrMissing(ctx context.Context, db *gorm.DB, model any, id uint) error {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return storage.ErrStale
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
