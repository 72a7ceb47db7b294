package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lojf/kidstrack/internal/events"
	"github.com/lojf/kidstrack/internal/models"
	"github.com/lojf/kidstrack/internal/resolver"
	sqlitestore "github.com/lojf/kidstrack/internal/storage/sqlite"
)

// openTestDB returns an isolated in-file SQLite database in a temp
// directory, configured like production (WAL, busy timeout, single writer).
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "test.db") + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := gdb.AutoMigrate(
		&models.Parent{},
		&models.Child{},
		&models.ProgramSession{},
		&models.ParticipationRecord{},
		&models.BehavioralNote{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

// capturePub records dispatched events for assertions.
type capturePub struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePub) Dispatch(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePub) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

func (p *capturePub) count(kind string) int {
	n := 0
	for _, k := range p.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// testEnv wires the full core against one test database.
type testEnv struct {
	db        *gorm.DB
	pub       *capturePub
	ledger    *AttendanceLedger
	lifecycle *SessionLifecycle
	workflow  *BehavioralNoteWorkflow
	roster    *RosterAggregator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := openTestDB(t)
	pub := &capturePub{}

	sessions := sqlitestore.NewSessions(gdb)
	attendance := sqlitestore.NewAttendance(gdb)
	notes := sqlitestore.NewNotes(gdb)
	children := resolver.NewDB(gdb)

	ledger := NewAttendanceLedger(attendance, children, pub)
	return &testEnv{
		db:        gdb,
		pub:       pub,
		ledger:    ledger,
		lifecycle: NewSessionLifecycle(sessions, ledger, pub),
		workflow:  NewBehavioralNoteWorkflow(notes, pub),
		roster:    NewRosterAggregator(sessions, attendance, notes, children),
	}
}

// seedFamily creates a parent (with or without consent) and one child,
// returning the child id.
func (e *testEnv) seedFamily(t *testing.T, name, phone string, consent bool) uint {
	t.Helper()
	parent := models.Parent{Name: name + " Sr.", Phone: phone, DataSharingConsent: consent}
	if err := e.db.Create(&parent).Error; err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	child := models.Child{
		Name:      name,
		BirthDate: time.Date(2017, 3, 14, 0, 0, 0, 0, time.UTC),
		ParentID:  parent.ID,
	}
	if err := e.db.Create(&child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return child.ID
}

// seedSession creates a session directly through the lifecycle service.
func (e *testEnv) seedSession(t *testing.T, programID uint, date string, start, end string) *models.ProgramSession {
	t.Helper()
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	sess, err := e.lifecycle.Create(context.Background(), SessionAttrs{
		ProgramID:   programID,
		SessionDate: day,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: 10,
		Location:    "Main hall",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess
}
