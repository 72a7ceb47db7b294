package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/lojf/kidstrack/internal/events"
	"github.com/lojf/kidstrack/internal/handlers"
	"github.com/lojf/kidstrack/internal/resolver"
	"github.com/lojf/kidstrack/internal/services"
	"github.com/lojf/kidstrack/internal/storage/sqlite"
)

// Router wires the single concrete store adapter into the services and
// exposes the JSON surface. Auth sits in front of this in deployment; it is
// not this service's concern.
func Router(db *gorm.DB, pub events.Publisher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	sessions := sqlite.NewSessions(db)
	attendance := sqlite.NewAttendance(db)
	notes := sqlite.NewNotes(db)
	children := resolver.NewDB(db)

	ledger := services.NewAttendanceLedger(attendance, children, pub)
	lifecycle := services.NewSessionLifecycle(sessions, ledger, pub)
	workflow := services.NewBehavioralNoteWorkflow(notes, pub)
	roster := services.NewRosterAggregator(sessions, attendance, notes, children)

	r.Get("/healthz", handlers.Health)

	// Session lifecycle
	r.Post("/sessions", handlers.CreateSession(lifecycle))
	r.Post("/sessions/{id}/start", handlers.StartSession(lifecycle))
	r.Post("/sessions/{id}/cancel", handlers.CancelSession(lifecycle))
	r.Post("/sessions/{id}/complete", handlers.CompleteSession(lifecycle))
	r.Get("/sessions/{id}/roster", handlers.SessionRoster(roster))

	// Attendance
	r.Post("/sessions/{id}/register", handlers.RegisterChild(ledger))
	r.Post("/sessions/{id}/register/batch", handlers.RegisterBatch(ledger))
	r.Post("/sessions/{id}/checkin", handlers.AtomicCheckin(ledger))
	r.Post("/checkin", handlers.CheckinByCode(attendance, ledger))
	r.Post("/checkin/bulk", handlers.BulkCheckin(ledger))
	r.Post("/records/{id}/checkout", handlers.CheckoutRecord(attendance, ledger))
	r.Post("/records/{id}/absent", handlers.MarkRecordAbsent(attendance, ledger))

	// Behavioral notes
	r.Post("/records/{id}/notes", handlers.SubmitNote(attendance, workflow))
	r.Post("/notes/{id}/review", handlers.ReviewNote(notes, workflow))
	r.Post("/notes/{id}/revise", handlers.ReviseNote(notes, workflow))
	r.Get("/parents/{id}/notes/pending", handlers.PendingNotes(notes))
	r.Post("/children/{id}/anonymize", handlers.AnonymizeChildNotes(workflow))

	// QR image
	r.Get("/qr/{code}.png", handlers.QR(attendance))

	return r
}
