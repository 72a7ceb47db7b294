package handlers

import (
	"net/http"
	"time"

	"github.com/lojf/kidstrack/internal/services"
)

type createSessionReq struct {
	ProgramID   uint   `json:"program_id" validate:"required"`
	SessionDate string `json:"session_date" validate:"required"` // 2006-01-02
	StartTime   string `json:"start_time" validate:"required"`   // 15:04
	EndTime     string `json:"end_time" validate:"required"`     // 15:04
	Location    string `json:"location"`
	MaxCapacity int    `json:"max_capacity" validate:"gte=0"`
	Notes       string `json:"notes"`
	ProviderID  uint   `json:"provider_id"`
}

// POST /sessions
func CreateSession(svc *services.SessionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionReq
		if !decodeJSON(w, r, &req) {
			return
		}
		date, err := time.Parse("2006-01-02", req.SessionDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "session_date must be YYYY-MM-DD")
			return
		}
		sess, err := svc.Create(r.Context(), services.SessionAttrs{
			ProgramID:   req.ProgramID,
			SessionDate: date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Location:    req.Location,
			MaxCapacity: req.MaxCapacity,
			Notes:       req.Notes,
			ProviderID:  req.ProviderID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

type actorReq struct {
	ActorID uint `json:"actor_id"`
}

// POST /sessions/{id}/start
func StartSession(svc *services.SessionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actorReq
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, err := svc.Start(r.Context(), idParam(r, "id"), req.ActorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// POST /sessions/{id}/cancel
func CancelSession(svc *services.SessionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actorReq
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, err := svc.Cancel(r.Context(), idParam(r, "id"), req.ActorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// POST /sessions/{id}/complete
func CompleteSession(svc *services.SessionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actorReq
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, err := svc.Complete(r.Context(), idParam(r, "id"), req.ActorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// GET /sessions/{id}/roster
func SessionRoster(agg *services.RosterAggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := agg.GetSessionWithRoster(r.Context(), idParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roster)
	}
}
