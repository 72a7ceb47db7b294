package handlers

import (
	"net/http"

	"github.com/lojf/kidstrack/internal/services"
	"github.com/lojf/kidstrack/internal/storage"
)

type submitNoteReq struct {
	ProviderID uint   `json:"provider_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// POST /records/{id}/notes
func SubmitNote(records storage.AttendanceStore, wf *services.BehavioralNoteWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitNoteReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := records.GetByID(r.Context(), idParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		note, err := wf.Submit(r.Context(), rec, req.ProviderID, req.Content)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	}
}

type reviewNoteReq struct {
	ParentID uint   `json:"parent_id" validate:"required"`
	Decision string `json:"decision" validate:"required"`
	Reason   string `json:"reason"`
}

// POST /notes/{id}/review: the parent approves or rejects a pending note.
// The note is fetched scoped to the parent so one family can never review
// another family's notes.
func ReviewNote(notes storage.BehavioralNoteStore, wf *services.BehavioralNoteWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewNoteReq
		if !decodeJSON(w, r, &req) {
			return
		}
		note, err := notes.GetByIDAndParent(r.Context(), idParam(r, "id"), req.ParentID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		updated, err := wf.Review(r.Context(), note, req.ParentID, req.Decision, req.Reason)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

type reviseNoteReq struct {
	ProviderID uint   `json:"provider_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// POST /notes/{id}/revise: the provider resubmits a rejected note.
func ReviseNote(notes storage.BehavioralNoteStore, wf *services.BehavioralNoteWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviseNoteReq
		if !decodeJSON(w, r, &req) {
			return
		}
		note, err := notes.GetByIDAndProvider(r.Context(), idParam(r, "id"), req.ProviderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		updated, err := wf.Revise(r.Context(), note, req.Content)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// GET /parents/{id}/notes/pending
func PendingNotes(notes storage.BehavioralNoteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := notes.ListPendingByParent(r.Context(), idParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pending)
	}
}

// POST /children/{id}/anonymize: GDPR erasure for a child's notes.
func AnonymizeChildNotes(wf *services.BehavioralNoteWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := wf.AnonymizeAllForChild(r.Context(), idParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"anonymized": count})
	}
}
