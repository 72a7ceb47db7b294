package handlers

import (
	"net/http"

	"github.com/lojf/kidstrack/internal/services"
	"github.com/lojf/kidstrack/internal/storage"
)

type registerReq struct {
	ChildID    uint `json:"child_id" validate:"required"`
	ProviderID uint `json:"provider_id"`
}

// POST /sessions/{id}/register
func RegisterChild(ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := ledger.Register(r.Context(), idParam(r, "id"), req.ChildID, req.ProviderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

type registerBatchReq struct {
	ChildIDs   []uint `json:"child_ids" validate:"required,min=1"`
	ProviderID uint   `json:"provider_id"`
}

// POST /sessions/{id}/register/batch
func RegisterBatch(ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerBatchReq
		if !decodeJSON(w, r, &req) {
			return
		}
		recs, err := ledger.RegisterBatch(r.Context(), idParam(r, "id"), req.ChildIDs, req.ProviderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, recs)
	}
}

type atomicCheckinReq struct {
	ChildID    uint   `json:"child_id" validate:"required"`
	ProviderID uint   `json:"provider_id" validate:"required"`
	Notes      string `json:"notes"`
}

// POST /sessions/{id}/checkin: walk-up path, safe under concurrent scans.
func AtomicCheckin(ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req atomicCheckinReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := ledger.CheckInAtomic(r.Context(), idParam(r, "id"), req.ChildID, req.ProviderID, req.Notes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

type codeCheckinReq struct {
	Code       string `json:"code" validate:"required"`
	ProviderID uint   `json:"provider_id" validate:"required"`
	Notes      string `json:"notes"`
}

// POST /checkin is the QR scan path: look up the record by its code, then run
// the explicit registered -> checked_in transition.
func CheckinByCode(store storage.AttendanceStore, ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeCheckinReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := store.GetByCode(r.Context(), req.Code)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		updated, err := ledger.CheckIn(r.Context(), rec, req.ProviderID, req.Notes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

type recordActionReq struct {
	ProviderID uint   `json:"provider_id" validate:"required"`
	Notes      string `json:"notes"`
}

// POST /records/{id}/checkout
func CheckoutRecord(store storage.AttendanceStore, ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordActionReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := store.GetByID(r.Context(), idParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		updated, err := ledger.CheckOut(r.Context(), rec, req.ProviderID, req.Notes)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// POST /records/{id}/absent
func MarkRecordAbsent(store storage.AttendanceStore, ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordActionReq
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := store.GetByID(r.Context(), idParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		updated, err := ledger.MarkAbsent(r.Context(), rec, req.ProviderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

type bulkCheckinReq struct {
	RecordIDs  []uint `json:"record_ids" validate:"required,min=1"`
	ProviderID uint   `json:"provider_id" validate:"required"`
	Notes      string `json:"notes"`
}

// POST /checkin/bulk: per-item outcomes, never aborts the batch.
func BulkCheckin(ledger *services.AttendanceLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkCheckinReq
		if !decodeJSON(w, r, &req) {
			return
		}
		res := ledger.BulkCheckIn(r.Context(), req.RecordIDs, req.ProviderID, req.Notes)
		writeJSON(w, http.StatusOK, res)
	}
}
