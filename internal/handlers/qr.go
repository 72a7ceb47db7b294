package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/lojf/kidstrack/internal/storage"
)

// GET /qr/{code}.png
func QR(records storage.AttendanceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			http.NotFound(w, r)
			return
		}
		// ensure code exists
		if _, err := records.GetByCode(r.Context(), code); err != nil {
			http.NotFound(w, r)
			return
		}

		// Encode a URL so scanning opens check-in directly
		url := "http://" + r.Host + "/checkin?code=" + code

		png, err := qrcode.Encode(url, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
