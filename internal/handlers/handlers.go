package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/app"
	"github.com/shrimpsizemoose/rollcall/internal/metrics"
)

type AttendanceHandler struct {
	service *app.Service
}

func NewAttendanceHandler(service *app.Service) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
	}
}

// Register wires every route onto mux. Everything except login goes
// through the bearer check.
func (h *AttendanceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/login", h.instrument("/api/v1/login", h.HandleLogin))

	routes := map[string]http.HandlerFunc{
		"POST /api/v1/logout":                           h.HandleLogout,
		"GET /api/v1/sections":                          h.HandleSections,
		"POST /api/v1/sections/select":                  h.HandleSelectSection,
		"POST /api/v1/session/start":                    h.HandleStartSession,
		"POST /api/v1/session/mark":                     h.HandleMark,
		"GET /api/v1/session/progress":                  h.HandleProgress,
		"GET /api/v1/session/next":                      h.HandleNextStudent,
		"POST /api/v1/session/submit":                   h.HandleSubmit,
		"GET /api/v1/sessions":                          h.HandleSessions,
		"GET /api/v1/sessions/latest":                   h.HandleLatestSession,
		"GET /api/v1/sessions/{id}":                     h.HandleSession,
		"PATCH /api/v1/sessions/{id}/records/{student}": h.HandleCorrection,
		"GET /api/v1/students/{student}/history":        h.HandleStudentHistory,
		"GET /api/v1/students/{student}/percentage":     h.HandlePercentage,
		"GET /api/v1/settings":                          h.HandleSettings,
		"POST /api/v1/settings/dark-mode":               h.HandleToggleDarkMode,
	}
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, h.instrument(pattern, h.requireAuth(handler)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *AttendanceHandler) instrument(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			metrics.APIRequestDuration.WithLabelValues(
				pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(time.Since(start).Seconds())
		}()
		next(rec, r)
	}
}

func (h *AttendanceHandler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Auth.ValidateRequest(r); err != nil {
			logger.Error.Printf("Auth failed: %v", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// decodeBody decodes JSON into v and runs its validation.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{ Validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := v.Validate(); err != nil {
		logger.Debug.Printf("Rejected request body on %s: %v", r.URL.Path, err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
