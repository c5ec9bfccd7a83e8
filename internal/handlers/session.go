package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/scoring"
	"github.com/shrimpsizemoose/rollcall/internal/tracker"
)

func (h *AttendanceHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tr := h.service.Tracker
	if err := tr.Login(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, tracker.ErrInvalidCredentials) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		logger.Error.Printf("Login failed: %v", err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	// the picker needs sections right after login; a failure here only
	// means an empty list until the next reload
	if err := tr.LoadSections(r.Context()); err != nil {
		logger.Error.Printf("Failed to load sections after login: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teacher":  tr.TeacherName(),
		"token":    tr.Token(),
		"sections": tr.SectionNames(),
	})
}

func (h *AttendanceHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Tracker.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttendanceHandler) HandleSections(w http.ResponseWriter, r *http.Request) {
	tr := h.service.Tracker
	if err := tr.LoadSections(r.Context()); err != nil {
		// stale names are better than none
		logger.Error.Printf("Failed to reload sections: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": tr.SectionNames(),
	})
}

func (h *AttendanceHandler) HandleSelectSection(w http.ResponseWriter, r *http.Request) {
	var req models.SelectSectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tr := h.service.Tracker
	if err := tr.SelectSection(r.Context(), req.Name); err != nil {
		logger.Error.Printf("Failed to load roster for %s: %v", req.Name, err)
	}

	roster := tr.ActiveRoster()
	if roster == nil {
		roster = []models.Student{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"section":  tr.SelectedSection(),
		"students": roster,
	})
}

func (h *AttendanceHandler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	tr := h.service.Tracker
	if tr.SelectedSection() == "" {
		http.Error(w, "No section selected", http.StatusConflict)
		return
	}

	id := tr.StartSession()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"progress":   tr.Progress(),
	})
}

func (h *AttendanceHandler) HandleMark(w http.ResponseWriter, r *http.Request) {
	var req models.MarkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	tr := h.service.Tracker
	tr.MarkAttendance(req.StudentID, status)
	writeJSON(w, http.StatusOK, tr.Progress())
}

func (h *AttendanceHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Tracker.Progress())
}

func (h *AttendanceHandler) HandleNextStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := h.service.Tracker.NextStudent()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *AttendanceHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session := h.service.Tracker.SubmitSession(r.Context())
	writeJSON(w, http.StatusCreated, session)
}

func (h *AttendanceHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.service.Tracker.Sessions(),
	})
}

func (h *AttendanceHandler) HandleLatestSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.service.Tracker.LatestSession()
	if !ok {
		http.Error(w, "No attendance records", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AttendanceHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.service.Tracker.Session(r.PathValue("id"))
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AttendanceHandler) HandleCorrection(w http.ResponseWriter, r *http.Request) {
	var req models.StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	tr := h.service.Tracker
	id := r.PathValue("id")
	if !tr.UpdateAttendanceStatus(id, r.PathValue("student"), status) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	session, _ := tr.Session(id)
	writeJSON(w, http.StatusOK, session)
}

func (h *AttendanceHandler) HandleStudentHistory(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	if section == "" {
		http.Error(w, "Invalid section", http.StatusBadRequest)
		return
	}

	records := h.service.Tracker.StudentHistory(r.PathValue("student"), section)
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
	})
}

func (h *AttendanceHandler) HandlePercentage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	section := query.Get("section")
	if section == "" {
		http.Error(w, "Invalid section", http.StatusBadRequest)
		return
	}

	filter, err := parseFilter(query.Get("month"), query.Get("year"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary := h.service.Tracker.AttendanceSummary(r.PathValue("student"), section, filter)
	writeJSON(w, http.StatusOK, summary)
}

func (h *AttendanceHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	tr := h.service.Tracker
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teacher":    tr.TeacherName(),
		"dark_mode":  tr.DarkMode(),
		"hydrated":   tr.HasHydrated(),
		"section":    tr.SelectedSection(),
		"session_id": tr.CurrentSessionID(),
	})
}

func (h *AttendanceHandler) HandleToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dark_mode": h.service.Tracker.ToggleDarkMode(),
	})
}

// parseFilter reads calendar month (1-12) and year query values.
func parseFilter(month, year string) (scoring.Filter, error) {
	var filter scoring.Filter
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y <= 0 {
			return filter, errors.New("Invalid year")
		}
		filter.Year = y
	}
	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return filter, errors.New("Invalid month")
		}
		filter.Month = time.Month(m)
	}
	return filter, nil
}
