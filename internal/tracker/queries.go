package tracker

import (
	"slices"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/scoring"
)

const (
	unknownStudentName = "Unknown Student"
	unknownRollNumber  = "N/A"
)

// Progress describes the working session against the active roster.
type Progress struct {
	SessionID string `json:"session_id"`
	Section   string `json:"section"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
	Complete  bool   `json:"complete"`
}

func (t *Tracker) IsAuthenticated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isAuthenticated
}

func (t *Tracker) TeacherName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.teacherName
}

func (t *Tracker) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

func (t *Tracker) DarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.darkMode
}

func (t *Tracker) SelectedSection() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedSection
}

func (t *Tracker) CurrentSessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentSessionID
}

// SectionNames lists display names in the order of the last LoadSections.
func (t *Tracker) SectionNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.sections))
	for _, ref := range t.sections {
		names = append(names, ref.Name)
	}
	return names
}

// Roster returns nil when the section was never loaded.
func (t *Tracker) Roster(section string) []models.Student {
	t.mu.Lock()
	defer t.mu.Unlock()

	roster, ok := t.students[section]
	if !ok {
		return nil
	}
	return append([]models.Student{}, roster...)
}

func (t *Tracker) ActiveRoster() []models.Student {
	return t.Roster(t.SelectedSection())
}

// CurrentStatus is the working-session mark for a student, if any.
func (t *Tracker) CurrentStatus(studentID string) (models.Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.currentAttendance[studentID]
	return status, ok
}

func (t *Tracker) Processed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.processed...)
}

func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := Progress{
		SessionID: t.currentSessionID,
		Section:   t.selectedSection,
		Total:     len(t.students[t.selectedSection]),
	}
	for _, status := range t.currentAttendance {
		if status == models.StatusPresent {
			p.Present++
		} else {
			p.Absent++
		}
	}
	p.Remaining = max(p.Total-len(t.processed), 0)
	p.Complete = len(t.processed) >= p.Total
	return p
}

// NextStudent is the first student of the active roster not yet marked.
func (t *Tracker) NextStudent() (models.Student, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, student := range t.students[t.selectedSection] {
		if !slices.Contains(t.processed, student.ID) {
			return student, true
		}
	}
	return models.Student{}, false
}

func (t *Tracker) Sessions() []models.AttendanceSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.AttendanceSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s.Clone())
	}
	return out
}

func (t *Tracker) Session(id string) (models.AttendanceSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.sessions {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return models.AttendanceSession{}, false
}

func (t *Tracker) LatestSession() (models.AttendanceSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.sessions) == 0 {
		return models.AttendanceSession{}, false
	}
	return t.sessions[len(t.sessions)-1].Clone(), true
}

// StudentLabel resolves display name and roll number from the roster cache.
func (t *Tracker) StudentLabel(studentID, section string) (string, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.students[section] {
		if s.ID == studentID {
			return s.Name, s.RollNumber
		}
	}
	return unknownStudentName, unknownRollNumber
}

// StudentHistory returns the student's records for a section in log order.
func (t *Tracker) StudentHistory(studentID, section string) []models.AttendanceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.studentHistoryLocked(studentID, section)
}

func (t *Tracker) studentHistoryLocked(studentID, section string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, r := range t.history {
		if r.StudentID == studentID && r.Section == section {
			out = append(out, r)
		}
	}
	return out
}

func (t *Tracker) AttendancePercentage(studentID, section string, filter scoring.Filter) int {
	return t.AttendanceSummary(studentID, section, filter).Percentage
}

func (t *Tracker) AttendanceSummary(studentID, section string, filter scoring.Filter) scoring.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return scoring.Summarize(t.studentHistoryLocked(studentID, section), filter)
}

// History returns the full flat log.
func (t *Tracker) History() []models.AttendanceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.AttendanceRecord{}, t.history...)
}
