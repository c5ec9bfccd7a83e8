package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/metrics"
	"github.com/shrimpsizemoose/rollcall/internal/models"
)

const (
	defaultMarkedBy  = "teacher"
	submissionLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Login signs in against the directory. Any failure is reported as
// ErrInvalidCredentials and leaves the state untouched.
func (t *Tracker) Login(ctx context.Context, email, password string) error {
	token, err := t.directory.SignIn(ctx, email, password)
	if err != nil {
		logger.Debug.Printf("Sign in failed for %s: %v", email, err)
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	t.directory.SetToken(token)

	name, _, _ := strings.Cut(email, "@")

	t.mu.Lock()
	t.isAuthenticated = true
	t.teacherName = name
	t.token = token
	t.persistLocked()
	t.mu.Unlock()

	logger.Info.Printf("Teacher %s signed in", name)
	return nil
}

func (t *Tracker) Logout() {
	t.mu.Lock()
	t.isAuthenticated = false
	t.teacherName = ""
	t.token = ""
	t.selectedSection = ""
	t.currentSessionID = ""
	t.currentAttendance = make(map[string]models.Status)
	t.processed = nil
	t.persistLocked()
	t.mu.Unlock()

	t.directory.SetToken("")
}

func (t *Tracker) ToggleDarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.darkMode = !t.darkMode
	t.persistLocked()
	return t.darkMode
}

// LoadSections replaces the display name to backend id mapping wholesale.
// Duplicate display names keep their first position and the last id.
func (t *Tracker) LoadSections(ctx context.Context) error {
	sections, err := t.directory.ListSections(ctx)
	if err != nil {
		return err
	}

	refs := make([]models.SectionRef, 0, len(sections))
	index := make(map[string]int, len(sections))
	for _, s := range sections {
		name := s.DisplayName()
		if i, ok := index[name]; ok {
			refs[i].ID = s.ID
			continue
		}
		index[name] = len(refs)
		refs = append(refs, models.SectionRef{Name: name, ID: s.ID})
	}

	t.mu.Lock()
	t.sections = refs
	t.persistLocked()
	t.mu.Unlock()

	logger.Debug.Printf("Loaded %d sections", len(refs))
	return nil
}

// SelectSection activates a section and fetches its roster on first visit.
// A name without a backend id simply ends up with no roster.
func (t *Tracker) SelectSection(ctx context.Context, name string) error {
	t.mu.Lock()
	t.selectedSection = name
	_, cached := t.students[name]
	sectionID := t.sectionIDLocked(name)
	t.persistLocked()
	t.mu.Unlock()

	if cached {
		logger.Debug.Printf("Roster for %s served from cache", name)
		return nil
	}
	if sectionID == "" {
		logger.Debug.Printf("No backend id for section %s", name)
		return nil
	}

	students, err := t.directory.ListStudents(ctx, sectionID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.students[name] = append([]models.Student{}, students...)
	t.persistLocked()
	t.mu.Unlock()

	return nil
}

// StartSession discards unsaved marks and returns the new session id.
func (t *Tracker) StartSession() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentSessionID = t.newSessionID()
	t.currentAttendance = make(map[string]models.Status)
	t.processed = nil
	t.persistLocked()

	return t.currentSessionID
}

// MarkAttendance records a decision for one student. Marking again
// overwrites the status without duplicating the processed entry. Roster
// membership is not checked.
func (t *Tracker) MarkAttendance(studentID string, status models.Status) {
	if studentID == "" || !status.Valid() {
		logger.Debug.Printf("Ignoring mark %q for student %q", status, studentID)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentAttendance[studentID] = status
	if !slices.Contains(t.processed, studentID) {
		t.processed = append(t.processed, studentID)
	}
	t.persistLocked()

	metrics.MarksTotal.WithLabelValues(string(status)).Inc()
}

// SubmitSession commits the working session locally and then pushes it to
// the remote API. Every roster student gets a record; unmarked students
// count as absent. Remote failures are logged and swallowed.
func (t *Tracker) SubmitSession(ctx context.Context) models.AttendanceSession {
	t.mu.Lock()

	now := t.now()
	date := now.Format(models.DateLayout)
	clock := now.Format(models.TimeLayout)
	section := t.selectedSection
	roster := t.students[section]

	records := make([]models.AttendanceRecord, 0, len(roster))
	for _, student := range roster {
		status, ok := t.currentAttendance[student.ID]
		if !ok {
			status = models.StatusAbsent
		}
		records = append(records, models.AttendanceRecord{
			StudentID: student.ID,
			Date:      date,
			Time:      clock,
			Status:    status,
			Section:   section,
		})
	}

	id := t.currentSessionID
	if id == "" {
		id = t.newSessionID()
	}

	session := models.AttendanceSession{
		ID:      id,
		Date:    date,
		Time:    clock,
		Section: section,
		Records: records,
	}
	session.Recount()

	t.sessions = append(t.sessions, session)
	t.history = append(t.history, records...)
	t.currentSessionID = ""
	t.currentAttendance = make(map[string]models.Status)
	t.processed = nil
	t.persistLocked()

	sectionID := t.sectionIDLocked(section)
	markedBy := t.teacherName
	if markedBy == "" {
		markedBy = defaultMarkedBy
	}
	t.mu.Unlock()

	metrics.SessionsSubmittedTotal.WithLabelValues(section).Inc()
	metrics.SessionPresentRatio.WithLabelValues(section).Observe(float64(session.Percentage()))
	logger.Info.Printf("Submitted session %s for %s: %d/%d present", session.ID, section, session.PresentCount, session.TotalStudents)

	if sectionID != "" {
		t.syncSession(ctx, sectionID, markedBy, now, records)
	}

	return session.Clone()
}

func (t *Tracker) syncSession(ctx context.Context, sectionID, markedBy string, at time.Time, records []models.AttendanceRecord) {
	submission := models.Submission{
		SectionID: sectionID,
		Date:      at.UTC().Format(submissionLayout),
		MarkedBy:  markedBy,
		Records:   make([]models.SubmissionRecord, 0, len(records)),
	}
	for _, r := range records {
		submission.Records = append(submission.Records, models.SubmissionRecord{
			Student: r.StudentID,
			Status:  r.Status.Wire(),
		})
	}

	if err := t.directory.SubmitAttendance(ctx, submission); err != nil {
		metrics.SyncFailuresTotal.Inc()
		logger.Error.Printf("Remote attendance sync failed for section %s: %v", sectionID, err)
	}
}

// UpdateAttendanceStatus corrects one student's status in a stored session
// and recounts it. The history log is patched on (student, date) only, so
// another session of the same day for that student is patched as well.
// It reports whether the session exists.
func (t *Tracker) UpdateAttendanceStatus(sessionID, studentID string, status models.Status) bool {
	if !status.Valid() {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := slices.IndexFunc(t.sessions, func(s models.AttendanceSession) bool {
		return s.ID == sessionID
	})
	if idx < 0 {
		return false
	}

	session := &t.sessions[idx]
	for i := range session.Records {
		if session.Records[i].StudentID == studentID {
			session.Records[i].Status = status
		}
	}
	session.Recount()

	for i := range t.history {
		if t.history[i].StudentID == studentID && t.history[i].Date == session.Date {
			t.history[i].Status = status
		}
	}
	t.persistLocked()

	logger.Info.Printf("Corrected %s in session %s to %s", studentID, sessionID, status)
	return true
}

func (t *Tracker) sectionIDLocked(name string) string {
	for _, ref := range t.sections {
		if ref.Name == name {
			return ref.ID
		}
	}
	return ""
}
