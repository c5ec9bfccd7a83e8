// Package tracker is the attendance state store: authentication, the
// section directory cache, the in-progress session and the log of
// completed sessions, with every mutation routed through its methods.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/rollcall/internal/metrics"
	"github.com/shrimpsizemoose/rollcall/internal/models"
)

const (
	DefaultStorageName = "attendance-storage"
	saveTimeout        = 5 * time.Second
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Directory is the remote sign-in, roster and submission API.
type Directory interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SetToken(token string)
	ListSections(ctx context.Context) ([]models.Section, error)
	ListStudents(ctx context.Context, sectionID string) ([]models.Student, error)
	SubmitAttendance(ctx context.Context, submission models.Submission) error
}

// Persister is where snapshots go after each mutation.
type Persister interface {
	Load(ctx context.Context, name string) (*models.Snapshot, error)
	Save(ctx context.Context, name string, snapshot *models.Snapshot) error
}

type Option func(*Tracker)

func WithPersister(p Persister, name string) Option {
	return func(t *Tracker) {
		t.persister = p
		if name != "" {
			t.storageName = name
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithSessionIDs(next func() string) Option {
	return func(t *Tracker) {
		t.newSessionID = next
	}
}

// Tracker serializes all access with a single mutex. Network calls are made
// without holding it, so a late roster response may land after a newer
// selection; rosters are keyed by section so the cache stays consistent.
type Tracker struct {
	mu sync.Mutex

	directory    Directory
	persister    Persister
	storageName  string
	now          func() time.Time
	newSessionID func() string

	hydrateOnce sync.Once
	hydrated    chan struct{}

	isAuthenticated bool
	teacherName     string
	token           string
	darkMode        bool

	selectedSection   string
	currentSessionID  string
	sections          []models.SectionRef
	students          map[string][]models.Student
	sessions          []models.AttendanceSession
	history           []models.AttendanceRecord
	currentAttendance map[string]models.Status
	processed         []string
}

func New(directory Directory, opts ...Option) *Tracker {
	t := &Tracker{
		directory:         directory,
		storageName:       DefaultStorageName,
		now:               time.Now,
		hydrated:          make(chan struct{}),
		students:          make(map[string][]models.Student),
		currentAttendance: make(map[string]models.Status),
	}
	t.newSessionID = t.timeOrderedSessionID
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) timeOrderedSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("session_%d", t.now().UnixNano())
	}
	return "session_" + id.String()
}

// Hydrate restores the persisted snapshot once. The channel returned by
// Hydrated is closed afterwards even when loading fails.
func (t *Tracker) Hydrate(ctx context.Context) error {
	var err error
	t.hydrateOnce.Do(func() {
		defer close(t.hydrated)
		if t.persister == nil {
			return
		}

		snapshot, loadErr := t.persister.Load(ctx, t.storageName)
		if loadErr != nil {
			err = fmt.Errorf("failed to hydrate tracker: %w", loadErr)
			return
		}
		if snapshot == nil {
			logger.Debug.Printf("No stored state under %s", t.storageName)
			return
		}

		t.mu.Lock()
		t.restoreLocked(snapshot)
		token := t.token
		t.mu.Unlock()

		t.directory.SetToken(token)
		logger.Info.Printf("Restored %d sessions and %d history records", len(snapshot.Sessions), len(snapshot.History))
	})
	return err
}

func (t *Tracker) Hydrated() <-chan struct{} {
	return t.hydrated
}

func (t *Tracker) HasHydrated() bool {
	select {
	case <-t.hydrated:
		return true
	default:
		return false
	}
}

// Snapshot returns a deep copy of everything the tracker persists.
func (t *Tracker) Snapshot() *models.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() *models.Snapshot {
	students := make(map[string][]models.Student, len(t.students))
	for name, roster := range t.students {
		students[name] = append([]models.Student{}, roster...)
	}

	sessions := make([]models.AttendanceSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		sessions = append(sessions, s.Clone())
	}

	current := make(map[string]models.Status, len(t.currentAttendance))
	for id, status := range t.currentAttendance {
		current[id] = status
	}

	return &models.Snapshot{
		IsAuthenticated:   t.isAuthenticated,
		TeacherName:       t.teacherName,
		Token:             t.token,
		IsDarkMode:        t.darkMode,
		SelectedSection:   t.selectedSection,
		CurrentSessionID:  t.currentSessionID,
		Sections:          append([]models.SectionRef{}, t.sections...),
		Students:          students,
		Sessions:          sessions,
		History:           append([]models.AttendanceRecord{}, t.history...),
		CurrentAttendance: current,
		ProcessedStudents: append([]string{}, t.processed...),
	}
}

func (t *Tracker) restoreLocked(s *models.Snapshot) {
	t.isAuthenticated = s.IsAuthenticated
	t.teacherName = s.TeacherName
	t.token = s.Token
	t.darkMode = s.IsDarkMode
	t.selectedSection = s.SelectedSection
	t.currentSessionID = s.CurrentSessionID
	t.sections = append([]models.SectionRef(nil), s.Sections...)
	t.history = append([]models.AttendanceRecord(nil), s.History...)
	t.processed = append([]string(nil), s.ProcessedStudents...)

	t.students = make(map[string][]models.Student, len(s.Students))
	for name, roster := range s.Students {
		t.students[name] = append([]models.Student{}, roster...)
	}

	t.sessions = make([]models.AttendanceSession, 0, len(s.Sessions))
	for _, session := range s.Sessions {
		t.sessions = append(t.sessions, session.Clone())
	}

	t.currentAttendance = make(map[string]models.Status, len(s.CurrentAttendance))
	for id, status := range s.CurrentAttendance {
		t.currentAttendance[id] = status
	}
}

// persistLocked is the save-after-mutation hook. Durability is best effort:
// failures are logged and counted, never returned to the caller.
func (t *Tracker) persistLocked() {
	if t.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := t.persister.Save(ctx, t.storageName, t.snapshotLocked()); err != nil {
		metrics.PersistFailuresTotal.Inc()
		logger.Error.Printf("Failed to persist tracker state: %v", err)
	}
}
