package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/scoring"
)

// takeAttendance runs one full session on the given day.
func takeAttendance(t *testing.T, tr *Tracker, clock *fakeClock, day time.Time, marks map[string]models.Status) models.AttendanceSession {
	t.Helper()
	clock.now = day
	tr.StartSession()
	for id, status := range marks {
		tr.MarkAttendance(id, status)
	}
	return tr.SubmitSession(context.Background())
}

func TestStudentHistory(t *testing.T) {
	tr, dir, _, clock := setupClassroom(t)
	dir.On("SubmitAttendance", mock.Anything).Return(nil)

	takeAttendance(t, tr, clock, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), map[string]models.Status{"A": models.StatusPresent})
	takeAttendance(t, tr, clock, time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC), map[string]models.Status{"A": models.StatusAbsent})

	history := tr.StudentHistory("A", sectionName)
	require.Len(t, history, 2)
	assert.Equal(t, "01/15/2024", history[0].Date)
	assert.Equal(t, models.StatusPresent, history[0].Status)
	assert.Equal(t, "01/16/2024", history[1].Date)
	assert.Equal(t, models.StatusAbsent, history[1].Status)

	assert.Empty(t, tr.StudentHistory("A", "Other (X 1)"))
	assert.Empty(t, tr.StudentHistory("nobody", sectionName))
}

func TestAttendancePercentage(t *testing.T) {
	tr, dir, _, clock := setupClassroom(t)
	dir.On("SubmitAttendance", mock.Anything).Return(nil)

	assert.Equal(t, 0, tr.AttendancePercentage("A", sectionName, scoring.Filter{}), "no history yet")

	days := []struct {
		day    time.Time
		status models.Status
	}{
		{time.Date(2023, 12, 20, 9, 0, 0, 0, time.UTC), models.StatusAbsent},
		{time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), models.StatusPresent},
		{time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC), models.StatusPresent},
		{time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC), models.StatusAbsent},
		{time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), models.StatusPresent},
	}
	for _, d := range days {
		takeAttendance(t, tr, clock, d.day, map[string]models.Status{"A": d.status})
	}

	testCases := []struct {
		name     string
		filter   scoring.Filter
		expected int
	}{
		{"all time", scoring.Filter{}, 60},
		{"january 2024", scoring.Filter{Month: time.January, Year: 2024}, 67},
		{"february 2024", scoring.Filter{Month: time.February, Year: 2024}, 100},
		{"year 2024", scoring.Filter{Year: 2024}, 75},
		{"year 2023", scoring.Filter{Year: 2023}, 0},
		{"month without year means no date filter", scoring.Filter{Month: time.March}, 60},
		{"empty period", scoring.Filter{Month: time.June, Year: 2024}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tr.AttendancePercentage("A", sectionName, tc.filter))
		})
	}

	t.Run("student never marked is always absent", func(t *testing.T) {
		s := tr.AttendanceSummary("C", sectionName, scoring.Filter{})
		assert.Equal(t, scoring.Summary{Present: 0, Absent: 5, Total: 5, Percentage: 0}, s)
	})
}

func TestSessionQueries(t *testing.T) {
	tr, dir, _, clock := setupClassroom(t)
	dir.On("SubmitAttendance", mock.Anything).Return(nil)

	_, ok := tr.LatestSession()
	assert.False(t, ok)

	first := takeAttendance(t, tr, clock, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), nil)
	second := takeAttendance(t, tr, clock, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), map[string]models.Status{"B": models.StatusPresent})

	latest, ok := tr.LatestSession()
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID)

	got, ok := tr.Session(first.ID)
	require.True(t, ok)
	assert.Equal(t, "03/01/2024", got.Date)

	_, ok = tr.Session("session_nope")
	assert.False(t, ok)

	sessions := tr.Sessions()
	require.Len(t, sessions, 2)
	sessions[0].Records[0].Status = models.StatusPresent
	again, _ := tr.Session(first.ID)
	assert.Equal(t, models.StatusAbsent, again.Records[0].Status, "callers get copies")
}

func TestStudentLabel(t *testing.T) {
	tr, _, _, _ := setupClassroom(t)

	name, roll := tr.StudentLabel("B", sectionName)
	assert.Equal(t, "Brian", name)
	assert.Equal(t, "R002", roll)

	name, roll = tr.StudentLabel("Z", sectionName)
	assert.Equal(t, "Unknown Student", name)
	assert.Equal(t, "N/A", roll)
}

func TestToggleDarkMode(t *testing.T) {
	tr, _, persister, _ := setupTracker(t)

	assert.True(t, tr.ToggleDarkMode())
	assert.True(t, tr.DarkMode())
	assert.False(t, tr.ToggleDarkMode())
	assert.Equal(t, 2, persister.saves)
}
