// Package storetest holds the behaviour every StateStore backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/store"
)

func Snapshot() *models.Snapshot {
	records := []models.AttendanceRecord{
		{StudentID: "st-1", Date: "01/15/2024", Time: "9:00:00 AM", Status: models.StatusPresent, Section: "A (CSE 2)"},
		{StudentID: "st-2", Date: "01/15/2024", Time: "9:00:00 AM", Status: models.StatusAbsent, Section: "A (CSE 2)"},
	}
	return &models.Snapshot{
		IsAuthenticated: true,
		TeacherName:     "jane",
		Token:           "tok-123",
		IsDarkMode:      true,
		SelectedSection: "A (CSE 2)",
		Sections: []models.SectionRef{
			{Name: "B (ECE 3)", ID: "sec-2"},
			{Name: "A (CSE 2)", ID: "sec-1"},
		},
		Students: map[string][]models.Student{
			"A (CSE 2)": {
				{ID: "st-1", Name: "Ada", RollNumber: "R001"},
				{ID: "st-2", Name: "Linus", RollNumber: "R002"},
			},
		},
		Sessions: []models.AttendanceSession{{
			ID:            "session_1",
			Date:          "01/15/2024",
			Time:          "9:00:00 AM",
			Section:       "A (CSE 2)",
			TotalStudents: 2,
			PresentCount:  1,
			AbsentCount:   1,
			Records:       records,
		}},
		History:           records,
		CurrentAttendance: map[string]models.Status{"st-1": models.StatusAbsent},
		ProcessedStudents: []string{"st-1"},
	}
}

// RunRoundTrip checks missing names, save/load fidelity and overwrites.
func RunRoundTrip(t *testing.T, s store.StateStore) {
	ctx := context.Background()

	t.Run("load missing snapshot", func(t *testing.T) {
		got, err := s.Load(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save and load", func(t *testing.T) {
		want := Snapshot()
		require.NoError(t, s.Save(ctx, "attendance-storage", want))

		got, err := s.Load(ctx, "attendance-storage")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		next := Snapshot()
		next.IsDarkMode = false
		next.Sessions = nil
		require.NoError(t, s.Save(ctx, "attendance-storage", next))

		got, err := s.Load(ctx, "attendance-storage")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.IsDarkMode)
		assert.Empty(t, got.Sessions)
		assert.Len(t, got.History, 2)
	})

	t.Run("names are isolated", func(t *testing.T) {
		other := &models.Snapshot{TeacherName: "bob"}
		require.NoError(t, s.Save(ctx, "other", other))

		got, err := s.Load(ctx, "attendance-storage")
		require.NoError(t, err)
		assert.Equal(t, "jane", got.TeacherName)
	})
}
