package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/scoring"
	"github.com/shrimpsizemoose/rollcall/internal/tracker"
)

func TestCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		student string
		status  models.Status
		wantErr bool
	}{
		{"present", "mark:A:present", "A", models.StatusPresent, false},
		{"absent", "mark:64f1c0:absent", "64f1c0", models.StatusAbsent, false},
		{"colon in id", "mark:a:b:present", "a:b", models.StatusPresent, false},
		{"round trip", callbackData("X", models.StatusAbsent), "X", models.StatusAbsent, false},
		{"wrong prefix", "skip:A:present", "", "", true},
		{"missing student", "mark::present", "", "", true},
		{"bad status", "mark:A:late", "", "", true},
		{"no separator", "mark:A", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student, status, err := parseCallbackData(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.student, student)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestParsePercentArgs(t *testing.T) {
	student, filter, err := parsePercentArgs([]string{"A"})
	require.NoError(t, err)
	assert.Equal(t, "A", student)
	assert.Equal(t, scoring.Filter{}, filter)

	student, filter, err = parsePercentArgs([]string{"A", "3", "2024"})
	require.NoError(t, err)
	assert.Equal(t, "A", student)
	assert.Equal(t, scoring.Filter{Month: time.March, Year: 2024}, filter)

	for _, args := range [][]string{
		{},
		{"A", "3"},
		{"A", "13", "2024"},
		{"A", "0", "2024"},
		{"A", "3", "last"},
	} {
		_, _, err := parsePercentArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestFormatSession(t *testing.T) {
	session := models.AttendanceSession{
		ID:      "session_1",
		Date:    "01/15/2024",
		Time:    "9:00:00 AM",
		Section: "CS-A (CSE 2)",
		Records: []models.AttendanceRecord{
			{StudentID: "A", Status: models.StatusPresent},
			{StudentID: "B", Status: models.StatusAbsent},
			{StudentID: "C", Status: models.StatusPresent},
		},
	}
	session.Recount()

	text := formatSession(session, func(id string) string { return "name-" + id })
	assert.Contains(t, text, "CS-A (CSE 2)")
	assert.Contains(t, text, "01/15/2024 9:00:00 AM")
	assert.Contains(t, text, "Present: 2/3 (67%)")
	assert.Contains(t, text, "Absent: 1")
	assert.Contains(t, text, "name-B")
	assert.NotContains(t, text, "name-A")
}

func TestFormatCard(t *testing.T) {
	p := tracker.Progress{Section: "CS-A (CSE 2)", Total: 3, Remaining: 2}
	text := formatCard(models.Student{ID: "B", Name: "Brian", RollNumber: "R002"}, p)
	assert.Contains(t, text, "Brian")
	assert.Contains(t, text, "R002")
	assert.Contains(t, text, "2 of 3")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No attendance records for Ada", formatHistory("Ada", nil))

	text := formatHistory("Ada", []models.AttendanceRecord{
		{Date: "01/15/2024", Time: "9:00:00 AM", Status: models.StatusPresent},
		{Date: "01/16/2024", Time: "9:00:00 AM", Status: models.StatusAbsent},
	})
	assert.Contains(t, text, "✅ 01/15/2024 9:00:00 AM")
	assert.Contains(t, text, "❌ 01/16/2024 9:00:00 AM")
}
