package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/scoring"
	"github.com/shrimpsizemoose/rollcall/internal/tracker"
)

const markPrefix = "mark:"

func callbackData(studentID string, status models.Status) string {
	return markPrefix + studentID + ":" + string(status)
}

// parseCallbackData splits "mark:<student>:<status>". The status is the
// last field so student ids may contain colons.
func parseCallbackData(data string) (string, models.Status, error) {
	rest, ok := strings.CutPrefix(data, markPrefix)
	if !ok {
		return "", "", fmt.Errorf("unknown callback: %q", data)
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", "", fmt.Errorf("malformed callback: %q", data)
	}
	status, err := models.ParseStatus(rest[i+1:])
	if err != nil {
		return "", "", err
	}
	return rest[:i], status, nil
}

// parsePercentArgs reads "<student> [month year]".
func parsePercentArgs(args []string) (string, scoring.Filter, error) {
	var filter scoring.Filter
	switch len(args) {
	case 1:
		return args[0], filter, nil
	case 3:
		month, err := strconv.Atoi(args[1])
		if err != nil || month < 1 || month > 12 {
			return "", filter, fmt.Errorf("month must be 1-12, got %q", args[1])
		}
		year, err := strconv.Atoi(args[2])
		if err != nil || year <= 0 {
			return "", filter, fmt.Errorf("invalid year %q", args[2])
		}
		filter.Month = time.Month(month)
		filter.Year = year
		return args[0], filter, nil
	default:
		return "", filter, fmt.Errorf("usage: /percent <student> [month year]")
	}
}

func formatCard(student models.Student, p tracker.Progress) string {
	position := p.Total - p.Remaining + 1
	return fmt.Sprintf("👤 %s\nRoll: %s\n\n%d of %d in %s",
		student.Name,
		student.RollNumber,
		position,
		p.Total,
		p.Section,
	)
}

func formatProgress(p tracker.Progress) string {
	return fmt.Sprintf("%s: %d present, %d absent, %d remaining",
		p.Section, p.Present, p.Absent, p.Remaining)
}

// formatSession renders a report. label resolves a student id to a name.
func formatSession(s models.AttendanceSession, label func(string) string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("📋 %s\n📅 %s %s\n\n", s.Section, s.Date, s.Time))
	msg.WriteString(fmt.Sprintf("Present: %d/%d (%d%%)\nAbsent: %d\n",
		s.PresentCount, s.TotalStudents, s.Percentage(), s.AbsentCount))

	var absent []string
	for _, r := range s.Records {
		if r.Status == models.StatusAbsent {
			absent = append(absent, "  • "+label(r.StudentID))
		}
	}
	if len(absent) > 0 {
		msg.WriteString("\nAbsent students:\n")
		msg.WriteString(strings.Join(absent, "\n"))
	}
	return msg.String()
}

func formatHistory(name string, records []models.AttendanceRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("No attendance records for %s", name)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("History for %s:\n\n", name))
	for _, r := range records {
		mark := "✅"
		if r.Status == models.StatusAbsent {
			mark = "❌"
		}
		msg.WriteString(fmt.Sprintf("%s %s %s\n", mark, r.Date, r.Time))
	}
	return msg.String()
}
