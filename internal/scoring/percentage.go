// internal/scoring/percentage.go
package scoring

import (
	"math"
	"time"

	"github.com/shrimpsizemoose/rollcall/internal/models"
)

// Filter narrows records to a calendar period. Zero fields are unset.
// A month without a year is ignored, the same way the history screen only
// ever asks for a month together with a year.
type Filter struct {
	Month time.Month
	Year  int
}

func (f Filter) Match(r models.AttendanceRecord) bool {
	if f.Year == 0 {
		return true
	}

	date, err := r.ParsedDate()
	if err != nil {
		return false
	}

	if f.Month != 0 && date.Month() != f.Month {
		return false
	}
	return date.Year() == f.Year
}

type Summary struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func Summarize(records []models.AttendanceRecord, filter Filter) Summary {
	var s Summary
	for _, r := range records {
		if !filter.Match(r) {
			continue
		}
		s.Total++
		if r.Status == models.StatusPresent {
			s.Present++
		} else {
			s.Absent++
		}
	}

	if s.Total == 0 {
		return s
	}

	s.Percentage = int(math.Round(float64(s.Present) / float64(s.Total) * 100))
	return s
}

func Percentage(records []models.AttendanceRecord, filter Filter) int {
	return Summarize(records, filter).Percentage
}
