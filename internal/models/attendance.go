package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layouts used for both writing and reading record timestamps. Dates are
// compared as strings by the correction path, so they must never change.
const (
	DateLayout = "01/02/2006"
	TimeLayout = "3:04:05 PM"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Wire returns the vocabulary of the remote attendance API.
func (s Status) Wire() string {
	if s == StatusPresent {
		return "Present"
	}
	return "Absent"
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown attendance status %q", raw)
	}
	return status, nil
}

type AttendanceRecord struct {
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    Status `json:"status" validate:"oneof=present absent"`
	Section   string `json:"section"`
}

func (r AttendanceRecord) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

type AttendanceSession struct {
	ID            string             `json:"id"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Section       string             `json:"section"`
	TotalStudents int                `json:"totalStudents"`
	PresentCount  int                `json:"presentCount"`
	AbsentCount   int                `json:"absentCount"`
	Records       []AttendanceRecord `json:"records"`
}

// Recount derives the counters from the record list.
func (s *AttendanceSession) Recount() {
	s.PresentCount, s.AbsentCount = 0, 0
	for _, r := range s.Records {
		if r.Status == StatusPresent {
			s.PresentCount++
		} else {
			s.AbsentCount++
		}
	}
	s.TotalStudents = len(s.Records)
}

func (s AttendanceSession) Percentage() int {
	if s.TotalStudents == 0 {
		return 0
	}
	return int(math.Round(float64(s.PresentCount) / float64(s.TotalStudents) * 100))
}

func (s AttendanceSession) Clone() AttendanceSession {
	out := s
	out.Records = append([]AttendanceRecord(nil), s.Records...)
	return out
}
