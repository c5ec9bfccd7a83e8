package models

// Snapshot is everything the tracker persists between runs.
type Snapshot struct {
	IsAuthenticated   bool                 `json:"isAuthenticated"`
	TeacherName       string               `json:"teacherName"`
	Token             string               `json:"token,omitempty"`
	IsDarkMode        bool                 `json:"isDarkMode"`
	SelectedSection   string               `json:"selectedSection"`
	CurrentSessionID  string               `json:"currentSessionId"`
	Sections          []SectionRef         `json:"sections"`
	Students          map[string][]Student `json:"students"`
	Sessions          []AttendanceSession  `json:"attendanceSessions"`
	History           []AttendanceRecord   `json:"attendanceHistory"`
	CurrentAttendance map[string]Status    `json:"currentAttendance"`
	ProcessedStudents []string             `json:"processedStudents"`
}
