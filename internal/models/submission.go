package models

// Submission is the payload pushed to the remote attendance API after a
// session is committed locally.
type Submission struct {
	SectionID string             `json:"sectionId"`
	Date      string             `json:"date"`
	MarkedBy  string             `json:"markedBy"`
	Records   []SubmissionRecord `json:"records"`
}

type SubmissionRecord struct {
	Student string `json:"student"`
	Status  string `json:"status"`
}
