package types

import "time"

// Exam types accepted by the archive.
const (
	ExamTypeMid = "Mid"
	ExamTypeEnd = "End"
)

// Paper represents one uploaded exam paper in the catalog.
type Paper struct {
	ID               string    `json:"id"`
	Subject          string    `json:"subject"`
	Year             int       `json:"year"`     // course year, 1-4
	Semester         int       `json:"semester"` // 1-8
	ExamType         string    `json:"exam_type"`
	ExamYear         int       `json:"exam_year"`               // start year of the exam session, used for sorting
	AcademicYear     string    `json:"academic_year,omitempty"` // "2024-2025" when a range was given
	OriginalFilename string    `json:"original_filename"`
	StoredPath       string    `json:"stored_path"` // forward-slash path relative to the uploads root
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Valid reports whether the record carries every attribute required for it
// to be searchable.
func (p Paper) Valid() bool {
	return p.ID != "" &&
		p.Subject != "" &&
		p.Year != 0 &&
		p.Semester != 0 &&
		(p.ExamType == ExamTypeMid || p.ExamType == ExamTypeEnd) &&
		p.StoredPath != ""
}

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// UploadResult reports the outcome of a multi-file upload.
type UploadResult struct {
	Saved   []Paper  `json:"saved"`
	Skipped []string `json:"skipped,omitempty"`
}
