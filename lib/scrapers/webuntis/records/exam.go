package records

import "time"

// placeholder times for exams whose page has no time column
const (
	DefaultExamStart = "08:00"
	DefaultExamEnd   = "09:30"
)

type Exam struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	// "HH:MM"
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Subject     string `json:"subject"`
	SubjectCode string `json:"subject_code,omitempty"`
	Teacher     string `json:"teacher,omitempty"`
	TeacherCode string `json:"teacher_code,omitempty"`
	Room        string `json:"room,omitempty"`
	RoomCode    string `json:"room_code,omitempty"`
	// a free form tag, usually one of the ExamType values or the keyword
	// the exam was found by
	ExamType    string `json:"exam_type"`
	Description string `json:"description,omitempty"`
	// zero when unknown
	Duration  time.Duration `json:"duration,omitempty"`
	IsWritten bool          `json:"is_written"`
	IsOral    bool          `json:"is_oral"`

	Placeholder bool `json:"placeholder,omitempty"`
}

type ExamType string

const (
	ExamWritten      ExamType = "written"
	ExamOral         ExamType = "oral"
	ExamPractical    ExamType = "practical"
	ExamTest         ExamType = "test"
	ExamQuiz         ExamType = "quiz"
	ExamPresentation ExamType = "presentation"
	ExamProject      ExamType = "project"
	ExamUnknown      ExamType = "unknown"
)

func (t ExamType) DisplayName() string {
	switch t {
	case ExamWritten:
		return "Written Exam"
	case ExamOral:
		return "Oral Exam"
	case ExamPractical:
		return "Practical Exam"
	case ExamTest:
		return "Test"
	case ExamQuiz:
		return "Quiz"
	case ExamPresentation:
		return "Presentation"
	case ExamProject:
		return "Project"
	}
	return "Exam"
}
