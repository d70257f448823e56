package records

import "time"

// Period is a single lesson of the timetable along with whatever status
// the page shows for it.
type Period struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	// "HH:MM"
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Subject     string `json:"subject,omitempty"`
	SubjectCode string `json:"subject_code,omitempty"`
	Teacher     string `json:"teacher,omitempty"`
	TeacherCode string `json:"teacher_code,omitempty"`
	Room        string `json:"room,omitempty"`
	RoomCode    string `json:"room_code,omitempty"`
	// zero when unknown
	PeriodNumber int               `json:"period_number,omitempty"`
	Status       PeriodStatus      `json:"status"`
	StatusText   string            `json:"status_text,omitempty"`
	Substitution *SubstitutionInfo `json:"substitution,omitempty"`
	ExamInfo     string            `json:"exam_info,omitempty"`
}

func (p Period) IsAbsent() bool {
	return p.Status == StatusAbsent
}

func (p Period) IsCancelled() bool {
	return p.Status == StatusCancelled
}

func (p Period) HasExam() bool {
	return p.Status == StatusExam
}

func (p Period) IsSubstituted() bool {
	return p.Status == StatusSubstituted
}

type PeriodStatus string

const (
	StatusNormal      PeriodStatus = "normal"
	StatusCancelled   PeriodStatus = "cancelled"
	StatusSubstituted PeriodStatus = "substituted"
	StatusAbsent      PeriodStatus = "absent"
	StatusExcused     PeriodStatus = "excused"
	StatusExam        PeriodStatus = "exam"
	StatusRescheduled PeriodStatus = "rescheduled"
	StatusUnknown     PeriodStatus = "unknown"
)

func (s PeriodStatus) DisplayName() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusCancelled:
		return "Cancelled"
	case StatusSubstituted:
		return "Substituted"
	case StatusAbsent:
		return "Absent"
	case StatusExcused:
		return "Excused"
	case StatusExam:
		return "Exam"
	case StatusRescheduled:
		return "Rescheduled"
	}
	return "Unknown"
}

type SubstitutionInfo struct {
	OriginalTeacher   string `json:"original_teacher,omitempty"`
	SubstituteTeacher string `json:"substitute_teacher,omitempty"`
	OriginalRoom      string `json:"original_room,omitempty"`
	SubstituteRoom    string `json:"substitute_room,omitempty"`
	OriginalSubject   string `json:"original_subject,omitempty"`
	SubstituteSubject string `json:"substitute_subject,omitempty"`
	Reason            string `json:"reason,omitempty"`
	Note              string `json:"note,omitempty"`
}
