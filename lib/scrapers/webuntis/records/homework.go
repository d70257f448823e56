package records

import "time"

type Homework struct {
	ID           string       `json:"id"`
	Subject      string       `json:"subject"`
	SubjectCode  string       `json:"subject_code,omitempty"`
	Teacher      string       `json:"teacher,omitempty"`
	TeacherCode  string       `json:"teacher_code,omitempty"`
	AssignedDate time.Time    `json:"assigned_date"`
	DueDate      time.Time    `json:"due_date"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Attachments  []Attachment `json:"attachments"`
	IsCompleted  bool         `json:"is_completed"`
	// zero unless the page says when it was completed
	CompletedDate time.Time        `json:"completed_date"`
	Priority      HomeworkPriority `json:"priority"`

	Placeholder bool `json:"placeholder,omitempty"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	// bytes, zero when unknown
	FileSize int64  `json:"file_size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type HomeworkPriority string

const (
	PriorityLow    HomeworkPriority = "low"
	PriorityNormal HomeworkPriority = "normal"
	PriorityHigh   HomeworkPriority = "high"
	PriorityUrgent HomeworkPriority = "urgent"
)

func (p HomeworkPriority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return "Normal"
}
