package records

import "time"

// Absence is a student absence parsed from a portal page.
type Absence struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// "HH:MM", empty when the page does not list times
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	ReasonCode  string    `json:"reason_code,omitempty"`
	IsExcused   bool      `json:"is_excused"`
	IsApproved  bool      `json:"is_approved"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedBy string    `json:"submitted_by,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`

	// Placeholder is set on records synthesized from a keyword found in the
	// page text, their dates are the time of extraction rather than real dates.
	Placeholder bool `json:"placeholder,omitempty"`
}

func (a Absence) Status() AbsenceStatus {
	switch {
	case a.IsExcused:
		return AbsenceExcused
	case a.IsApproved:
		return AbsenceApproved
	case a.Placeholder:
		return AbsencePending
	}
	return AbsenceUnexcused
}

type AbsenceStatus string

const (
	AbsencePending   AbsenceStatus = "pending"
	AbsenceApproved  AbsenceStatus = "approved"
	AbsenceRejected  AbsenceStatus = "rejected"
	AbsenceExcused   AbsenceStatus = "excused"
	AbsenceUnexcused AbsenceStatus = "unexcused"
)

func (s AbsenceStatus) DisplayName() string {
	switch s {
	case AbsencePending:
		return "Pending"
	case AbsenceApproved:
		return "Approved"
	case AbsenceRejected:
		return "Rejected"
	case AbsenceExcused:
		return "Excused"
	case AbsenceUnexcused:
		return "Unexcused"
	}
	return string(s)
}

type AbsenceType string

const (
	AbsenceIllness  AbsenceType = "illness"
	AbsenceMedical  AbsenceType = "medical"
	AbsenceFamily   AbsenceType = "family"
	AbsenceVacation AbsenceType = "vacation"
	AbsenceOther    AbsenceType = "other"
	AbsenceUnknown  AbsenceType = "unknown"
)

func (t AbsenceType) DisplayName() string {
	switch t {
	case AbsenceIllness:
		return "Illness"
	case AbsenceMedical:
		return "Medical Appointment"
	case AbsenceFamily:
		return "Family Matter"
	case AbsenceVacation:
		return "Vacation"
	case AbsenceOther:
		return "Other"
	}
	return "Unknown"
}
