package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeriodFlagsFollowStatus(t *testing.T) {
	for _, status := range []PeriodStatus{
		StatusNormal,
		StatusCancelled,
		StatusSubstituted,
		StatusAbsent,
		StatusExcused,
		StatusExam,
		StatusRescheduled,
		StatusUnknown,
	} {
		p := Period{Status: status}
		require.Equal(t, status == StatusAbsent, p.IsAbsent(), status)
		require.Equal(t, status == StatusCancelled, p.IsCancelled(), status)
		require.Equal(t, status == StatusExam, p.HasExam(), status)
		require.Equal(t, status == StatusSubstituted, p.IsSubstituted(), status)
		require.NotEmpty(t, status.DisplayName())
	}
}

func TestDisplayNames(t *testing.T) {
	require.Equal(t, "Cancelled", StatusCancelled.DisplayName())
	require.Equal(t, "Unknown", PeriodStatus("other").DisplayName())
	require.Equal(t, "Urgent", PriorityUrgent.DisplayName())
	require.Equal(t, "Normal", HomeworkPriority("").DisplayName())
	require.Equal(t, "Oral Exam", ExamOral.DisplayName())
	require.Equal(t, "Exam", ExamType("exam").DisplayName())
	require.Equal(t, "Medical Appointment", AbsenceMedical.DisplayName())
	require.Equal(t, "Unexcused", AbsenceUnexcused.DisplayName())
}

func TestAbsenceStatus(t *testing.T) {
	require.Equal(t, AbsenceExcused, Absence{IsExcused: true, IsApproved: true}.Status())
	require.Equal(t, AbsenceApproved, Absence{IsApproved: true}.Status())
	require.Equal(t, AbsencePending, Absence{Placeholder: true}.Status())
	require.Equal(t, AbsenceUnexcused, Absence{}.Status())
}

func TestNewID(t *testing.T) {
	require.NotEqual(t, NewID(), NewID())
	require.Len(t, NewID(), 36)
}

func TestUnknownTimesAreEncoded(t *testing.T) {
	absence, err := json.Marshal(Absence{})
	require.NoError(t, err)
	require.Contains(t, string(absence), `"submitted_at":"0001-01-01T00:00:00Z"`)

	homework, err := json.Marshal(Homework{})
	require.NoError(t, err)
	require.Contains(t, string(homework), `"completed_date":"0001-01-01T00:00:00Z"`)
}
