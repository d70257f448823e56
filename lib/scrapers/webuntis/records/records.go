// Package records holds the values extracted from portal pages.
//
// Records are snapshots, a new set is created by every extraction and
// nothing in this module modifies them afterwards. IDs are random and
// say nothing about the contents of the record.
package records

import "github.com/google/uuid"

// Kind is one of the kinds of records that can be extracted.
type Kind string

const (
	KindAbsence  Kind = "absence"
	KindExam     Kind = "exam"
	KindHomework Kind = "homework"
	KindPeriod   Kind = "period"
)

var Kinds = []Kind{KindAbsence, KindExam, KindHomework, KindPeriod}

func NewID() string {
	return uuid.NewString()
}
