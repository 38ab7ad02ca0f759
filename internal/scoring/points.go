package scoring

import (
	"aegira/internal/absence"
	"aegira/internal/attendance"
)

type Category string

const (
	CategoryGreen        Category = "GREEN"
	CategoryAbsent       Category = "ABSENT"
	CategoryExcused      Category = "EXCUSED"
	CategoryUnexcused    Category = "UNEXCUSED"
	CategoryPending      Category = "PENDING"
	CategoryUnclassified Category = "UNCLASSIFIED"
)

type dayValue struct {
	Category Category
	Points   int64
	Counted  bool
}

// attendanceValues is the status→points table for stored attendance rows.
// Scoring-model changes are edits here, not new branches in the classifier.
// YELLOW rows predate the retirement of the late-penalty model: any in-shift
// check-in now scores as GREEN.
var attendanceValues = map[string]dayValue{
	attendance.StatusGreen:   {CategoryGreen, 100, true},
	attendance.StatusYellow:  {CategoryGreen, 100, true},
	attendance.StatusAbsent:  {CategoryAbsent, 0, true},
	attendance.StatusExcused: {CategoryExcused, 0, false},
}

// absenceValues maps absence-record statuses. A pending justification counts
// as provisionally unexcused until the leader reviews it.
var absenceValues = map[string]dayValue{
	absence.StatusExcused:              {CategoryExcused, 0, false},
	absence.StatusUnexcused:            {CategoryUnexcused, 0, true},
	absence.StatusPendingJustification: {CategoryPending, 0, true},
}

var (
	leaveValue          = dayValue{CategoryExcused, 0, false}
	implicitAbsentValue = dayValue{CategoryAbsent, 0, true}
)
