package models

import (
	"sort"
	"time"
)

type DayStatus string

const (
	StatusPending    DayStatus = "PENDING"
	StatusPresent    DayStatus = "PRESENT"
	StatusHalfDay    DayStatus = "HALF_DAY"
	StatusIncomplete DayStatus = "INCOMPLETE"
	StatusEarlyLeave DayStatus = "EARLY_LEAVE"
)

// Punch is a single timestamped check-in/check-out event inside a day record.
type Punch struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	DayRecordID uint      `gorm:"index;not null" json:"-"`
	At          time.Time `gorm:"not null" json:"at"`
	CreatedAt   time.Time `json:"-"`
}

// Computed is the evaluation snapshot for one day. The evaluator rebuilds it
// wholesale on every run; nothing else writes these fields.
type Computed struct {
	WorkedMinutes int        `json:"workedMinutes"`
	Late          bool       `json:"late"`
	EarlyLeave    bool       `json:"earlyLeave"`
	InAt          *time.Time `json:"inAt"`
	OutAt         *time.Time `json:"outAt"`
	EvaluatedAt   *time.Time `json:"evaluatedAt"`
}

// DayRecord aggregates all punches and the evaluation result for one
// employee on one calendar date (date key in the fixed business timezone).
type DayRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID string    `gorm:"type:uuid;not null;uniqueIndex:uniq_day_records_employee_date" json:"employee_id"`
	DateKey    string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_day_records_employee_date;index" json:"date"`
	Punches    []Punch   `gorm:"foreignKey:DayRecordID;constraint:OnDelete:CASCADE" json:"punches"`
	Status     DayStatus `gorm:"type:varchar(20);not null;default:PENDING" json:"status"`
	Computed   Computed  `gorm:"embedded;embeddedPrefix:computed_" json:"computed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`
}

// Evaluated reports whether the record has been through the evaluator yet.
func (r *DayRecord) Evaluated() bool { return r.Computed.EvaluatedAt != nil }

// SortedPunches returns the punches ascending by timestamp. Ordering is
// derived on every read; storage order is not significant.
func (r *DayRecord) SortedPunches() []Punch {
	out := make([]Punch, len(r.Punches))
	copy(out, r.Punches)
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
