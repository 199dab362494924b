// internal/models/policy.go
package models

import "time"

// PolicyKeyDefault is the singleton key: exactly one policy row is active.
const PolicyKeyDefault = "DEFAULT"

// AttendancePolicy holds the work-window, tolerances and monthly allowances
// the evaluator runs against. Mutated in place; no history of prior versions
// is kept, so past dates re-evaluate under whatever is active right now.
type AttendancePolicy struct {
	ID  uint   `gorm:"primaryKey" json:"-"`
	Key string `gorm:"column:key;uniqueIndex;not null" json:"-"`

	StartTime string `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime   string `gorm:"type:varchar(5);not null" json:"endTime"`

	LateExemptMinutes         int `gorm:"not null" json:"lateExemptMinutes"`
	EarlyExitThresholdMinutes int `gorm:"not null" json:"earlyExitThresholdMinutes"`

	AllowedLateCountPerMonth  int `gorm:"not null" json:"allowedLateCountPerMonth"`
	AllowedEarlyCountPerMonth int `gorm:"not null" json:"allowedEarlyCountPerMonth"`

	HalfDayMinWorkMinutes int `gorm:"not null" json:"halfDayMinWorkMinutes"`
	FullDayMinWorkMinutes int `gorm:"not null" json:"fullDayMinWorkMinutes"`

	IsActive  bool    `gorm:"not null;default:true" json:"isActive"`
	UpdatedBy *string `gorm:"type:uuid" json:"updatedBy"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func DefaultAttendancePolicy() AttendancePolicy {
	return AttendancePolicy{
		Key:                       PolicyKeyDefault,
		StartTime:                 "09:30",
		EndTime:                   "18:30",
		LateExemptMinutes:         10,
		EarlyExitThresholdMinutes: 10,
		AllowedLateCountPerMonth:  3,
		AllowedEarlyCountPerMonth: 3,
		HalfDayMinWorkMinutes:     240,
		FullDayMinWorkMinutes:     480,
		IsActive:                  true,
	}
}
