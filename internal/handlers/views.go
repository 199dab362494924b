// internal/handlers/views.go
package handlers

// Read-side formatting only: stored UTC instants come out as ISO strings in
// the fixed business timezone with the explicit +05:30 suffix.

import (
	"time"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/models"
)

type punchView struct {
	ID string `json:"id"`
	At string `json:"at"`
}

type computedView struct {
	WorkedMinutes int     `json:"workedMinutes"`
	Late          bool    `json:"late"`
	EarlyLeave    bool    `json:"earlyLeave"`
	InAt          *string `json:"inAt"`
	OutAt         *string `json:"outAt"`
	EvaluatedAt   *string `json:"evaluatedAt"`
}

type dayRecordView struct {
	ID         uint             `json:"id"`
	UserID     string           `json:"userId"`
	Date       string           `json:"date"`
	PunchCount int              `json:"punchCount"`
	InPunchAt  *string          `json:"inPunchAt"`
	OutPunchAt *string          `json:"outPunchAt"`
	Punches    []punchView      `json:"punches"`
	Status     models.DayStatus `json:"status"`
	Computed   *computedView    `json:"computed"`
}

func istString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := attendance.FormatIST(*t)
	return &s
}

func newDayRecordView(rec *models.DayRecord) dayRecordView {
	sorted := rec.SortedPunches()

	punches := make([]punchView, 0, len(sorted))
	for _, p := range sorted {
		punches = append(punches, punchView{ID: p.ID, At: attendance.FormatIST(p.At)})
	}

	var inAt, outAt *time.Time
	if len(sorted) >= 1 {
		inAt = &sorted[0].At
	}
	if len(sorted) >= 2 {
		outAt = &sorted[len(sorted)-1].At
	}

	var computed *computedView
	if rec.Evaluated() {
		computed = &computedView{
			WorkedMinutes: rec.Computed.WorkedMinutes,
			Late:          rec.Computed.Late,
			EarlyLeave:    rec.Computed.EarlyLeave,
			InAt:          istString(rec.Computed.InAt),
			OutAt:         istString(rec.Computed.OutAt),
			EvaluatedAt:   istString(rec.Computed.EvaluatedAt),
		}
	}

	return dayRecordView{
		ID:         rec.ID,
		UserID:     rec.EmployeeID,
		Date:       rec.DateKey,
		PunchCount: len(sorted),
		InPunchAt:  istString(inAt),
		OutPunchAt: istString(outAt),
		Punches:    punches,
		Status:     rec.Status,
		Computed:   computed,
	}
}
