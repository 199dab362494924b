package attendance

import (
	"time"

	"attendance_backend/internal/models"
)

// Evaluator turns a day's punch set, the active policy and the month's
// late/early history into a status and a computed snapshot, then persists
// both. It holds no state between calls; the record store is the sole source
// of truth.
type Evaluator struct {
	Records  RecordStore
	Policies PolicyStore
}

// computeWorkedMinutes pairs punches consecutively (1st-in/2nd-out, ...) and
// sums whole minutes per pair. Pairs that do not move forward in time
// contribute nothing; an odd trailing punch is ignored here and surfaces as
// INCOMPLETE in the status instead.
func computeWorkedMinutes(punches []time.Time) int {
	total := 0
	for i := 0; i+1 < len(punches); i += 2 {
		if d := punches[i+1].Sub(punches[i]); d > 0 {
			total += int(d / time.Minute)
		}
	}
	return total
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (e *Evaluator) monthlyCounts(employeeID, monthPrefix string) (lateCount, earlyCount int, err error) {
	flags, err := e.Records.MonthlyFlags(employeeID, monthPrefix)
	if err != nil {
		return 0, 0, err
	}
	for _, f := range flags {
		if f.Late {
			lateCount++
		}
		if f.EarlyLeave {
			earlyCount++
		}
	}
	return lateCount, earlyCount, nil
}

// Evaluate recomputes and persists the status and computed snapshot for one
// (employee, date). Returns ErrRecordNotFound if no day record exists.
func (e *Evaluator) Evaluate(employeeID, dateKey string) (*models.DayRecord, error) {
	policy, err := e.Policies.GetOrCreateDefault()
	if err != nil {
		return nil, err
	}
	rec, err := e.Records.FindOne(employeeID, dateKey)
	if err != nil {
		return nil, err
	}

	sorted := rec.SortedPunches()
	times := make([]time.Time, len(sorted))
	for i, p := range sorted {
		times[i] = p.At
	}

	count := len(times)
	var inAt, outAt *time.Time
	if count >= 1 {
		inAt = &times[0]
	}
	if count >= 2 {
		outAt = &times[count-1]
	}

	worked := 0
	late := false
	earlyLeave := false
	if count > 0 {
		worked = computeWorkedMinutes(times)
		startMin := hhmmToMinutes(policy.StartTime) + policy.LateExemptMinutes
		endMin := hhmmToMinutes(policy.EndTime) - policy.EarlyExitThresholdMinutes
		late = MinutesOfDay(*inAt) > startMin
		if outAt != nil {
			earlyLeave = MinutesOfDay(*outAt) < endMin
		}
	}

	status := models.StatusPresent
	switch {
	case count == 0:
		status = models.StatusIncomplete
	case count%2 == 1:
		status = models.StatusIncomplete
	case worked < policy.HalfDayMinWorkMinutes:
		status = models.StatusIncomplete
	case worked < policy.FullDayMinWorkMinutes:
		status = models.StatusHalfDay
	}
	if earlyLeave && status != models.StatusIncomplete {
		status = models.StatusEarlyLeave
	}

	lateCount, earlyCount, err := e.monthlyCounts(employeeID, MonthPrefix(dateKey))
	if err != nil {
		return nil, err
	}

	// The month totals include this record's previously stored flags; swap
	// them out for the freshly computed ones before checking the allowance,
	// otherwise a re-evaluation double-counts itself.
	projectedLate := lateCount + boolInt(late) - boolInt(rec.Computed.Late)
	projectedEarly := earlyCount + boolInt(earlyLeave) - boolInt(rec.Computed.EarlyLeave)

	if (projectedLate > policy.AllowedLateCountPerMonth ||
		projectedEarly > policy.AllowedEarlyCountPerMonth) &&
		status != models.StatusIncomplete {
		// Monthly escalation wins over the single-day EARLY_LEAVE status;
		// computed.earlyLeave still records the signal.
		status = models.StatusHalfDay
	}

	now := time.Now()
	computed := models.Computed{
		WorkedMinutes: worked,
		Late:          late,
		EarlyLeave:    earlyLeave,
		InAt:          inAt,
		OutAt:         outAt,
		EvaluatedAt:   &now,
	}
	if err := e.Records.SetEvaluation(employeeID, dateKey, status, computed); err != nil {
		return nil, err
	}
	rec.Status = status
	rec.Computed = computed
	return rec, nil
}
