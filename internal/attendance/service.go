package attendance

import (
	"time"

	"attendance_backend/internal/models"

	"github.com/google/uuid"
)

// Service is the ingestion side: it appends and mutates punches, then runs
// the evaluator synchronously so status and computed never drift from the
// punch set. Punch mutation and evaluation are two separate store writes;
// concurrent operations on the same (employee, date) may interleave and the
// last evaluation write wins.
type Service struct {
	Records RecordStore
	Eval    *Evaluator
}

func NewService(records RecordStore, policies PolicyStore) *Service {
	return &Service{
		Records: records,
		Eval:    &Evaluator{Records: records, Policies: policies},
	}
}

// RecordPunch appends a punch at the given instant. An empty dateKey means
// "today" in IST; an explicit key is accepted unchecked against at, for
// testing and backfill.
func (s *Service) RecordPunch(employeeID, dateKey string, at time.Time) (*models.DayRecord, error) {
	if dateKey == "" {
		dateKey = DateKey(at)
	} else if !ValidDateKey(dateKey) {
		return nil, invalid("date must be YYYY-MM-DD")
	}

	punch := models.Punch{ID: uuid.NewString(), At: at}
	if _, err := s.Records.UpsertAppendPunch(employeeID, dateKey, punch); err != nil {
		return nil, err
	}
	if _, err := s.Eval.Evaluate(employeeID, dateKey); err != nil {
		return nil, err
	}
	return s.Records.FindOne(employeeID, dateKey)
}

// EditPunch moves one punch to a new instant and re-evaluates the day.
func (s *Service) EditPunch(employeeID, dateKey, punchID string, at time.Time) (*models.DayRecord, error) {
	if !ValidDateKey(dateKey) {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if _, err := s.Records.UpdatePunch(employeeID, dateKey, punchID, at); err != nil {
		return nil, err
	}
	if _, err := s.Eval.Evaluate(employeeID, dateKey); err != nil {
		return nil, err
	}
	return s.Records.FindOne(employeeID, dateKey)
}

// DeletePunch removes one punch and re-evaluates the day.
func (s *Service) DeletePunch(employeeID, dateKey, punchID string) (*models.DayRecord, error) {
	if !ValidDateKey(dateKey) {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if _, err := s.Records.RemovePunch(employeeID, dateKey, punchID); err != nil {
		return nil, err
	}
	if _, err := s.Eval.Evaluate(employeeID, dateKey); err != nil {
		return nil, err
	}
	return s.Records.FindOne(employeeID, dateKey)
}
