package attendance

import (
	"errors"
	"time"

	"attendance_backend/internal/models"

	"gorm.io/gorm"
)

// RecordFilter narrows listing queries. Employee scoping is resolved by the
// caller before it reaches the store; role visibility lives at the directory
// boundary, not here. A From/To range only applies when both ends are set
// (inclusive, lexicographic on the fixed-width date key).
type RecordFilter struct {
	EmployeeID  string
	EmployeeIDs []string
	Date        string
	From, To    string
}

// RecordStore owns punch identity and ordering for day records. The
// evaluator writes status and the computed snapshot through SetEvaluation
// and nothing else.
type RecordStore interface {
	FindOne(employeeID, dateKey string) (*models.DayRecord, error)
	UpsertAppendPunch(employeeID, dateKey string, punch models.Punch) (*models.DayRecord, error)
	UpdatePunch(employeeID, dateKey, punchID string, at time.Time) (*models.DayRecord, error)
	RemovePunch(employeeID, dateKey, punchID string) (*models.DayRecord, error)
	SetEvaluation(employeeID, dateKey string, status models.DayStatus, computed models.Computed) error
	FindMany(f RecordFilter, skip, limit int) ([]models.DayRecord, error)
	Count(f RecordFilter) (int64, error)
	// MonthlyFlags projects the month's records down to their computed
	// late/early-leave flags.
	MonthlyFlags(employeeID, monthPrefix string) ([]models.Computed, error)
}

type gormRecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) RecordStore { return &gormRecordStore{db: db} }

func (s *gormRecordStore) FindOne(employeeID, dateKey string) (*models.DayRecord, error) {
	var rec models.DayRecord
	err := s.db.Preload("Punches").
		Where("employee_id = ? AND date_key = ?", employeeID, dateKey).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormRecordStore) UpsertAppendPunch(employeeID, dateKey string, punch models.Punch) (*models.DayRecord, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rec := models.DayRecord{EmployeeID: employeeID, DateKey: dateKey}
		if err := tx.Where("employee_id = ? AND date_key = ?", employeeID, dateKey).
			Attrs(models.DayRecord{Status: models.StatusPending}).
			FirstOrCreate(&rec).Error; err != nil {
			return err
		}
		punch.DayRecordID = rec.ID
		if err := tx.Create(&punch).Error; err != nil {
			return err
		}
		return tx.Model(&models.DayRecord{}).Where("id = ?", rec.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.FindOne(employeeID, dateKey)
}

func (s *gormRecordStore) UpdatePunch(employeeID, dateKey, punchID string, at time.Time) (*models.DayRecord, error) {
	rec, err := s.FindOne(employeeID, dateKey)
	if err != nil {
		return nil, err
	}
	res := s.db.Model(&models.Punch{}).
		Where("id = ? AND day_record_id = ?", punchID, rec.ID).
		Update("at", at)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPunchNotFound
	}
	if err := s.touch(rec.ID); err != nil {
		return nil, err
	}
	return s.FindOne(employeeID, dateKey)
}

func (s *gormRecordStore) RemovePunch(employeeID, dateKey, punchID string) (*models.DayRecord, error) {
	rec, err := s.FindOne(employeeID, dateKey)
	if err != nil {
		return nil, err
	}
	res := s.db.Where("id = ? AND day_record_id = ?", punchID, rec.ID).
		Delete(&models.Punch{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPunchNotFound
	}
	if err := s.touch(rec.ID); err != nil {
		return nil, err
	}
	return s.FindOne(employeeID, dateKey)
}

// touch bumps updated_at so fresh edits sort first in listings.
func (s *gormRecordStore) touch(recordID uint) error {
	return s.db.Model(&models.DayRecord{}).Where("id = ?", recordID).
		Update("updated_at", time.Now()).Error
}

func (s *gormRecordStore) SetEvaluation(employeeID, dateKey string, status models.DayStatus, computed models.Computed) error {
	res := s.db.Model(&models.DayRecord{}).
		Where("employee_id = ? AND date_key = ?", employeeID, dateKey).
		Updates(map[string]any{
			"status":                  status,
			"computed_worked_minutes": computed.WorkedMinutes,
			"computed_late":           computed.Late,
			"computed_early_leave":    computed.EarlyLeave,
			"computed_in_at":          computed.InAt,
			"computed_out_at":         computed.OutAt,
			"computed_evaluated_at":   computed.EvaluatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *gormRecordStore) scope(f RecordFilter) *gorm.DB {
	q := s.db.Model(&models.DayRecord{})
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	} else if len(f.EmployeeIDs) > 0 {
		q = q.Where("employee_id IN ?", f.EmployeeIDs)
	}
	if f.Date != "" {
		q = q.Where("date_key = ?", f.Date)
	} else if f.From != "" && f.To != "" {
		q = q.Where("date_key >= ? AND date_key <= ?", f.From, f.To)
	}
	return q
}

func (s *gormRecordStore) FindMany(f RecordFilter, skip, limit int) ([]models.DayRecord, error) {
	var rows []models.DayRecord
	err := s.scope(f).Preload("Punches").
		Order("date_key DESC, updated_at DESC").
		Offset(skip).Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *gormRecordStore) Count(f RecordFilter) (int64, error) {
	var n int64
	err := s.scope(f).Count(&n).Error
	return n, err
}

func (s *gormRecordStore) MonthlyFlags(employeeID, monthPrefix string) ([]models.Computed, error) {
	var rows []models.DayRecord
	err := s.db.Model(&models.DayRecord{}).
		Select("computed_late", "computed_early_leave").
		Where("employee_id = ? AND date_key LIKE ?", employeeID, monthPrefix+"%").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Computed, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Computed)
	}
	return out, nil
}
