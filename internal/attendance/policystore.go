package attendance

import (
	"errors"
	"fmt"

	"attendance_backend/internal/models"

	"gorm.io/gorm"
)

// PolicyPatch is a partial update of the singleton policy. Nil fields are
// left untouched.
type PolicyPatch struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`

	LateExemptMinutes         *int `json:"lateExemptMinutes"`
	EarlyExitThresholdMinutes *int `json:"earlyExitThresholdMinutes"`

	AllowedLateCountPerMonth  *int `json:"allowedLateCountPerMonth"`
	AllowedEarlyCountPerMonth *int `json:"allowedEarlyCountPerMonth"`

	HalfDayMinWorkMinutes *int `json:"halfDayMinWorkMinutes"`
	FullDayMinWorkMinutes *int `json:"fullDayMinWorkMinutes"`

	IsActive *bool `json:"isActive"`
}

func (p PolicyPatch) Empty() bool {
	return p.StartTime == nil && p.EndTime == nil &&
		p.LateExemptMinutes == nil && p.EarlyExitThresholdMinutes == nil &&
		p.AllowedLateCountPerMonth == nil && p.AllowedEarlyCountPerMonth == nil &&
		p.HalfDayMinWorkMinutes == nil && p.FullDayMinWorkMinutes == nil &&
		p.IsActive == nil
}

func checkRange(name string, v *int, min, max int) error {
	if v != nil && (*v < min || *v > max) {
		return invalid(fmt.Sprintf("%s must be between %d and %d", name, min, max))
	}
	return nil
}

func checkHHMM(name string, v *string) error {
	if v != nil && !validHHMM(*v) {
		return invalid(name + " must be HH:MM (24h)")
	}
	return nil
}

// mergePolicy validates a patch, applies it to a copy of pol and enforces
// the merged invariant fullDayMinWorkMinutes >= halfDayMinWorkMinutes.
func mergePolicy(pol models.AttendancePolicy, p PolicyPatch) (models.AttendancePolicy, error) {
	if p.Empty() {
		return pol, invalid("no fields provided for update")
	}
	checks := []error{
		checkHHMM("startTime", p.StartTime),
		checkHHMM("endTime", p.EndTime),
		checkRange("lateExemptMinutes", p.LateExemptMinutes, 0, 240),
		checkRange("earlyExitThresholdMinutes", p.EarlyExitThresholdMinutes, 0, 240),
		checkRange("allowedLateCountPerMonth", p.AllowedLateCountPerMonth, 0, 60),
		checkRange("allowedEarlyCountPerMonth", p.AllowedEarlyCountPerMonth, 0, 60),
		checkRange("halfDayMinWorkMinutes", p.HalfDayMinWorkMinutes, 0, 900),
		checkRange("fullDayMinWorkMinutes", p.FullDayMinWorkMinutes, 0, 900),
	}
	for _, err := range checks {
		if err != nil {
			return pol, err
		}
	}

	if p.StartTime != nil {
		pol.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		pol.EndTime = *p.EndTime
	}
	if p.LateExemptMinutes != nil {
		pol.LateExemptMinutes = *p.LateExemptMinutes
	}
	if p.EarlyExitThresholdMinutes != nil {
		pol.EarlyExitThresholdMinutes = *p.EarlyExitThresholdMinutes
	}
	if p.AllowedLateCountPerMonth != nil {
		pol.AllowedLateCountPerMonth = *p.AllowedLateCountPerMonth
	}
	if p.AllowedEarlyCountPerMonth != nil {
		pol.AllowedEarlyCountPerMonth = *p.AllowedEarlyCountPerMonth
	}
	if p.HalfDayMinWorkMinutes != nil {
		pol.HalfDayMinWorkMinutes = *p.HalfDayMinWorkMinutes
	}
	if p.FullDayMinWorkMinutes != nil {
		pol.FullDayMinWorkMinutes = *p.FullDayMinWorkMinutes
	}
	if p.IsActive != nil {
		pol.IsActive = *p.IsActive
	}

	if pol.FullDayMinWorkMinutes < pol.HalfDayMinWorkMinutes {
		return pol, invalid("fullDayMinWorkMinutes must be >= halfDayMinWorkMinutes")
	}
	return pol, nil
}

// PolicyStore serves the singleton attendance policy.
type PolicyStore interface {
	GetOrCreateDefault() (*models.AttendancePolicy, error)
	Patch(p PolicyPatch, updatedBy string) (*models.AttendancePolicy, error)
}

type gormPolicyStore struct {
	db *gorm.DB
}

func NewPolicyStore(db *gorm.DB) PolicyStore { return &gormPolicyStore{db: db} }

func (s *gormPolicyStore) GetOrCreateDefault() (*models.AttendancePolicy, error) {
	var pol models.AttendancePolicy
	err := s.db.Where("key = ?", models.PolicyKeyDefault).First(&pol).Error
	if err == nil {
		return &pol, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pol = models.DefaultAttendancePolicy()
	if err := s.db.Create(&pol).Error; err != nil {
		// Lost a concurrent first-create race; the unique key on the
		// singleton guarantees the row exists now.
		var again models.AttendancePolicy
		if ferr := s.db.Where("key = ?", models.PolicyKeyDefault).First(&again).Error; ferr == nil {
			return &again, nil
		}
		return nil, err
	}
	return &pol, nil
}

func (s *gormPolicyStore) Patch(p PolicyPatch, updatedBy string) (*models.AttendancePolicy, error) {
	pol, err := s.GetOrCreateDefault()
	if err != nil {
		return nil, err
	}
	merged, err := mergePolicy(*pol, p)
	if err != nil {
		return nil, err
	}
	if updatedBy != "" {
		merged.UpdatedBy = &updatedBy
	}
	if err := s.db.Save(&merged).Error; err != nil {
		return nil, err
	}
	return &merged, nil
}
