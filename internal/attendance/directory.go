package attendance

import (
	"attendance_backend/internal/models"

	"gorm.io/gorm"
)

// Directory answers manager-relationship questions for visibility scoping.
// The core trusts the already-authenticated identity and role supplied by
// the caller; it never authenticates anyone itself.
type Directory interface {
	ReporteeIDs(managerID string) ([]string, error)
}

type gormDirectory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) Directory { return &gormDirectory{db: db} }

func (d *gormDirectory) ReporteeIDs(managerID string) ([]string, error) {
	var ids []string
	err := d.db.Model(&models.User{}).
		Where("manager_id = ?", managerID).
		Pluck("id", &ids).Error
	return ids, err
}
