// internal/storage/db.go
package storage

import (
	"fmt"
	"log"
	"os"

	"attendance_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func OpenDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Kolkata",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AttendancePolicy{},
		&models.DayRecord{},
		&models.Punch{},
	); err != nil {
		log.Fatal("failed migrate: ", err)
	}

	return db
}
