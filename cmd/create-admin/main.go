// cmd/create-admin/main.go
//
// One-shot seeding of the first ADMIN account so /auth/register has someone
// to call it.
package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"attendance_backend/internal/models"
	"attendance_backend/internal/storage"
	"attendance_backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin@123"
	}

	db := storage.OpenDB()

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("admin already exists: %s", email)
		return
	}

	pwHash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatal("hash failed: ", err)
	}

	admin := models.User{
		ID:           uuid.NewString(),
		Role:         models.RoleAdmin,
		FullName:     "Super Admin",
		Email:        email,
		PasswordHash: pwHash,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("create admin failed: ", err)
	}

	log.Printf("admin created: %s (id %s)", admin.Email, admin.ID)
}
