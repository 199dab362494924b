// internal/handlers/health.go
package handlers

import (
	"net/http"
	"time"

	"attendance_backend/internal/attendance"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler { return &HealthHandler{DB: db} }

func (h *HealthHandler) Check(c *gin.Context) {
	dbUp := false
	if sqlDB, err := h.DB.DB(); err == nil {
		dbUp = sqlDB.Ping() == nil
	}

	code := http.StatusOK
	readiness := "ready"
	postgres := "up"
	if !dbUp {
		code = http.StatusServiceUnavailable
		readiness = "not_ready"
		postgres = "down"
	}

	c.JSON(code, gin.H{
		"status":       "ok",
		"readiness":    readiness,
		"dependencies": gin.H{"postgres": postgres},
		"timestamp":    attendance.FormatIST(time.Now()),
	})
}
