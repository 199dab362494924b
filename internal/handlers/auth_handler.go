// internal/handlers/auth_handler.go
package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

// =========================
// REGISTER (admin/manager provisions users in-house)
// =========================
type RegisterReq struct {
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	ManagerID string `json:"manager_id"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.ManagerID = strings.TrimSpace(req.ManagerID)

	role := models.RoleMember
	if req.Role != "" {
		role = models.UserRole(strings.ToUpper(strings.TrimSpace(req.Role)))
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
	}

	var managerID *string
	if req.ManagerID != "" {
		if err := uuid.Validate(req.ManagerID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manager_id must be a uuid"})
			return
		}
		managerID = &req.ManagerID
	}

	if err := utils.ValidatePasswordStrong(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var exists models.User
	if err := h.DB.Where("email = ?", req.Email).First(&exists).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already used"})
		return
	}

	pwHash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
		return
	}

	secret, otpauth, err := utils.GenerateTOTPSecret("AttendanceApp", req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp failed"})
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Role:         role,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: pwHash,
		ManagerID:    managerID,
		IsActive:     true,
		TOTPSecret:   secret,
		TOTPEnabled:  false,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created",
		"user": gin.H{
			"id":         user.ID,
			"full_name":  user.FullName,
			"email":      user.Email,
			"role":       user.Role,
			"manager_id": user.ManagerID,
		},
		// Optional second factor; enable via /auth/totp/verify.
		"otpauth": otpauth,
	})
}

// =========================
// VERIFY TOTP SETUP
// =========================
type VerifyTotpReq struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h *AuthHandler) VerifyTOTPSetup(c *gin.Context) {
	var req VerifyTotpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
		return
	}
	if u.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not initialized"})
		return
	}
	if !utils.VerifyTOTP(code, u.TOTPSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid totp"})
		return
	}

	u.TOTPEnabled = true
	if err := h.DB.Save(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "totp enabled"})
}

// =========================
// LOGIN
// =========================
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Required only for accounts that enabled TOTP.
	TOTPCode string `json:"totp_code"`
}

func lockMinutes(level int) int {
	if level <= 0 {
		return 5
	}
	return 5 * (level + 1)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	totpCode := strings.TrimSpace(req.TOTPCode)

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !u.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account not active"})
		return
	}

	if u.LockoutUntil != nil && time.Now().Before(*u.LockoutUntil) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "locked", "until": u.LockoutUntil})
		return
	}

	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		u.FailedLoginCount++
		if u.FailedLoginCount >= 5 {
			u.LockoutLevel++
			mins := lockMinutes(u.LockoutLevel - 1)
			t := time.Now().Add(time.Duration(mins) * time.Minute)
			u.LockoutUntil = &t
			u.FailedLoginCount = 0
		}
		_ = h.DB.Save(&u).Error
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if u.TOTPEnabled {
		if totpCode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "totp required"})
			return
		}
		if !utils.VerifyTOTP(totpCode, u.TOTPSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp"})
			return
		}
	}

	// reset lock counters on successful login
	u.FailedLoginCount = 0
	u.LockoutUntil = nil
	_ = h.DB.Save(&u).Error

	secret := os.Getenv("JWT_SECRET")
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"token":  signed,
		"user": gin.H{
			"id":        u.ID,
			"role":      u.Role,
			"full_name": u.FullName,
			"email":     u.Email,
		},
	})
}
