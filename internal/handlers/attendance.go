// internal/handlers/attendance.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	Service   *attendance.Service
	Records   attendance.RecordStore
	Directory attendance.Directory
}

func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	records := attendance.NewRecordStore(db)
	policies := attendance.NewPolicyStore(db)
	return &AttendanceHandler{
		Service:   attendance.NewService(records, policies),
		Records:   records,
		Directory: attendance.NewDirectory(db),
	}
}

func writeAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, attendance.ErrPunchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case attendance.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "detail": err.Error()})
	}
}

// =========================
// PUNCH
// =========================
type PunchReq struct {
	// Optional date-key override, for testing and backfill.
	Date string `json:"date"`
}

func (h *AttendanceHandler) Punch(c *gin.Context) {
	var req PunchReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	rec, err := h.Service.RecordPunch(userID, strings.TrimSpace(req.Date), time.Now())
	if err != nil {
		writeAttendanceError(c, err)
		return
	}

	view := newDayRecordView(rec)
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Punch recorded",
		"userId":     view.UserID,
		"date":       view.Date,
		"punchCount": view.PunchCount,
		"inPunchAt":  view.InPunchAt,
		"outPunchAt": view.OutPunchAt,
		"punches":    view.Punches,
		"status":     view.Status,
		"computed":   view.Computed,
	})
}

// =========================
// LIST (role-scoped)
// =========================
func (h *AttendanceHandler) List(c *gin.Context) {
	me := c.GetString("user_id")
	role := models.UserRole(c.GetString("role"))

	date := strings.TrimSpace(c.Query("date"))
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	target := strings.TrimSpace(c.Query("userId"))

	for _, d := range []string{date, from, to} {
		if d != "" && !attendance.ValidDateKey(d) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return
		}
	}
	if target != "" {
		if err := uuid.Validate(target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be a uuid"})
			return
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	skip := (page - 1) * limit

	f := attendance.RecordFilter{Date: date, From: from, To: to}
	switch role {
	case models.RoleAdmin, models.RoleManager:
		f.EmployeeID = target
	case models.RoleTeamLead:
		reportees, err := h.Directory.ReporteeIDs(me)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed", "detail": err.Error()})
			return
		}
		allowed := append([]string{me}, reportees...)
		if target != "" {
			ok := false
			for _, id := range allowed {
				if id == target {
					ok = true
					break
				}
			}
			if !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "cannot view this user's attendance"})
				return
			}
			f.EmployeeID = target
		} else {
			f.EmployeeIDs = allowed
		}
	default:
		if target != "" && target != me {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot view this user's attendance"})
			return
		}
		f.EmployeeID = me
	}

	total, err := h.Records.Count(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed", "detail": err.Error()})
		return
	}
	rows, err := h.Records.FindMany(f, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed", "detail": err.Error()})
		return
	}

	items := make([]dayRecordView, 0, len(rows))
	for i := range rows {
		items = append(items, newDayRecordView(&rows[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"items": items,
	})
}

// =========================
// EDIT / DELETE PUNCH (privileged)
// =========================
type EditPunchReq struct {
	At string `json:"at" binding:"required"`
}

func punchParams(c *gin.Context) (userID, dateKey, punchID string, ok bool) {
	userID = strings.TrimSpace(c.Param("user_id"))
	dateKey = strings.TrimSpace(c.Param("date"))
	punchID = strings.TrimSpace(c.Param("punch_id"))

	if uuid.Validate(userID) != nil || uuid.Validate(punchID) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be uuids"})
		return "", "", "", false
	}
	if !attendance.ValidDateKey(dateKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return "", "", "", false
	}
	return userID, dateKey, punchID, true
}

func (h *AttendanceHandler) EditPunch(c *gin.Context) {
	userID, dateKey, punchID, ok := punchParams(c)
	if !ok {
		return
	}

	var req EditPunchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(req.At))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at must be an ISO datetime with offset (Z or +05:30)"})
		return
	}

	rec, err := h.Service.EditPunch(userID, dateKey, punchID, at)
	if err != nil {
		writeAttendanceError(c, err)
		return
	}

	view := newDayRecordView(rec)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Punch updated",
		"userId":     view.UserID,
		"date":       view.Date,
		"punchCount": view.PunchCount,
		"inPunchAt":  view.InPunchAt,
		"outPunchAt": view.OutPunchAt,
		"punches":    view.Punches,
		"status":     view.Status,
		"computed":   view.Computed,
	})
}

func (h *AttendanceHandler) DeletePunch(c *gin.Context) {
	userID, dateKey, punchID, ok := punchParams(c)
	if !ok {
		return
	}

	rec, err := h.Service.DeletePunch(userID, dateKey, punchID)
	if err != nil {
		writeAttendanceError(c, err)
		return
	}

	view := newDayRecordView(rec)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Punch deleted",
		"userId":     view.UserID,
		"date":       view.Date,
		"punchCount": view.PunchCount,
		"inPunchAt":  view.InPunchAt,
		"outPunchAt": view.OutPunchAt,
		"punches":    view.Punches,
		"status":     view.Status,
		"computed":   view.Computed,
	})
}
