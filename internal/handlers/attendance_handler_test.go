package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/models"
)

const (
	adminID    = "0b54c3a4-1f7e-4f43-9a5e-111111111111"
	leadID     = "0b54c3a4-1f7e-4f43-9a5e-222222222222"
	memberID   = "0b54c3a4-1f7e-4f43-9a5e-333333333333"
	reporteeID = "0b54c3a4-1f7e-4f43-9a5e-444444444444"
	strangerID = "0b54c3a4-1f7e-4f43-9a5e-555555555555"
)

type fakeDirectory struct {
	reports map[string][]string
}

func (d fakeDirectory) ReporteeIDs(managerID string) ([]string, error) {
	return d.reports[managerID], nil
}

// testAuth stands in for the JWT middleware: identity comes from headers.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User-ID"))
		c.Set("role", c.GetHeader("X-User-Role"))
	}
}

func newAttendanceRouter() (*gin.Engine, *attendance.Service) {
	gin.SetMode(gin.TestMode)

	recs := attendance.NewMemRecordStore()
	pols := attendance.NewMemPolicyStore()
	svc := attendance.NewService(recs, pols)

	h := &AttendanceHandler{
		Service: svc,
		Records: recs,
		Directory: fakeDirectory{reports: map[string][]string{
			leadID: {reporteeID},
		}},
	}

	r := gin.New()
	grp := r.Group("/api/v1/attendance", testAuth())
	{
		grp.POST("/punch", h.Punch)
		grp.GET("", h.List)
		grp.PATCH("/:user_id/:date/punches/:punch_id", h.EditPunch)
		grp.DELETE("/:user_id/:date/punches/:punch_id", h.DeletePunch)
	}
	return r, svc
}

func doReq(t *testing.T, r http.Handler, method, path, userID string, role models.UserRole, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("X-User-Role", string(role))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
		}
	}
	return w, parsed
}

func istAt(t *testing.T, dateKey, hhmm string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", dateKey+" "+hhmm, attendance.IST)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func seedDay(t *testing.T, svc *attendance.Service, userID, dateKey string, times ...string) {
	t.Helper()
	for _, hhmm := range times {
		if _, err := svc.RecordPunch(userID, dateKey, istAt(t, dateKey, hhmm)); err != nil {
			t.Fatal(err)
		}
	}
}

// =========================
// PUNCH
// =========================

func TestPunchCreatesRecordForToday(t *testing.T) {
	r, _ := newAttendanceRouter()

	w, body := doReq(t, r, http.MethodPost, "/api/v1/attendance/punch", memberID, models.RoleMember, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\n%s", w.Code, w.Body.String())
	}
	if body["date"] != attendance.DateKey(time.Now()) {
		t.Errorf("date = %v, want the current business day", body["date"])
	}
	if body["status"] != string(models.StatusIncomplete) {
		t.Errorf("status = %v, want INCOMPLETE after a single punch", body["status"])
	}
	if body["punchCount"] != float64(1) {
		t.Errorf("punchCount = %v, want 1", body["punchCount"])
	}
	if body["outPunchAt"] != nil {
		t.Errorf("outPunchAt = %v, want null with one punch", body["outPunchAt"])
	}
}

func TestPunchHonorsExplicitDate(t *testing.T) {
	r, _ := newAttendanceRouter()

	w, body := doReq(t, r, http.MethodPost, "/api/v1/attendance/punch", memberID, models.RoleMember, `{"date":"2024-12-31"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\n%s", w.Code, w.Body.String())
	}
	if body["date"] != "2024-12-31" {
		t.Errorf("date = %v, want the override", body["date"])
	}
}

func TestPunchRejectsMalformedDate(t *testing.T) {
	r, _ := newAttendanceRouter()

	w, _ := doReq(t, r, http.MethodPost, "/api/v1/attendance/punch", memberID, models.RoleMember, `{"date":"31-12-2024"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// =========================
// LIST (role-scoped)
// =========================

func TestListMemberSeesOnlyOwnRecords(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, memberID, "2025-06-02", "09:35", "18:35")
	seedDay(t, svc, strangerID, "2025-06-02", "09:35", "18:35")

	w, body := doReq(t, r, http.MethodGet, "/api/v1/attendance", memberID, models.RoleMember, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["total"] != float64(1) {
		t.Fatalf("total = %v, want 1", body["total"])
	}
	items := body["items"].([]any)
	if items[0].(map[string]any)["userId"] != memberID {
		t.Error("member must only see their own record")
	}
}

func TestListMemberCannotTargetOthers(t *testing.T) {
	r, _ := newAttendanceRouter()

	w, _ := doReq(t, r, http.MethodGet, "/api/v1/attendance?userId="+strangerID, memberID, models.RoleMember, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestListAdminSeesEveryone(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, memberID, "2025-06-02", "09:35")
	seedDay(t, svc, strangerID, "2025-06-02", "09:35")

	w, body := doReq(t, r, http.MethodGet, "/api/v1/attendance", adminID, models.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["total"] != float64(2) {
		t.Errorf("total = %v, want 2", body["total"])
	}
}

func TestListTeamLeadScope(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, leadID, "2025-06-02", "09:35")
	seedDay(t, svc, reporteeID, "2025-06-02", "09:35")
	seedDay(t, svc, strangerID, "2025-06-02", "09:35")

	w, body := doReq(t, r, http.MethodGet, "/api/v1/attendance", leadID, models.RoleTeamLead, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["total"] != float64(2) {
		t.Errorf("total = %v, want 2 (self + reportee)", body["total"])
	}

	w, _ = doReq(t, r, http.MethodGet, "/api/v1/attendance?userId="+reporteeID, leadID, models.RoleTeamLead, "")
	if w.Code != http.StatusOK {
		t.Errorf("reportee lookup: status = %d, want 200", w.Code)
	}

	w, _ = doReq(t, r, http.MethodGet, "/api/v1/attendance?userId="+strangerID, leadID, models.RoleTeamLead, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger lookup: status = %d, want 403", w.Code)
	}
}

func TestListClampsPagination(t *testing.T) {
	r, _ := newAttendanceRouter()

	w, body := doReq(t, r, http.MethodGet, "/api/v1/attendance?page=0&limit=500", adminID, models.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["page"] != float64(1) {
		t.Errorf("page = %v, want clamped to 1", body["page"])
	}
	if body["limit"] != float64(50) {
		t.Errorf("limit = %v, want clamped to 50", body["limit"])
	}
}

func TestListFiltersByDate(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, memberID, "2025-06-02", "09:35")
	seedDay(t, svc, memberID, "2025-06-03", "09:35")

	w, body := doReq(t, r, http.MethodGet, "/api/v1/attendance?date=2025-06-03", memberID, models.RoleMember, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["total"] != float64(1) {
		t.Fatalf("total = %v, want 1", body["total"])
	}
	items := body["items"].([]any)
	if items[0].(map[string]any)["date"] != "2025-06-03" {
		t.Error("date filter must select the matching record")
	}
}

func TestListRejectsNonUUIDTarget(t *testing.T) {
	r, _ := newAttendanceRouter()

	w, _ := doReq(t, r, http.MethodGet, "/api/v1/attendance?userId=not-a-uuid", adminID, models.RoleAdmin, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// =========================
// EDIT / DELETE PUNCH (privileged)
// =========================

func punchIDFor(t *testing.T, svc *attendance.Service, userID, dateKey string, idx int) string {
	t.Helper()
	rec, err := svc.Records.FindOne(userID, dateKey)
	if err != nil {
		t.Fatal(err)
	}
	sorted := rec.SortedPunches()
	if idx >= len(sorted) {
		t.Fatalf("record has %d punches, need index %d", len(sorted), idx)
	}
	return sorted[idx].ID
}

func TestEditPunchRecomputes(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, memberID, "2025-06-02", "09:35", "18:35")
	outID := punchIDFor(t, svc, memberID, "2025-06-02", 1)

	path := fmt.Sprintf("/api/v1/attendance/%s/2025-06-02/punches/%s", memberID, outID)
	w, body := doReq(t, r, http.MethodPatch, path, adminID, models.RoleAdmin, `{"at":"2025-06-02T19:15:00+05:30"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["message"] != "Punch updated" {
		t.Errorf("message = %v", body["message"])
	}
	computed := body["computed"].(map[string]any)
	if computed["workedMinutes"] != float64(580) {
		t.Errorf("workedMinutes = %v, want 580", computed["workedMinutes"])
	}
}

func TestEditPunchUnknownPunchID(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, memberID, "2025-06-02", "09:35")

	path := fmt.Sprintf("/api/v1/attendance/%s/2025-06-02/punches/%s", memberID, strangerID)
	w, _ := doReq(t, r, http.MethodPatch, path, adminID, models.RoleAdmin, `{"at":"2025-06-02T19:15:00+05:30"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEditPunchRejectsNonUUIDParams(t *testing.T) {
	r, _ := newAttendanceRouter()

	path := fmt.Sprintf("/api/v1/attendance/%s/2025-06-02/punches/nope", memberID)
	w, _ := doReq(t, r, http.MethodPatch, path, adminID, models.RoleAdmin, `{"at":"2025-06-02T19:15:00+05:30"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeletePunchRecomputes(t *testing.T) {
	r, svc := newAttendanceRouter()
	seedDay(t, svc, memberID, "2025-06-02", "09:35", "18:35")
	outID := punchIDFor(t, svc, memberID, "2025-06-02", 1)

	path := fmt.Sprintf("/api/v1/attendance/%s/2025-06-02/punches/%s", memberID, outID)
	w, body := doReq(t, r, http.MethodDelete, path, adminID, models.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	if body["status"] != string(models.StatusIncomplete) {
		t.Errorf("status = %v, want INCOMPLETE after removing the out punch", body["status"])
	}
	if body["outPunchAt"] != nil {
		t.Errorf("outPunchAt = %v, want null", body["outPunchAt"])
	}
}

func TestDeletePunchMissingRecord(t *testing.T) {
	r, _ := newAttendanceRouter()

	path := fmt.Sprintf("/api/v1/attendance/%s/2025-06-02/punches/%s", memberID, strangerID)
	w, _ := doReq(t, r, http.MethodDelete, path, adminID, models.RoleAdmin, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
