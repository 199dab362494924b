package attendance

import (
	"sort"
	"strings"
	"sync"
	"time"

	"attendance_backend/internal/models"
)

// MemRecordStore is an in-memory RecordStore with the same observable
// behavior as the Postgres-backed one. Used by the test suite and handy for
// local development without a database.
type MemRecordStore struct {
	mu     sync.Mutex
	recs   map[string]*models.DayRecord
	nextID uint
}

func NewMemRecordStore() *MemRecordStore {
	return &MemRecordStore{recs: make(map[string]*models.DayRecord)}
}

func recKey(employeeID, dateKey string) string { return employeeID + "|" + dateKey }

func copyRecord(r *models.DayRecord) *models.DayRecord {
	out := *r
	out.Punches = make([]models.Punch, len(r.Punches))
	copy(out.Punches, r.Punches)
	return &out
}

func (s *MemRecordStore) FindOne(employeeID, dateKey string) (*models.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[recKey(employeeID, dateKey)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyRecord(rec), nil
}

func (s *MemRecordStore) UpsertAppendPunch(employeeID, dateKey string, punch models.Punch) (*models.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recKey(employeeID, dateKey)
	rec, ok := s.recs[key]
	if !ok {
		s.nextID++
		rec = &models.DayRecord{
			ID:         s.nextID,
			EmployeeID: employeeID,
			DateKey:    dateKey,
			Status:     models.StatusPending,
			CreatedAt:  time.Now(),
		}
		s.recs[key] = rec
	}
	punch.DayRecordID = rec.ID
	rec.Punches = append(rec.Punches, punch)
	rec.UpdatedAt = time.Now()
	return copyRecord(rec), nil
}

func (s *MemRecordStore) UpdatePunch(employeeID, dateKey, punchID string, at time.Time) (*models.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[recKey(employeeID, dateKey)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	for i := range rec.Punches {
		if rec.Punches[i].ID == punchID {
			rec.Punches[i].At = at
			rec.UpdatedAt = time.Now()
			return copyRecord(rec), nil
		}
	}
	return nil, ErrPunchNotFound
}

func (s *MemRecordStore) RemovePunch(employeeID, dateKey, punchID string) (*models.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[recKey(employeeID, dateKey)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	for i := range rec.Punches {
		if rec.Punches[i].ID == punchID {
			rec.Punches = append(rec.Punches[:i], rec.Punches[i+1:]...)
			rec.UpdatedAt = time.Now()
			return copyRecord(rec), nil
		}
	}
	return nil, ErrPunchNotFound
}

func (s *MemRecordStore) SetEvaluation(employeeID, dateKey string, status models.DayStatus, computed models.Computed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[recKey(employeeID, dateKey)]
	if !ok {
		return ErrRecordNotFound
	}
	rec.Status = status
	rec.Computed = computed
	rec.UpdatedAt = time.Now()
	return nil
}

func (f RecordFilter) matches(rec *models.DayRecord) bool {
	if f.EmployeeID != "" {
		if rec.EmployeeID != f.EmployeeID {
			return false
		}
	} else if len(f.EmployeeIDs) > 0 {
		found := false
		for _, id := range f.EmployeeIDs {
			if rec.EmployeeID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Date != "" {
		return rec.DateKey == f.Date
	}
	if f.From != "" && f.To != "" {
		return rec.DateKey >= f.From && rec.DateKey <= f.To
	}
	return true
}

func (s *MemRecordStore) FindMany(f RecordFilter, skip, limit int) ([]models.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*models.DayRecord
	for _, rec := range s.recs {
		if f.matches(rec) {
			rows = append(rows, rec)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DateKey != rows[j].DateKey {
			return rows[i].DateKey > rows[j].DateKey
		}
		return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
	})
	if skip > len(rows) {
		skip = len(rows)
	}
	rows = rows[skip:]
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]models.DayRecord, 0, len(rows))
	for _, rec := range rows {
		out = append(out, *copyRecord(rec))
	}
	return out, nil
}

func (s *MemRecordStore) Count(f RecordFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.recs {
		if f.matches(rec) {
			n++
		}
	}
	return n, nil
}

func (s *MemRecordStore) MonthlyFlags(employeeID, monthPrefix string) ([]models.Computed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Computed
	for _, rec := range s.recs {
		if rec.EmployeeID == employeeID && strings.HasPrefix(rec.DateKey, monthPrefix) {
			out = append(out, rec.Computed)
		}
	}
	return out, nil
}

// MemPolicyStore is the in-memory PolicyStore counterpart.
type MemPolicyStore struct {
	mu  sync.Mutex
	pol *models.AttendancePolicy
}

func NewMemPolicyStore() *MemPolicyStore { return &MemPolicyStore{} }

func (s *MemPolicyStore) GetOrCreateDefault() (*models.AttendancePolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pol == nil {
		pol := models.DefaultAttendancePolicy()
		pol.ID = 1
		s.pol = &pol
	}
	out := *s.pol
	return &out, nil
}

func (s *MemPolicyStore) Patch(p PolicyPatch, updatedBy string) (*models.AttendancePolicy, error) {
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
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pol = &merged
	out := merged
	return &out, nil
}

// Set replaces the active policy wholesale. Test helper.
func (s *MemPolicyStore) Set(pol models.AttendancePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pol = &pol
}
