package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

type mockStudentRepo struct {
	mu       sync.Mutex
	students map[string]*models.Student
	seq      int
	err      error
	created  int
	// lookupErrs and createErrs fail single rows, keyed by lower-case email.
	lookupErrs map[string]error
	createErrs map[string]error
}

func newMockStudentRepo(students ...models.Student) *mockStudentRepo {
	repo := &mockStudentRepo{students: make(map[string]*models.Student)}
	for i := range students {
		s := students[i]
		repo.students[s.ID] = &s
	}
	return repo
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (m *mockStudentRepo) FindByRoll(ctx context.Context, roll string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.Roll == roll {
			clone := *s
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmailOrRoll(ctx context.Context, email, roll, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.lookupErrs[strings.ToLower(email)]; err != nil {
		return false, err
	}
	return m.existsLocked(email, roll, excludeID), nil
}

func (m *mockStudentRepo) existsLocked(email, roll, excludeID string) bool {
	for _, s := range m.students {
		if s.ID == excludeID {
			continue
		}
		if strings.EqualFold(s.Email, email) || s.Roll == roll {
			return true
		}
	}
	return false
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := m.createErrs[strings.ToLower(student.Email)]; err != nil {
		return err
	}
	if m.existsLocked(student.Email, student.Roll, "") {
		return fmt.Errorf("create student: %w", repository.ErrDuplicate)
	}
	if student.ID == "" {
		m.seq++
		student.ID = fmt.Sprintf("student-%d", m.seq)
	}
	clone := *student
	m.students[student.ID] = &clone
	m.created++
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *student
	m.students[student.ID] = &clone
	return nil
}

func (m *mockStudentRepo) UpdateDocuments(ctx context.Context, student *models.Student) error {
	return m.Update(ctx, student)
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return false, nil
	}
	delete(m.students, id)
	return true, nil
}

func (m *mockStudentRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.students), nil
}

type mockDriveRepo struct {
	drives    map[string]*models.Drive
	listCalls int
	seq       int
}

func newMockDriveRepo(drives ...models.Drive) *mockDriveRepo {
	repo := &mockDriveRepo{drives: make(map[string]*models.Drive)}
	for i := range drives {
		d := drives[i]
		repo.drives[d.ID] = &d
	}
	return repo
}

func (m *mockDriveRepo) List(ctx context.Context, filter models.DriveFilter) ([]models.Drive, int, error) {
	m.listCalls++
	out := make([]models.Drive, 0, len(m.drives))
	for _, d := range m.drives {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockDriveRepo) FindByID(ctx context.Context, id string) (*models.Drive, error) {
	d, ok := m.drives[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *d
	return &clone, nil
}

func (m *mockDriveRepo) Create(ctx context.Context, drive *models.Drive) error {
	if drive.ID == "" {
		m.seq++
		drive.ID = fmt.Sprintf("drive-%d", m.seq)
	}
	clone := *drive
	m.drives[drive.ID] = &clone
	return nil
}

func (m *mockDriveRepo) Update(ctx context.Context, drive *models.Drive) error {
	clone := *drive
	m.drives[drive.ID] = &clone
	return nil
}

func (m *mockDriveRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.drives[id]; !ok {
		return false, nil
	}
	delete(m.drives, id)
	return true, nil
}

func (m *mockDriveRepo) Counts(ctx context.Context, now time.Time) (int, int, error) {
	open := 0
	for _, d := range m.drives {
		if !d.DeadlinePassed(now) {
			open++
		}
	}
	return len(m.drives), open, nil
}

type mockApplicationRepo struct {
	apps     []*models.Application
	students *mockStudentRepo
	seq      int
	// skipExists simulates a concurrent insert slipping past the existence check.
	skipExists bool
	findCalls  int
}

func (m *mockApplicationRepo) Exists(ctx context.Context, studentID, driveID string) (bool, error) {
	if m.skipExists {
		return false, nil
	}
	for _, a := range m.apps {
		if a.StudentID == studentID && a.DriveID == driveID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	for _, a := range m.apps {
		if a.StudentID == app.StudentID && a.DriveID == app.DriveID {
			return fmt.Errorf("create application: %w", repository.ErrDuplicate)
		}
	}
	m.seq++
	if app.ID == "" {
		app.ID = fmt.Sprintf("app-%d", m.seq)
	}
	app.CreatedAt = app.AppliedAt
	app.UpdatedAt = app.AppliedAt
	clone := *app
	m.apps = append(m.apps, &clone)
	return nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	m.findCalls++
	for _, a := range m.apps {
		if a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.Application, error) {
	for _, a := range m.apps {
		if a.ID == id {
			a.Status = status
			clone := *a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i, a := range m.apps {
		if a.ID == id {
			m.apps = append(m.apps[:i], m.apps[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	out := []models.Application{}
	for i := len(m.apps) - 1; i >= 0; i-- {
		a := m.apps[i]
		if filter.StudentID != "" && a.StudentID != filter.StudentID {
			continue
		}
		if filter.DriveID != "" && a.DriveID != filter.DriveID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockApplicationRepo) ListApplicants(ctx context.Context, driveID string) ([]models.Applicant, error) {
	var out []models.Applicant
	for _, a := range m.apps {
		if a.DriveID != driveID {
			continue
		}
		row := models.Applicant{
			ApplicationID: a.ID,
			StudentID:     a.StudentID,
			Name:          a.StudentName,
			Roll:          a.Roll,
			Status:        a.Status,
			AppliedOn:     a.AppliedAt,
		}
		if m.students != nil {
			if s, err := m.students.FindByID(ctx, a.StudentID); err == nil {
				row.Name, row.Roll, row.Email, row.Phone = s.Name, s.Roll, s.Email, s.Phone
			}
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedOn.After(out[j].AppliedOn) })
	return out, nil
}

func (m *mockApplicationRepo) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	counts := map[models.ApplicationStatus]int{}
	for _, a := range m.apps {
		counts[a.Status]++
	}
	out := make([]models.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (m *mockApplicationRepo) CountByStudent(ctx context.Context, studentID string) (int, error) {
	n := 0
	for _, a := range m.apps {
		if a.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (m *mockApplicationRepo) CountPlacedStudents(ctx context.Context) (int, error) {
	placed := map[string]struct{}{}
	for _, a := range m.apps {
		if a.Status == models.ApplicationStatusPlaced {
			placed[a.StudentID] = struct{}{}
		}
	}
	return len(placed), nil
}

type memoryFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{objects: make(map[string][]byte)}
}

func (m *memoryFileStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *memoryFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryFileStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func adminActor() *models.Actor {
	return &models.Actor{ID: "admin-1", Role: models.RoleAdmin, Name: "Placement Cell"}
}

func studentActor(id string) *models.Actor {
	return &models.Actor{ID: id, Role: models.RoleStudent}
}
