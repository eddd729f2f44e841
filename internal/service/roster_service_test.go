package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/roster"
)

func newRosterFixture(students *mockStudentRepo) (*RosterService, *memoryFileStore, *MetricsService) {
	scratch := newMemoryFileStore()
	metrics := NewMetricsService()
	svc := NewRosterService(students, scratch, metrics, validator.New(), zap.NewNop(), RosterConfig{Workers: 3, MaxRows: 100, HashCost: bcrypt.MinCost})
	return svc, scratch, metrics
}

func TestRosterServiceImportFileSkipsRowMissingPassword(t *testing.T) {
	students := newMockStudentRepo()
	svc, scratch, metrics := newRosterFixture(students)

	csv := strings.Join([]string{
		"Name,Email,Roll,Password,Branch,Year,CGPA,Skills",
		"Asha,asha@college.edu,R1,secret1,CSE,2025,8.1,go;sql",
		"Ravi,ravi@college.edu,R2,secret2,ME,2025,7.0,",
		"Meena,meena@college.edu,R3,,ECE,2025,7.4,",
		"Kiran,KIRAN@college.edu,R4,secret4,CSE,2024,6.9,",
		"Dev,dev@college.edu,R5,secret5,IT,2025,,",
	}, "\n")

	result, err := svc.ImportFile(context.Background(), "batch.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Imported)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 3, result.Skipped[0].Row)
	assert.Equal(t, "missing required field: password", result.Skipped[0].Reason)
	assert.Equal(t, "meena@college.edu", result.Skipped[0].Data.Email)

	assert.Equal(t, 4, students.created)
	kiran, err := students.FindByRoll(context.Background(), "R4")
	require.NoError(t, err)
	assert.Equal(t, "kiran@college.edu", kiran.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(kiran.PasswordHash), []byte("secret4")))

	asha, err := students.FindByRoll(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, []string(asha.Skills))

	assert.Empty(t, scratch.keys())
	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 4, snapshot.RosterRowsImported)
	assert.EqualValues(t, 1, snapshot.RosterRowsSkipped)
}

func TestRosterServiceImportSkipsConflicts(t *testing.T) {
	students := newMockStudentRepo(models.Student{ID: "existing", Email: "taken@college.edu", Roll: "R9"})
	svc, _, _ := newRosterFixture(students)

	rows := []roster.Row{
		{Number: 1, Name: "A", Email: "taken@college.edu", Roll: "R10", Password: "pw"},
		{Number: 2, Name: "B", Email: "b@college.edu", Roll: "R9", Password: "pw"},
		{Number: 3, Name: "C", Email: "c@college.edu", Roll: "R11", Password: "pw"},
		{Number: 4, Name: "D", Email: "C@college.edu", Roll: "R12", Password: "pw"},
		{Number: 5, Name: "E", Email: "e@college.edu", Roll: "R11", Password: "pw"},
		{Number: 6, Name: "F", Email: "not-an-email", Roll: "R13", Password: "pw"},
		{Number: 7, Name: "G", Email: "g@college.edu", Roll: "R14", Password: "pw", CGPA: "high"},
	}

	result, err := svc.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Skipped, 6)

	reasons := make(map[int]string, len(result.Skipped))
	for _, s := range result.Skipped {
		reasons[s.Row] = s.Reason
	}
	assert.Equal(t, "a student with this email or roll already exists", reasons[1])
	assert.Equal(t, "a student with this email or roll already exists", reasons[2])
	assert.Equal(t, "duplicate email in upload (first seen on row 3)", reasons[4])
	assert.Equal(t, "duplicate roll in upload (first seen on row 3)", reasons[5])
	assert.Contains(t, reasons[6], "invalid email")
	assert.Contains(t, reasons[7], "invalid cgpa")

	for i := 1; i < len(result.Skipped); i++ {
		assert.Less(t, result.Skipped[i-1].Row, result.Skipped[i].Row)
	}
}

func TestRosterServiceImportIsolatesRowFailures(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(repo *mockStudentRepo)
		reason string
	}{
		{
			name: "upstream insert failure",
			setup: func(repo *mockStudentRepo) {
				repo.createErrs = map[string]error{"b@college.edu": errors.New("connection reset by peer")}
			},
			reason: "failed to save student",
		},
		{
			name: "unique violation after a clean existence check",
			setup: func(repo *mockStudentRepo) {
				repo.createErrs = map[string]error{"b@college.edu": fmt.Errorf("create student: %w", repository.ErrDuplicate)}
			},
			reason: "a student with this email or roll already exists",
		},
		{
			name: "existence lookup failure",
			setup: func(repo *mockStudentRepo) {
				repo.lookupErrs = map[string]error{"b@college.edu": errors.New("statement timeout")}
			},
			reason: "failed to verify existing students",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			students := newMockStudentRepo()
			tc.setup(students)
			svc, _, metrics := newRosterFixture(students)

			rows := []roster.Row{
				{Number: 1, Name: "A", Email: "a@college.edu", Roll: "R1", Password: "pw"},
				{Number: 2, Name: "B", Email: "B@college.edu", Roll: "R2", Password: "pw"},
				{Number: 3, Name: "C", Email: "c@college.edu", Roll: "R3", Password: "pw"},
				{Number: 4, Name: "D", Email: "d@college.edu", Roll: "R4", Password: "pw"},
			}

			result, err := svc.Import(context.Background(), rows)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Imported)
			require.Len(t, result.Skipped, 1)
			assert.Equal(t, 2, result.Skipped[0].Row)
			assert.Equal(t, "b@college.edu", result.Skipped[0].Data.Email)
			assert.Equal(t, tc.reason, result.Skipped[0].Reason)

			assert.Equal(t, 3, students.created)
			_, err = students.FindByRoll(context.Background(), "R2")
			assert.Error(t, err)
			assert.EqualValues(t, 1, metrics.Snapshot().RosterRowsSkipped)
		})
	}
}

func TestRosterServiceImportFileKeepsPasswordVerbatim(t *testing.T) {
	students := newMockStudentRepo()
	svc, _, _ := newRosterFixture(students)

	input := "name,email,roll,password\nAsha,asha@college.edu,R1,\" open sesame \"\n"
	result, err := svc.ImportFile(context.Background(), "batch.txt", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	asha, err := students.FindByRoll(context.Background(), "R1")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(asha.PasswordHash), []byte(" open sesame ")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(asha.PasswordHash), []byte("open sesame")))
}

func TestRosterServiceImportFileRejectsBadUploads(t *testing.T) {
	svc, scratch, _ := newRosterFixture(newMockStudentRepo())

	_, err := svc.ImportFile(context.Background(), "roster.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "roster must be a .csv, .txt or .xlsx file", appErrors.FromError(err).Message)

	_, err = svc.ImportFile(context.Background(), "roster.csv", strings.NewReader("name,email\nA,a@x.io\n"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, scratch.keys())
}

func TestRosterServiceImportEmpty(t *testing.T) {
	svc, _, _ := newRosterFixture(newMockStudentRepo())
	result, err := svc.Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.NotNil(t, result.Skipped)
}
