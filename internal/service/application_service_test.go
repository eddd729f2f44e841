package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type applicationFixture struct {
	svc      *ApplicationService
	apps     *mockApplicationRepo
	students *mockStudentRepo
	drives   *mockDriveRepo
	now      time.Time
}

func newApplicationFixture(t *testing.T, enforceDeadline bool) *applicationFixture {
	t.Helper()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	students := newMockStudentRepo(
		models.Student{ID: "s1", Name: "Asha", Roll: "R1", Email: "asha@college.edu", Branch: "CSE", Year: "2025", CGPA: "8.1"},
		models.Student{ID: "s2", Name: "Ravi", Roll: "R2", Email: "ravi@college.edu", Branch: "ME", Year: "2025", CGPA: "6.5"},
	)
	deadline := now.Add(-time.Hour)
	drives := newMockDriveRepo(
		models.Drive{ID: "d1", Company: "Acme", Role: "SDE", MinCGPA: "7.0", EligibleBranches: []string{"CSE", "ECE"}},
		models.Drive{ID: "d2", Company: "Globex", Role: "Analyst", Deadline: &deadline},
	)
	apps := &mockApplicationRepo{students: students}
	svc := NewApplicationService(apps, students, drives, NewMetricsService(), validator.New(), zap.NewNop(), ApplicationConfig{EnforceDeadline: enforceDeadline})
	svc.now = func() time.Time { return now }
	return &applicationFixture{svc: svc, apps: apps, students: students, drives: drives, now: now}
}

func TestApplicationServiceStudentAppliesForSelf(t *testing.T) {
	f := newApplicationFixture(t, true)

	app, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{StudentID: "s2", DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", app.StudentID)
	assert.Equal(t, "Asha", app.StudentName)
	assert.Equal(t, "R1", app.Roll)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, "SDE", app.Role)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.False(t, app.AppliedByAdmin)
	assert.Equal(t, f.now, app.AppliedAt)
}

func TestApplicationServiceApplyTwiceConflicts(t *testing.T) {
	f := newApplicationFixture(t, true)
	req := models.CreateApplicationRequest{DriveID: "d1"}

	_, err := f.svc.Create(context.Background(), req, studentActor("s1"))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), req, studentActor("s1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Len(t, f.apps.apps, 1)
}

func TestApplicationServiceUniqueViolationMapsToConflict(t *testing.T) {
	f := newApplicationFixture(t, true)
	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)

	f.apps.skipExists = true
	_, err = f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Len(t, f.apps.apps, 1)
}

func TestApplicationServiceIneligibleStudent(t *testing.T) {
	f := newApplicationFixture(t, true)

	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s2"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, details["reasons"], 2)
	assert.Empty(t, f.apps.apps)
}

func TestApplicationServiceDeadline(t *testing.T) {
	f := newApplicationFixture(t, true)
	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d2"}, studentActor("s1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	relaxed := newApplicationFixture(t, false)
	_, err = relaxed.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d2"}, studentActor("s1"))
	require.NoError(t, err)
}

func TestApplicationServiceAdminOnBehalf(t *testing.T) {
	f := newApplicationFixture(t, true)
	applied := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, adminActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	app, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{StudentID: "s1", DriveID: "d1", AppliedDate: &applied}, adminActor())
	require.NoError(t, err)
	assert.True(t, app.AppliedByAdmin)
	assert.Equal(t, applied, app.AppliedAt)
}

func TestApplicationServiceMissingReferences(t *testing.T) {
	f := newApplicationFixture(t, true)

	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "missing"}, studentActor("s1"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("ghost"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Create(context.Background(), models.CreateApplicationRequest{}, studentActor("s1"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestApplicationServiceSnapshotSurvivesDriveEdit(t *testing.T) {
	f := newApplicationFixture(t, true)
	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)

	f.drives.drives["d1"].Company = "Acme Corp"
	f.drives.drives["d1"].Role = "Senior SDE"

	apps, _, err := f.svc.List(context.Background(), models.ApplicationFilter{}, studentActor("s1"))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Acme", apps[0].Company)
	assert.Equal(t, "SDE", apps[0].Role)
}

func TestApplicationServiceHistorySurvivesDriveDelete(t *testing.T) {
	f := newApplicationFixture(t, true)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)

	drives := NewDriveService(f.drives, f.students, nil, validator.New(), zap.NewNop(), time.Minute)
	require.NoError(t, drives.Delete(ctx, "d1"))

	apps, _, err := f.svc.List(ctx, models.ApplicationFilter{}, studentActor("s1"))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, app.ID, apps[0].ID)
	assert.Equal(t, "Acme", apps[0].Company)
	assert.Equal(t, "SDE", apps[0].Role)

	updated, err := f.svc.UpdateStatus(ctx, app.ID, string(models.ApplicationStatusPlaced), adminActor())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPlaced, updated.Status)
}

func TestApplicationServiceUpdateStatus(t *testing.T) {
	f := newApplicationFixture(t, true)
	app, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)

	for _, status := range models.ApplicationStatuses {
		updated, err := f.svc.UpdateStatus(context.Background(), app.ID, string(status), adminActor())
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = f.svc.UpdateStatus(context.Background(), "missing", string(models.ApplicationStatusSelected), adminActor())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.UpdateStatus(context.Background(), app.ID, "Hired", adminActor())
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.UpdateStatus(context.Background(), app.ID, string(models.ApplicationStatusPlaced), studentActor("s1"))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	approved, err := f.svc.Approve(context.Background(), app.ID, adminActor())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, approved.Status)

	rejected, err := f.svc.Reject(context.Background(), app.ID, adminActor())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)
}

func TestApplicationServiceListScoping(t *testing.T) {
	f := newApplicationFixture(t, false)
	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d2"}, studentActor("s2"))
	require.NoError(t, err)

	own, pagination, err := f.svc.List(context.Background(), models.ApplicationFilter{}, studentActor("s2"))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "s2", own[0].StudentID)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)

	_, _, err = f.svc.List(context.Background(), models.ApplicationFilter{StudentID: "s1"}, studentActor("s2"))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	all, _, err := f.svc.List(context.Background(), models.ApplicationFilter{}, adminActor())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, _, err = f.svc.List(context.Background(), models.ApplicationFilter{Status: "Hired"}, adminActor())
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestApplicationServiceDelete(t *testing.T) {
	f := newApplicationFixture(t, true)
	app, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), app.ID, studentActor("s1")), appErrors.ErrForbidden)
	assert.Zero(t, f.apps.findCalls)

	require.NoError(t, f.svc.Delete(context.Background(), app.ID, adminActor()))
	assert.Equal(t, 1, f.apps.findCalls)
	assert.Empty(t, f.apps.apps)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), app.ID, adminActor()), appErrors.ErrNotFound)
}

func TestApplicationServiceApplicants(t *testing.T) {
	f := newApplicationFixture(t, false)

	empty, err := f.svc.ApplicantsFor(context.Background(), "d2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.svc.ApplicantsFor(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	for i, id := range []string{"s1", "s2"} {
		applied := f.now.Add(time.Duration(i) * time.Hour)
		_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{StudentID: id, DriveID: "d2", AppliedDate: &applied}, adminActor())
		require.NoError(t, err)
	}

	applicants, err := f.svc.ApplicantsFor(context.Background(), "d2")
	require.NoError(t, err)
	require.Len(t, applicants, 2)
	assert.Equal(t, "Ravi", applicants[0].Name)
	assert.Equal(t, "Asha", applicants[1].Name)
	assert.Equal(t, "asha@college.edu", applicants[1].Email)
}

func TestApplicationServiceApplicantsDegradedView(t *testing.T) {
	f := newApplicationFixture(t, false)
	_, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d2"}, studentActor("s1"))
	require.NoError(t, err)

	delete(f.students.students, "s1")

	applicants, err := f.svc.ApplicantsFor(context.Background(), "d2")
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, "Asha", applicants[0].Name)
	assert.Equal(t, "R1", applicants[0].Roll)
	assert.Empty(t, applicants[0].Email)
}

func TestApplicationServiceSummary(t *testing.T) {
	f := newApplicationFixture(t, false)
	app, err := f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d1"}, studentActor("s1"))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), models.CreateApplicationRequest{DriveID: "d2"}, studentActor("s2"))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), app.ID, string(models.ApplicationStatusPlaced), adminActor())
	require.NoError(t, err)

	summary, err := f.svc.Summary(context.Background(), adminActor())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 2, summary.TotalDrives)
	assert.Equal(t, 1, summary.OpenDrives)
	assert.Equal(t, 2, summary.TotalApplications)
	assert.Equal(t, 1, summary.PlacedStudents)
	assert.Equal(t, 1, summary.ApplicationsByStatus["Pending"])
	assert.Equal(t, 0, summary.ApplicationsByStatus["Selected"])

	_, err = f.svc.Summary(context.Background(), studentActor("s1"))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
