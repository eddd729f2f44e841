package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type fakeApplicationService struct {
	lastCreate models.CreateApplicationRequest
	lastActor  *models.Actor
	lastFilter models.ApplicationFilter
	lastStatus string
	lastID     string
	createErr  error
}

func (f *fakeApplicationService) Create(_ context.Context, req models.CreateApplicationRequest, actor *models.Actor) (*models.Application, error) {
	f.lastCreate = req
	f.lastActor = actor
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Application{ID: "a1", StudentID: actor.ID, DriveID: req.DriveID, Status: models.ApplicationStatusPending}, nil
}

func (f *fakeApplicationService) UpdateStatus(_ context.Context, id, status string, _ *models.Actor) (*models.Application, error) {
	f.lastID = id
	f.lastStatus = status
	return &models.Application{ID: id, Status: models.ApplicationStatus(status)}, nil
}

func (f *fakeApplicationService) Approve(_ context.Context, id string, _ *models.Actor) (*models.Application, error) {
	f.lastID = id
	f.lastStatus = string(models.ApplicationStatusApproved)
	return &models.Application{ID: id, Status: models.ApplicationStatusApproved}, nil
}

func (f *fakeApplicationService) Reject(_ context.Context, id string, _ *models.Actor) (*models.Application, error) {
	f.lastID = id
	f.lastStatus = string(models.ApplicationStatusRejected)
	return &models.Application{ID: id, Status: models.ApplicationStatusRejected}, nil
}

func (f *fakeApplicationService) Delete(_ context.Context, id string, _ *models.Actor) error {
	f.lastID = id
	return nil
}

func (f *fakeApplicationService) List(_ context.Context, filter models.ApplicationFilter, actor *models.Actor) ([]models.Application, *models.Pagination, error) {
	f.lastFilter = filter
	f.lastActor = actor
	return []models.Application{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeApplicationService) Summary(context.Context, *models.Actor) (*dto.PlacementSummary, error) {
	return &dto.PlacementSummary{TotalStudents: 10, PlacedStudents: 2}, nil
}

func TestApplicationHandlerCreate(t *testing.T) {
	svc := &fakeApplicationService{}
	h := NewApplicationHandler(svc)
	c, rec := newTestContext(http.MethodPost, "/applications", jsonBody(t, map[string]string{"drive_id": "d1"}))
	c.Request.Header.Set("Content-Type", "application/json")
	asStudent(c, "s1")

	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "d1", svc.lastCreate.DriveID)
	assert.Equal(t, "s1", svc.lastActor.ID)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"status":"Pending"`)
}

func TestApplicationHandlerCreateMapsServiceErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"duplicate":   {appErrors.Clone(appErrors.ErrConflict, "already applied"), http.StatusConflict},
		"ineligible":  {appErrors.Clone(appErrors.ErrPreconditionFailed, "not eligible"), http.StatusPreconditionFailed},
		"drive":       {appErrors.Clone(appErrors.ErrNotFound, "drive not found"), http.StatusNotFound},
		"unavailable": {appErrors.Internal(assert.AnError, "failed to create application"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewApplicationHandler(&fakeApplicationService{createErr: tc.err})
			c, rec := newTestContext(http.MethodPost, "/applications", jsonBody(t, map[string]string{"drive_id": "d1"}))
			c.Request.Header.Set("Content-Type", "application/json")
			asStudent(c, "s1")

			h.Create(c)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestApplicationHandlerListFilters(t *testing.T) {
	svc := &fakeApplicationService{}
	h := NewApplicationHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/applications?student_id=s2&drive_id=d1&status=Selected&page=2&limit=50", nil)
	asAdmin(c)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ApplicationFilter{
		StudentID: "s2",
		DriveID:   "d1",
		Status:    models.ApplicationStatusSelected,
		Page:      2,
		PageSize:  50,
	}, svc.lastFilter)
	assert.True(t, svc.lastActor.IsAdmin())
}

func TestApplicationHandlerStatusTransitions(t *testing.T) {
	svc := &fakeApplicationService{}
	h := NewApplicationHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/applications/a1/status", jsonBody(t, map[string]string{"status": "Placed"}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	asAdmin(c)
	h.UpdateStatus(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", svc.lastID)
	assert.Equal(t, "Placed", svc.lastStatus)

	c, rec = newTestContext(http.MethodPut, "/applications/a2/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "a2"}}
	asAdmin(c)
	h.Approve(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Approved", svc.lastStatus)

	c, rec = newTestContext(http.MethodPut, "/applications/a3/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "a3"}}
	asAdmin(c)
	h.Reject(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a3", svc.lastID)
	assert.Equal(t, "Rejected", svc.lastStatus)

	c, rec = newTestContext(http.MethodDelete, "/applications/a4", nil)
	c.Params = gin.Params{{Key: "id", Value: "a4"}}
	asAdmin(c)
	h.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "a4", svc.lastID)
}

func TestApplicationHandlerSummary(t *testing.T) {
	h := NewApplicationHandler(&fakeApplicationService{})
	c, rec := newTestContext(http.MethodGet, "/applications/summary", nil)
	asAdmin(c)

	h.Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	data := string(decodeEnvelope(t, rec).Data)
	assert.Contains(t, data, `"total_students":10`)
	assert.Contains(t, data, `"placed_students":2`)
}
