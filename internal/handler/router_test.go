package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type fakeAuthService struct{}

func (fakeAuthService) SignupStudent(context.Context, models.StudentSignupRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "t"}, nil
}

func (fakeAuthService) LoginStudent(context.Context, models.StudentLoginRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "t"}, nil
}

func (fakeAuthService) LoginAdmin(context.Context, models.AdminLoginRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "t"}, nil
}

func (fakeAuthService) CreateAdmin(_ context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	return &models.Admin{ID: "admin-2", Username: req.Username}, nil
}

func (fakeAuthService) ListAdmins(context.Context) ([]models.Admin, error) {
	return []models.Admin{{ID: "admin-1", Username: "placement"}}, nil
}

func (fakeAuthService) ResetAdminPassword(_ context.Context, id string, req models.ResetPasswordRequest, _ *models.Actor) (*models.Admin, error) {
	if req.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a new password of at least 8 characters is required")
	}
	if id != "admin-2" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
	}
	return &models.Admin{ID: id}, nil
}

func (fakeAuthService) DeleteAdmin(_ context.Context, id string, actor *models.Actor) error {
	if actor.ID == id {
		return appErrors.Clone(appErrors.ErrConflict, "admins cannot delete their own account")
	}
	return nil
}

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Wrap(errors.New("unknown token"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := tokenTable{
		"admin":   {UserID: "admin-1", Role: models.RoleAdmin},
		"student": {UserID: "s1", Role: models.RoleStudent},
	}
	RegisterRoutes(r, "/api/v1", tokens, Handlers{
		Auth:          NewAuthHandler(fakeAuthService{}),
		Students:      NewStudentHandler(&fakeStudentService{documentName: "resume.pdf"}, 0),
		Certificates:  NewCertificateHandler(&fakeCertificateService{}, 0),
		Roster:        NewRosterHandler(&fakeRosterService{}),
		Drives:        NewDriveHandler(&fakeDriveService{}, &fakeApplicantSource{}, &fakeExporter{}),
		Applications:  NewApplicationHandler(&fakeApplicationService{}),
		Notifications: NewNotificationHandler(&fakeNotificationService{}),
		Feedback:      NewFeedbackHandler(&fakeFeedbackService{}),
		Metrics:       NewMetricsHandler(service.NewMetricsService()),
	})
	return r
}

func TestRouterAccessControl(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"public drive listing", http.MethodGet, "/api/v1/drives", "", "", http.StatusOK},
		{"drive listing ignores bad token", http.MethodGet, "/api/v1/drives", "bogus", "", http.StatusOK},
		{"public notifications", http.MethodGet, "/api/v1/notifications", "", "", http.StatusOK},
		{"signed download is public", http.MethodGet, "/api/v1/documents/download?token=x", "", "", http.StatusOK},
		{"student list needs admin", http.MethodGet, "/api/v1/students", "student", "", http.StatusForbidden},
		{"student list anonymous", http.MethodGet, "/api/v1/students", "", "", http.StatusUnauthorized},
		{"admin lists students", http.MethodGet, "/api/v1/students", "admin", "", http.StatusOK},
		{"student reads self", http.MethodGet, "/api/v1/students/s1", "student", "", http.StatusOK},
		{"student reads other", http.MethodGet, "/api/v1/students/s2", "student", "", http.StatusForbidden},
		{"student lists own certificates", http.MethodGet, "/api/v1/students/s1/certificates", "student", "", http.StatusOK},
		{"student cannot list other certificates", http.MethodGet, "/api/v1/students/s2/certificates", "student", "", http.StatusForbidden},
		{"admin reads a certificate", http.MethodGet, "/api/v1/students/s2/certificates/c1", "admin", "", http.StatusOK},
		{"certificates need auth", http.MethodGet, "/api/v1/students/s1/certificates", "", "", http.StatusUnauthorized},
		{"student deletes own certificate", http.MethodDelete, "/api/v1/students/s1/certificates/c1", "student", "", http.StatusNoContent},
		{"delete missing certificate", http.MethodDelete, "/api/v1/students/s1/certificates/c9", "student", "", http.StatusNotFound},
		{"import is admin only", http.MethodPost, "/api/v1/students/import", "student", "", http.StatusForbidden},
		{"drive create admin only", http.MethodPost, "/api/v1/drives", "student", `{"company":"A","role":"B"}`, http.StatusForbidden},
		{"admin creates drive", http.MethodPost, "/api/v1/drives", "admin", `{"company":"A","role":"B"}`, http.StatusCreated},
		{"applicants admin only", http.MethodGet, "/api/v1/drives/d1/applicants", "student", "", http.StatusForbidden},
		{"eligibility check", http.MethodGet, "/api/v1/drives/d1/eligibility/s1", "admin", "", http.StatusOK},
		{"applications need auth", http.MethodGet, "/api/v1/applications", "", "", http.StatusUnauthorized},
		{"student applies", http.MethodPost, "/api/v1/applications", "student", `{"drive_id":"d1"}`, http.StatusCreated},
		{"student cannot approve", http.MethodPut, "/api/v1/applications/a1/approve", "student", "", http.StatusForbidden},
		{"summary admin only", http.MethodGet, "/api/v1/applications/summary", "student", "", http.StatusForbidden},
		{"admin summary", http.MethodGet, "/api/v1/applications/summary", "admin", "", http.StatusOK},
		{"student cannot notify", http.MethodPost, "/api/v1/notifications", "student", `{"message":"x"}`, http.StatusForbidden},
		{"admin cannot submit feedback", http.MethodPost, "/api/v1/feedbacks", "admin", `{"text":"x"}`, http.StatusForbidden},
		{"student submits feedback", http.MethodPost, "/api/v1/feedbacks", "student", `{"text":"x"}`, http.StatusCreated},
		{"student cannot read feedback", http.MethodGet, "/api/v1/feedbacks", "student", "", http.StatusForbidden},
		{"create admin needs admin", http.MethodPost, "/api/v1/admins", "student", `{}`, http.StatusForbidden},
		{"admin lists admins", http.MethodGet, "/api/v1/admins", "admin", "", http.StatusOK},
		{"student cannot list admins", http.MethodGet, "/api/v1/admins", "student", "", http.StatusForbidden},
		{"admin deletes another admin", http.MethodDelete, "/api/v1/admins/admin-2", "admin", "", http.StatusNoContent},
		{"admin cannot delete self", http.MethodDelete, "/api/v1/admins/admin-1", "admin", "", http.StatusConflict},
		{"student cannot delete admins", http.MethodDelete, "/api/v1/admins/admin-2", "student", "", http.StatusForbidden},
		{"reset password", http.MethodPost, "/api/v1/admins/reset-password/admin-2", "admin", `{"password":"freshpass"}`, http.StatusOK},
		{"reset password without password", http.MethodPost, "/api/v1/admins/reset-password/admin-2", "admin", `{}`, http.StatusBadRequest},
		{"reset password for missing admin", http.MethodPost, "/api/v1/admins/reset-password/nobody", "admin", `{"password":"freshpass"}`, http.StatusNotFound},
		{"student login is public", http.MethodPost, "/api/v1/auth/students/login", "", `{"roll":"R1","password":"x"}`, http.StatusOK},
		{"metrics summary admin only", http.MethodGet, "/api/v1/metrics/summary", "student", "", http.StatusForbidden},
		{"metrics summary", http.MethodGet, "/api/v1/metrics/summary", "admin", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}
