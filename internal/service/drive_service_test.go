package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func newDriveFixture(cacheEnabled bool) (*DriveService, *mockDriveRepo) {
	drives := newMockDriveRepo(
		models.Drive{ID: "d1", Company: "Acme", Role: "SDE", MinCGPA: "7.0"},
		models.Drive{ID: "d2", Company: "Globex", Role: "Analyst", EligibleBranches: []string{"ME"}},
	)
	students := newMockStudentRepo(models.Student{ID: "s1", Name: "Asha", Branch: "CSE", CGPA: "8.0"})
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, zap.NewNop(), cacheEnabled)
	return NewDriveService(drives, students, cache, validator.New(), zap.NewNop(), time.Minute), drives
}

func TestDriveServiceListForStudentAnnotatesEligibility(t *testing.T) {
	svc, _ := newDriveFixture(false)

	listings, pagination, _, err := svc.List(context.Background(), models.DriveFilter{}, studentActor("s1"))
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, 2, pagination.TotalCount)

	require.NotNil(t, listings[0].Eligibility)
	assert.True(t, listings[0].Eligibility.Eligible)
	require.NotNil(t, listings[1].Eligibility)
	assert.False(t, listings[1].Eligibility.Eligible)

	anonymous, _, _, err := svc.List(context.Background(), models.DriveFilter{}, nil)
	require.NoError(t, err)
	assert.Nil(t, anonymous[0].Eligibility)
}

func TestDriveServiceListCachesAndInvalidates(t *testing.T) {
	svc, repo := newDriveFixture(true)
	ctx := context.Background()

	_, _, hit, err := svc.List(ctx, models.DriveFilter{}, nil)
	require.NoError(t, err)
	assert.False(t, hit)

	listings, _, hit, err := svc.List(ctx, models.DriveFilter{}, nil)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, listings, 2)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(ctx, DriveRequest{Company: "Initech", Role: "QA"})
	require.NoError(t, err)

	listings, _, hit, err = svc.List(ctx, models.DriveFilter{}, nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, listings, 3)
}

func TestDriveServiceCreateValidation(t *testing.T) {
	svc, _ := newDriveFixture(false)

	_, err := svc.Create(context.Background(), DriveRequest{Company: "Acme"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), DriveRequest{Company: "Acme", Role: "SDE", MinCGPA: "seven"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, map[string]string{"mincgpa": "cgpa"}, appErr.Details)

	_, err = svc.Create(context.Background(), DriveRequest{Company: "Acme", Role: "SDE", MinCGPA: "NaN"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	drive, err := svc.Create(context.Background(), DriveRequest{
		Company:          " Acme ",
		Role:             "SDE",
		MinCGPA:          "7.5",
		EligibleBranches: []string{"CSE", " ", "ECE"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", drive.Company)
	assert.Equal(t, []string{"CSE", "ECE"}, []string(drive.EligibleBranches))
}

func TestDriveServiceUpdateDeleteAndEligibility(t *testing.T) {
	svc, repo := newDriveFixture(false)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "d1", DriveRequest{Company: "Acme", Role: "Backend", MinCGPA: "9.0"})
	require.NoError(t, err)
	assert.Equal(t, "Backend", repo.drives["d1"].Role)
	assert.Equal(t, "9.0", updated.MinCGPA)

	_, err = svc.Update(ctx, "missing", DriveRequest{Company: "X", Role: "Y"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	result, err := svc.CheckEligibility(ctx, "d1", "s1")
	require.NoError(t, err)
	assert.False(t, result.Eligible)

	_, err = svc.CheckEligibility(ctx, "d1", "ghost")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "d1"))
	assert.ErrorIs(t, svc.Delete(ctx, "d1"), appErrors.ErrNotFound)
	_, err = svc.Get(ctx, "d1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
