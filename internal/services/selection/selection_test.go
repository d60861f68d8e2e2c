package selection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/scrubtech-backend/internal/config"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/entitlement"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetSelection(ctx context.Context, userUID string) (*models.Selection, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Selection), args.Error(1)
}

func (m *RepoMock) UpdateSelectionTx(ctx context.Context, userUID string,
	validate func(user *models.User, current []string) ([]string, *time.Time, error)) (*models.Selection, error) {
	args := m.Called(ctx, userUID, validate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Selection), args.Error(1)
}

func (m *RepoMock) ListSpecialties(ctx context.Context) ([]*models.Specialty, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Specialty), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newTestService(repo *RepoMock, cache *CacheMock) *Service {
	policy := entitlement.New(config.Entitlements{FreeMax: 1, StandardMax: 10, LockMonths: 2})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, policy, cache, logger)
}

func catalog() []*models.Specialty {
	return []*models.Specialty{
		{Slug: "cardiothoracic", Name: "Cardiothoracic"},
		{Slug: "neurosurgery", Name: "Neurosurgery"},
		{Slug: "orthopedics", Name: "Orthopedics"},
	}
}

func TestSelect_FirstSelectionFree(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	user := &models.User{UID: "uid-1", SubscriptionTier: models.TierFree}

	cache.On("Get", "specialties:catalog", mock.Anything).Return(false, nil)
	cache.On("Set", "specialties:catalog", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", "selection:uid-1").Return(nil)
	repo.On("ListSpecialties", mock.Anything).Return(catalog(), nil)
	repo.On("UpdateSelectionTx", mock.Anything, "uid-1", mock.Anything).
		Run(func(args mock.Arguments) {
			validate := args.Get(2).(func(*models.User, []string) ([]string, *time.Time, error))
			slugs, lockedUntil, err := validate(user, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"orthopedics"}, slugs)
			assert.Nil(t, lockedUntil, "free tier keeps no lock mark")
		}).
		Return(&models.Selection{Specialties: []string{"orthopedics"}}, nil)

	result, err := service.Select(context.Background(), "uid-1", []string{"orthopedics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"orthopedics"}, result.Specialties)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSelect_StandardGetsLockMark(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	user := &models.User{UID: "uid-2", SubscriptionTier: models.TierStandard}

	cache.On("Get", "specialties:catalog", mock.Anything).Return(false, nil)
	cache.On("Set", "specialties:catalog", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", "selection:uid-2").Return(nil)
	repo.On("ListSpecialties", mock.Anything).Return(catalog(), nil)
	repo.On("UpdateSelectionTx", mock.Anything, "uid-2", mock.Anything).
		Run(func(args mock.Arguments) {
			validate := args.Get(2).(func(*models.User, []string) ([]string, *time.Time, error))
			slugs, lockedUntil, err := validate(user, []string{"orthopedics"})
			require.NoError(t, err)
			assert.Equal(t, []string{"cardiothoracic", "neurosurgery"}, slugs)
			require.NotNil(t, lockedUntil)
			assert.WithinDuration(t, time.Now().UTC().AddDate(0, 2, 0), *lockedUntil, time.Minute)
		}).
		Return(&models.Selection{Specialties: []string{"cardiothoracic", "neurosurgery"}}, nil)

	_, err := service.Select(context.Background(), "uid-2", []string{"neurosurgery", "cardiothoracic"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSelect_UnknownSlugRejectedBeforeTx(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	cache.On("Get", "specialties:catalog", mock.Anything).Return(false, nil)
	cache.On("Set", "specialties:catalog", mock.Anything, mock.Anything).Return(nil)
	repo.On("ListSpecialties", mock.Anything).Return(catalog(), nil)

	_, err := service.Select(context.Background(), "uid-1", []string{"underwater-basket-weaving"})
	assert.ErrorIs(t, err, entitlement.ErrUnknownSpecialty)
	repo.AssertNotCalled(t, "UpdateSelectionTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestSelect_LockedSelectionPropagates(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	cache.On("Get", "specialties:catalog", mock.Anything).Return(false, nil)
	cache.On("Set", "specialties:catalog", mock.Anything, mock.Anything).Return(nil)
	repo.On("ListSpecialties", mock.Anything).Return(catalog(), nil)
	repo.On("UpdateSelectionTx", mock.Anything, "uid-3", mock.Anything).
		Return(nil, entitlement.ErrSelectionLocked)

	_, err := service.Select(context.Background(), "uid-3", []string{"orthopedics"})
	assert.ErrorIs(t, err, entitlement.ErrSelectionLocked)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestGetStatus_CacheMiss(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	user := &models.User{UID: "uid-1", SubscriptionTier: models.TierFree}
	sel := &models.Selection{Specialties: []string{"orthopedics"}}

	repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
	cache.On("Get", "selection:uid-1", mock.Anything).Return(false, nil)
	repo.On("GetSelection", mock.Anything, "uid-1").Return(sel, nil)
	cache.On("Set", "selection:uid-1", sel, time.Hour).Return(nil)

	status, err := service.GetStatus(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, status.Tier)
	assert.Equal(t, 1, status.Limits.MaxSpecialties)
	assert.False(t, status.CanModify, "free tier with a saved selection is locked")
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestHasSpecialty(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	user := &models.User{UID: "uid-1", SubscriptionTier: models.TierStandard}
	sel := &models.Selection{Specialties: []string{"cardiothoracic", "orthopedics"}}

	repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
	cache.On("Get", "selection:uid-1", mock.Anything).Return(false, nil)
	repo.On("GetSelection", mock.Anything, "uid-1").Return(sel, nil)
	cache.On("Set", "selection:uid-1", sel, time.Hour).Return(nil)

	ok, err := service.HasSpecialty(context.Background(), "uid-1", "orthopedics")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasSpecialty(context.Background(), "uid-1", "neurosurgery")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetStatus_RepoError(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	service := newTestService(repo, cache)

	repo.On("GetUser", mock.Anything, "uid-404").Return(nil, errors.New("db error"))

	_, err := service.GetStatus(context.Background(), "uid-404")
	assert.Error(t, err)
}
