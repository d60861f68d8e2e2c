package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/scrubtech-backend/internal/config"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

func testPolicy() *Policy {
	return New(config.Entitlements{
		DefaultTier: "free",
		FreeMax:     1,
		StandardMax: 10,
		LockMonths:  2,
	})
}

func TestLimits(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name       string
		tier       models.Tier
		max        int
		changeable bool
	}{
		{name: "free ограничен одной специализацией", tier: models.TierFree, max: 1, changeable: false},
		{name: "standard ограничен десятью", tier: models.TierStandard, max: 10, changeable: true},
		{name: "premium без лимита", tier: models.TierPremium, max: Unlimited, changeable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := policy.Limits(tt.tier)
			assert.Equal(t, tt.max, limits.MaxSpecialties)
			assert.Equal(t, tt.changeable, limits.Changeable)
		})
	}
}

func TestCanModify_FreeTier(t *testing.T) {
	policy := testPolicy()
	now := time.Now().UTC()
	user := &models.User{SubscriptionTier: models.TierFree}

	assert.True(t, policy.CanModify(user, nil, now), "first selection is allowed")
	assert.False(t, policy.CanModify(user, []string{"orthopedics"}, now),
		"non-empty selection is permanent on free tier")
	// Блокировка не истекает со временем.
	assert.False(t, policy.CanModify(user, []string{"orthopedics"}, now.AddDate(10, 0, 0)))
}

func TestCanModify_StandardTier(t *testing.T) {
	policy := testPolicy()
	now := time.Now().UTC()
	lockedUntil := now.AddDate(0, 2, 0)
	user := &models.User{
		SubscriptionTier:     models.TierStandard,
		SpecialtyLockedUntil: &lockedUntil,
	}

	current := []string{"cardiothoracic", "orthopedics"}
	assert.False(t, policy.CanModify(user, current, now))
	assert.False(t, policy.CanModify(user, current, lockedUntil.Add(-time.Minute)))
	assert.True(t, policy.CanModify(user, current, lockedUntil), "lock expires exactly at the mark")
	assert.True(t, policy.CanModify(user, current, lockedUntil.Add(time.Hour)))

	// Без метки блокировки менять можно сразу.
	user.SpecialtyLockedUntil = nil
	assert.True(t, policy.CanModify(user, current, now))
}

func TestCanModify_PremiumTier(t *testing.T) {
	policy := testPolicy()
	now := time.Now().UTC()
	lockedUntil := now.AddDate(0, 1, 0)
	user := &models.User{
		SubscriptionTier:     models.TierPremium,
		SpecialtyLockedUntil: &lockedUntil,
	}

	assert.True(t, policy.CanModify(user, []string{"a", "b", "c"}, now),
		"premium is never locked, even with a stale lock mark")
}

func TestValidateSelection(t *testing.T) {
	policy := testPolicy()
	now := time.Now().UTC()
	lockedUntil := now.AddDate(0, 2, 0)

	tests := []struct {
		name      string
		user      *models.User
		current   []string
		requested []string
		want      []string
		wantErr   error
	}{
		{
			name:      "первый выбор на free",
			user:      &models.User{SubscriptionTier: models.TierFree},
			requested: []string{"orthopedics"},
			want:      []string{"orthopedics"},
		},
		{
			name:      "повторный выбор на free отклоняется",
			user:      &models.User{SubscriptionTier: models.TierFree},
			current:   []string{"orthopedics"},
			requested: []string{"cardiothoracic"},
			wantErr:   ErrSelectionLocked,
		},
		{
			name:      "free не может взять две",
			user:      &models.User{SubscriptionTier: models.TierFree},
			requested: []string{"orthopedics", "cardiothoracic"},
			wantErr:   ErrLimitExceeded,
		},
		{
			name:      "standard в пределах лимита",
			user:      &models.User{SubscriptionTier: models.TierStandard},
			requested: []string{"orthopedics", "cardiothoracic", "neurosurgery"},
			want:      []string{"cardiothoracic", "neurosurgery", "orthopedics"},
		},
		{
			name:      "standard сверх лимита",
			user:      &models.User{SubscriptionTier: models.TierStandard},
			requested: []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11"},
			wantErr:   ErrLimitExceeded,
		},
		{
			name: "standard до истечения блокировки",
			user: &models.User{
				SubscriptionTier:     models.TierStandard,
				SpecialtyLockedUntil: &lockedUntil,
			},
			current:   []string{"orthopedics"},
			requested: []string{"cardiothoracic"},
			wantErr:   ErrSelectionLocked,
		},
		{
			name:      "premium без ограничений",
			user:      &models.User{SubscriptionTier: models.TierPremium},
			requested: []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11", "s12", "s13", "s14", "s15"},
			want:      []string{"s1", "s10", "s11", "s12", "s13", "s14", "s15", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"},
		},
		{
			name:      "пустой запрос",
			user:      &models.User{SubscriptionTier: models.TierPremium},
			requested: nil,
			wantErr:   ErrEmptySelection,
		},
		{
			name:      "дубликаты и пустые строки отбрасываются",
			user:      &models.User{SubscriptionTier: models.TierStandard},
			requested: []string{"orthopedics", "", "orthopedics", "cardiothoracic"},
			want:      []string{"cardiothoracic", "orthopedics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.ValidateSelection(tt.user, tt.current, tt.requested, now)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSelection_DowngradedSelectionKept(t *testing.T) {
	policy := testPolicy()
	now := time.Now().UTC()

	// Пользователь выбрал три специализации на standard и понизился до free.
	// Существующий выбор не трогается, но менять его нельзя.
	user := &models.User{SubscriptionTier: models.TierFree}
	current := []string{"cardiothoracic", "neurosurgery", "orthopedics"}

	_, err := policy.ValidateSelection(user, current, []string{"orthopedics"}, now)
	assert.ErrorIs(t, err, ErrSelectionLocked)
}

func TestLockAfterSave(t *testing.T) {
	policy := testPolicy()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, policy.LockAfterSave(models.TierFree, now))
	assert.Nil(t, policy.LockAfterSave(models.TierPremium, now))

	locked := policy.LockAfterSave(models.TierStandard, now)
	require.NotNil(t, locked)
	assert.Equal(t, now.AddDate(0, 2, 0), *locked)
}
