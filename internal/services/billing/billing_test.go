package billing

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
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetUserByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) AttachStripeSubscription(ctx context.Context, userUID, customerID, subscriptionID string, tier models.Tier, status string) error {
	return m.Called(ctx, userUID, customerID, subscriptionID, tier, status).Error(0)
}

func (m *RepoMock) UpdateSubscriptionTier(ctx context.Context, userUID string, tier models.Tier, status string) error {
	return m.Called(ctx, userUID, tier, status).Error(0)
}

func (m *RepoMock) ClearStripeSubscription(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

func (m *RepoMock) HasWebhookEvent(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) InsertWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	args := m.Called(ctx, eventID, eventType)
	return args.Bool(0), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CheckoutSession), args.Error(1)
}

func (m *ProviderMock) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*paymentprovider.PortalSession, error) {
	args := m.Called(ctx, customerID, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PortalSession), args.Error(1)
}

func (m *ProviderMock) GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Subscription), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

const testWebhookSecret = "whsec_test"

func testPrices() config.Stripe {
	return config.Stripe{
		WebhookSecret:        testWebhookSecret,
		PriceStandardMonthly: "price_std_m",
		PriceStandardAnnual:  "price_std_y",
		PricePremiumMonthly:  "price_prm_m",
		PricePremiumAnnual:   "price_prm_y",
	}
}

func newTestService(repo *RepoMock, provider *ProviderMock, publisher *PublisherMock) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var pub Publisher
	if publisher != nil {
		pub = publisher
	}
	return New(repo, provider, pub, testPrices(), logger)
}

func providerSubscription(id, priceID, status string) *paymentprovider.Subscription {
	sub := &paymentprovider.Subscription{ID: id, Status: status}
	sub.Items.Data = []struct {
		Price struct {
			ID string `json:"id"`
		} `json:"price"`
	}{{}}
	sub.Items.Data[0].Price.ID = priceID
	return sub
}

func TestTierForPrice(t *testing.T) {
	service := newTestService(new(RepoMock), new(ProviderMock), nil)

	tests := []struct {
		priceID string
		tier    models.Tier
		ok      bool
	}{
		{"price_std_m", models.TierStandard, true},
		{"price_std_y", models.TierStandard, true},
		{"price_prm_m", models.TierPremium, true},
		{"price_prm_y", models.TierPremium, true},
		{"price_unknown", models.TierFree, false},
		{"", models.TierFree, false},
	}

	for _, tt := range tests {
		tier, ok := service.TierForPrice(tt.priceID)
		assert.Equal(t, tt.tier, tier, tt.priceID)
		assert.Equal(t, tt.ok, ok, tt.priceID)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	service := newTestService(repo, provider, nil)

	user := &models.User{UID: "uid-1", Email: "tech@example.com", SubscriptionTier: models.TierFree}
	repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
	provider.On("CreateCheckoutSession", mock.Anything, paymentprovider.CreateCheckoutSessionRequest{
		PriceID:           "price_prm_m",
		ClientReferenceID: "uid-1",
		CustomerEmail:     "tech@example.com",
		SuccessURL:        "https://app.example.com/ok",
		CancelURL:         "https://app.example.com/cancel",
	}).Return(&paymentprovider.CheckoutSession{
		ID:  "cs_123",
		URL: "https://checkout.stripe.com/cs_123",
	}, nil)

	url, err := service.CreateCheckoutSession(context.Background(), "uid-1", "price_prm_m",
		"https://app.example.com/ok", "https://app.example.com/cancel")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/cs_123", url)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestCreateCheckoutSession_UnknownPrice(t *testing.T) {
	repo := new(RepoMock)
	service := newTestService(repo, new(ProviderMock), nil)

	_, err := service.CreateCheckoutSession(context.Background(), "uid-1", "price_bogus", "https://ok", "https://no")
	assert.ErrorIs(t, err, ErrInvalidPrice)
	repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestCreatePortalSession_NoBillingRelationship(t *testing.T) {
	repo := new(RepoMock)
	service := newTestService(repo, new(ProviderMock), nil)

	repo.On("GetUser", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", SubscriptionTier: models.TierFree}, nil)

	_, err := service.CreatePortalSession(context.Background(), "uid-1", "https://app.example.com/account")
	assert.ErrorIs(t, err, ErrNoSubscription)
}

func TestGetStatus_Degraded(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	service := newTestService(repo, provider, nil)

	subID := "sub_123"
	repo.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
		UID:                  "uid-1",
		SubscriptionTier:     models.TierPremium,
		SubscriptionStatus:   "active",
		StripeSubscriptionID: &subID,
	}, nil)
	provider.On("GetSubscription", mock.Anything, "sub_123").
		Return(nil, paymentprovider.ErrUnavailable)

	status, err := service.GetStatus(context.Background(), "uid-1")
	require.NoError(t, err, "provider outage must not fail the status endpoint")
	assert.True(t, status.Degraded)
	assert.Equal(t, models.TierPremium, status.Tier)
	assert.True(t, status.Active, "local status is still reported")
}

func TestGetStatus_Live(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	service := newTestService(repo, provider, nil)

	subID := "sub_123"
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
		UID:                  "uid-1",
		SubscriptionTier:     models.TierStandard,
		SubscriptionStatus:   "active",
		StripeSubscriptionID: &subID,
	}, nil)
	sub := providerSubscription("sub_123", "price_std_m", "active")
	sub.CancelAtPeriodEnd = true
	sub.CurrentPeriodEnd = periodEnd.Unix()
	provider.On("GetSubscription", mock.Anything, "sub_123").Return(sub, nil)

	status, err := service.GetStatus(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, status.Degraded)
	assert.True(t, status.Active)
	assert.True(t, status.CancelAtPeriodEnd)
	require.NotNil(t, status.CurrentPeriodEnd)
	assert.Equal(t, periodEnd, *status.CurrentPeriodEnd)
}

func TestGetStatus_RepoError(t *testing.T) {
	repo := new(RepoMock)
	service := newTestService(repo, new(ProviderMock), nil)

	repo.On("GetUser", mock.Anything, "uid-404").Return(nil, errors.New("db error"))

	_, err := service.GetStatus(context.Background(), "uid-404")
	assert.Error(t, err)
}
