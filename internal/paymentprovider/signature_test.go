package paymentprovider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	t.Run("валидная подпись принимается", func(t *testing.T) {
		header := SignPayload(payload, secret, now)
		require.NoError(t, VerifySignature(payload, header, secret, DefaultTolerance, now))
	})

	t.Run("подпись на другом секрете отклоняется", func(t *testing.T) {
		header := SignPayload(payload, "whsec_other", now)
		err := VerifySignature(payload, header, secret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("изменённое тело отклоняется", func(t *testing.T) {
		header := SignPayload(payload, secret, now)
		tampered := []byte(`{"id":"evt_1","type":"customer.subscription.deleted"}`)
		err := VerifySignature(tampered, header, secret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("пустой заголовок отклоняется", func(t *testing.T) {
		err := VerifySignature(payload, "", secret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("мусорный заголовок отклоняется", func(t *testing.T) {
		err := VerifySignature(payload, "not-a-signature", secret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("просроченная метка времени отклоняется", func(t *testing.T) {
		header := SignPayload(payload, secret, now.Add(-DefaultTolerance-time.Minute))
		err := VerifySignature(payload, header, secret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("метка из будущего отклоняется", func(t *testing.T) {
		header := SignPayload(payload, secret, now.Add(DefaultTolerance+time.Minute))
		err := VerifySignature(payload, header, secret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("метка в пределах допуска принимается", func(t *testing.T) {
		header := SignPayload(payload, secret, now.Add(-DefaultTolerance+time.Minute))
		require.NoError(t, VerifySignature(payload, header, secret, DefaultTolerance, now))
	})
}

func TestSubscriptionPriceID(t *testing.T) {
	var sub Subscription
	assert.Equal(t, "", sub.PriceID(), "no items means no price")
}
