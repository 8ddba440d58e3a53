package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderMultiplexer_Register(t *testing.T) {
	mux := NewSenderMux()

	assert.Error(t, mux.Register(" ", NewNoopSender("x")))
	assert.Error(t, mux.Register("APNS", NewNoopSender("x")))
	assert.Error(t, mux.Register("apns", nil))

	require.NoError(t, mux.Register(ServiceAPNS, NewNoopSender(ServiceAPNS)))
	err := mux.Register(ServiceAPNS, NewNoopSender(ServiceAPNS))
	assert.True(t, errors.Is(err, ErrServiceAlreadyRegistered))

	assert.Panics(t, func() {
		mux.MustRegister(ServiceAPNS, NewNoopSender(ServiceAPNS))
	})
}

func TestSenderMultiplexer_Send(t *testing.T) {
	mux := NewNoopSenderMux()
	ctx := context.Background()

	assert.Equal(t, []string{ServiceAPNS, ServiceGCM}, mux.Services(ctx))

	t.Run("nil batch", func(t *testing.T) {
		report, err := mux.Send(ctx, nil)
		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrInvalidBatch)
	})

	t.Run("invalid batch", func(t *testing.T) {
		report, err := mux.Send(ctx, &Batch{Service: ServiceGCM})
		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrInvalidBatch)
	})

	t.Run("unknown service", func(t *testing.T) {
		report, err := mux.Send(ctx, &Batch{
			ReferenceID: "ref",
			JobID:       "job",
			BundleID:    "com.a.b",
			Service:     "sms",
			Payload:     []byte(`{}`),
		})
		assert.Nil(t, report)
		assert.True(t, errors.Is(err, ErrServiceNotRegistered))
	})

	t.Run("payload not json object", func(t *testing.T) {
		report, err := mux.Send(ctx, &Batch{
			ReferenceID: "ref",
			JobID:       "job",
			BundleID:    "com.a.b",
			Service:     ServiceAPNS,
			Payload:     []byte(`[1]`),
		})
		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrInvalidBatch)
	})

	t.Run("ok", func(t *testing.T) {
		report, err := mux.Send(ctx, &Batch{
			ReferenceID: "ref",
			JobID:       "job",
			BundleID:    "com.a.b",
			Service:     ServiceGCM,
			Payload:     []byte(`{"title":"hello"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, &Report{ReferenceID: "ref", Service: ServiceGCM, SuccessCount: 1}, report)
	})
}
