package pubsub_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
)

func TestDelivery_SettleOnce(t *testing.T) {
	var results []error
	d := pubsub.NewDelivery(&pubsub.Message{Body: []byte("a")}, func(_ context.Context, err error) error {
		results = append(results, err)
		return nil
	})

	assert.NoError(t, d.Ack(context.Background()))
	assert.NoError(t, d.Nack(context.Background(), errors.New("late")))
	assert.Equal(t, []error{nil}, results)
}

func TestDelivery_NackDefaultReason(t *testing.T) {
	var got error
	d := pubsub.NewDelivery(&pubsub.Message{}, func(_ context.Context, err error) error {
		got = err
		return nil
	})

	assert.NoError(t, d.Nack(context.Background(), nil))
	assert.Error(t, got)
}
