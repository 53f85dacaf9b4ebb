package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

var ts = time.Date(2024, 4, 21, 14, 0, 0, 0, time.UTC)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("race.lap_completed", func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("race.lap_completed", "session", ts, 3)))
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Data())
	assert.Equal(t, "session", got.Source())
	assert.Equal(t, ts, got.Timestamp())
}

func TestDeliveryKeepsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe("e", func(Event) error { order = append(order, i); return nil })
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("e", "s", ts, nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("e", func(Event) error { count++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("e", "s", ts, nil)))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Publish(NewEvent("e", "s", ts, nil)))

	assert.Equal(t, 1, count)
	assert.False(t, sub.IsActive())
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("first"), errors.New("second")
	_, _ = b.Subscribe("e", func(Event) error { return e1 })
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_, _ = b.Subscribe("e", func(Event) error { return e2 })

	err := b.Publish(NewEvent("e", "s", ts, nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	err = b.PublishBatch(NewEvent("e", "s", ts, nil), NewEvent("other", "s", ts, nil))
	assert.ErrorIs(t, err, e2)
}

func TestRejectsNil(t *testing.T) {
	b := New()
	_, err := b.Subscribe("e", nil)
	assert.Error(t, err)
	assert.Error(t, b.Publish(nil))
}

func TestMetricsWithoutObservers(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_, _ = b.Subscribe("e", func(Event) error { return errors.New("boom") })
	_ = b.Publish(NewEvent("e", "s", ts, nil))
	_ = b.Publish(NewEvent("other", "s", ts, nil))

	m := b.GetMetrics()
	assert.Equal(t, uint64(2), m.Published)
	assert.Equal(t, uint64(2), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.Errors)
	assert.Equal(t, uint64(2), m.SubscribersActive)
}

func TestObserversNotified(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", ts, nil))

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", ts, nil))

	m := b.GetMetrics()
	assert.Equal(t, uint64(2), m.Published)
	assert.Equal(t, uint64(2), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", ts, nil))
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, uint64(3), b.GetMetrics().Published)
}
