package queue

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/customer-address-backend/internal/logging"
	"github.com/unclebandit/customer-address-backend/internal/model"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	q := NewInMemoryQueue(logging.Discard())
	err := q.Publish("customer_events", model.ChangeEvent{Type: model.EventCustomerCreated})
	require.Error(t, err)
}

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	q := NewInMemoryQueue(logging.Discard())
	got := make(chan model.ChangeEvent, 2)

	for i := 0; i < 2; i++ {
		require.NoError(t, q.Subscribe("customer_events", func(payload any) error {
			ev, err := DecodeEvent(payload)
			if err != nil {
				return err
			}
			got <- ev
			return nil
		}))
	}

	require.NoError(t, q.Publish("customer_events", model.ChangeEvent{Type: model.EventCustomerDeleted, CustomerID: 4}))

	for i := 0; i < 2; i++ {
		select {
		case ev := <-got:
			assert.Equal(t, 4, ev.CustomerID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestFailedJobsAreRetried(t *testing.T) {
	q := NewInMemoryQueue(logging.Discard())
	q.Backoff = time.Millisecond

	var attempts int32
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish("t", 1))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never succeeded")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestRetriesStopAtMax(t *testing.T) {
	q := NewInMemoryQueue(logging.Discard())
	q.Backoff = time.Millisecond
	q.MaxRetries = 2

	var attempts int32
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent")
	}))
	require.NoError(t, q.Publish("t", 1))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestDecodeEvent(t *testing.T) {
	body, err := json.Marshal(model.ChangeEvent{ID: "e1", Type: model.EventAddressCreated, CustomerID: 2, AddressID: 8})
	require.NoError(t, err)

	ev, err := DecodeEvent(json.RawMessage(body))
	require.NoError(t, err)
	assert.Equal(t, 8, ev.AddressID)

	_, err = DecodeEvent([]byte(`{"id":"e2"}`))
	assert.Error(t, err)

	_, err = DecodeEvent(42)
	assert.Error(t, err)
}
