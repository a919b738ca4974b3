package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzhole/llmgate/internal/model"
)

func receive(t *testing.T, sub *Subscription) model.Message {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return model.Message{}
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()
	err := b.Publish(model.NewUserRequest("hello", nil))
	assert.ErrorIs(t, err, ErrNoSubscribers)
}

func TestFanOut(t *testing.T) {
	b := New()
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Cancel()
	defer s2.Cancel()

	msg := model.NewUserRequest("hello", nil)
	require.NoError(t, b.Publish(msg))

	got1 := receive(t, s1)
	got2 := receive(t, s2)
	assert.Equal(t, msg.ID, got1.ID)
	assert.Equal(t, msg.ID, got2.ID)
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	b := New()
	early := b.Subscribe()
	defer early.Cancel()

	require.NoError(t, b.Publish(model.NewUserRequest("first", nil)))

	late := b.Subscribe()
	defer late.Cancel()
	require.NoError(t, b.Publish(model.NewUserRequest("second", nil)))

	got := receive(t, late)
	assert.Equal(t, "second", got.UserRequest.Content)
	select {
	case extra := <-late.C():
		t.Fatalf("late subscriber should not see earlier messages, got %v", extra.Type)
	default:
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	b := New(WithBufferSize(2))
	sub := b.Subscribe()
	defer sub.Cancel()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, b.Publish(model.NewUserRequest(content, nil)))
	}

	// Buffer of two: "one" was evicted to make room for "three".
	assert.Equal(t, "two", receive(t, sub).UserRequest.Content)
	assert.Equal(t, "three", receive(t, sub).UserRequest.Content)
}

func TestCancel(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	assert.Equal(t, 1, b.SubscriberCount())

	sub.Cancel()
	assert.Equal(t, 0, b.SubscriberCount())

	// Cancel is idempotent.
	sub.Cancel()

	err := b.Publish(model.NewUserRequest("into the void", nil))
	assert.ErrorIs(t, err, ErrNoSubscribers)
}
