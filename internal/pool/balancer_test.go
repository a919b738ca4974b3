package pool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinCycles(t *testing.T) {
	b := NewLoadBalancer()
	ids := []string{"a", "b", "c"}

	var got []string
	for i := 0; i < 6; i++ {
		id, ok := b.RoundRobin(ids)
		require.True(t, ok)
		got = append(got, id)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, got)
}

func TestRoundRobinEmpty(t *testing.T) {
	b := NewLoadBalancer()
	id, ok := b.RoundRobin(nil)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestPreferLocal(t *testing.T) {
	b := NewLoadBalancer()
	ids := []string{"cloud-1", "local-1", "local-2"}
	isLocal := func(id string) bool { return strings.HasPrefix(id, "local-") }

	for i := 0; i < 4; i++ {
		id, ok := b.PreferLocal(ids, isLocal)
		require.True(t, ok)
		assert.True(t, isLocal(id), "cloud backend chosen while locals are available")
	}

	// Without locals the cloud group serves.
	id, ok := b.PreferLocal([]string{"cloud-1"}, isLocal)
	require.True(t, ok)
	assert.Equal(t, "cloud-1", id)
}

func TestLeastLoadedFallsBackToRoundRobin(t *testing.T) {
	b := NewLoadBalancer()
	first, ok := b.LeastLoaded([]string{"a", "b"})
	require.True(t, ok)
	second, ok := b.LeastLoaded([]string{"a", "b"})
	require.True(t, ok)
	assert.NotEqual(t, first, second)
}
