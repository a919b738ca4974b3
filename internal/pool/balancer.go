package pool

import "sync/atomic"

// LoadBalancer selects from a caller-supplied id list. It is stateless
// apart from the monotonic round-robin counter.
type LoadBalancer struct {
	counter atomic.Uint64
}

// NewLoadBalancer creates a balancer with a fresh counter.
func NewLoadBalancer() *LoadBalancer {
	return &LoadBalancer{}
}

// RoundRobin returns ids[counter++ % len], or "" for an empty list.
func (b *LoadBalancer) RoundRobin(ids []string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	n := b.counter.Add(1) - 1
	return ids[n%uint64(len(ids))], true
}

// PreferLocal partitions ids with the predicate and round-robins within
// the local group when it is non-empty, else within the rest.
func (b *LoadBalancer) PreferLocal(ids []string, isLocal func(string) bool) (string, bool) {
	var local, cloud []string
	for _, id := range ids {
		if isLocal(id) {
			local = append(local, id)
		} else {
			cloud = append(cloud, id)
		}
	}
	if len(local) > 0 {
		return b.RoundRobin(local)
	}
	return b.RoundRobin(cloud)
}

// LeastLoaded currently falls back to round-robin; real load tracking
// needs per-backend usage metrics the core does not collect.
func (b *LoadBalancer) LeastLoaded(ids []string) (string, bool) {
	return b.RoundRobin(ids)
}
