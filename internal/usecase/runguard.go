package usecase

import "sync/atomic"

// RunGuard serializes overlapping runs by token: each run takes a token at
// start, and a run whose token is no longer current when its result lands is
// stale and must be discarded (last request wins). The zero value is ready.
type RunGuard struct {
	current atomic.Uint64
}

// Begin registers a new run and returns its token, superseding prior runs.
func (g *RunGuard) Begin() uint64 {
	return g.current.Add(1)
}

// Stale reports whether the run identified by token has been superseded.
func (g *RunGuard) Stale(token uint64) bool {
	return g.current.Load() != token
}
