package records

import "sync/atomic"

// Signal is a per-collection change counter. Writers Raise it after a
// successful write; lists and facet caches compare Version against the
// last one they loaded at.
type Signal struct {
	version atomic.Uint64
}

func NewSignal() *Signal { return &Signal{} }

func (s *Signal) Version() uint64 { return s.version.Load() }

func (s *Signal) Raise() { s.version.Add(1) }
