package service

import "sync"

const lockStripes = 64

// ownerLocks serializes relation toggles per owner within the process.
type ownerLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *ownerLocks) lock(ownerID uint) func() {
	m := &l.stripes[ownerID%lockStripes]
	m.Lock()
	return m.Unlock
}
