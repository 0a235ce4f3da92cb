package backend

import (
	"sync"
)

// Backend represents a single upstream server with connection tracking
// and a maintenance flag. All counter fields are guarded by one mutex so
// that assignment hands out the connection id and bumps both counters as
// a single atomic step.
type Backend struct {
	address           string
	mutex             sync.Mutex
	activeConnections int
	totalHandled      uint64
	maintenance       bool
}

// Stats is a point-in-time copy of a backend's counters, read under a
// single lock acquisition.
type Stats struct {
	Address           string
	ActiveConnections int
	TotalHandled      uint64
	Maintenance       bool
}

// New creates a Backend for the given host:port address.
// The backend starts in service, with zeroed counters.
func New(address string) *Backend {
	return &Backend{
		address: address,
	}
}

// Address returns the backend's host:port address.
func (b *Backend) Address() string {
	return b.address
}

// Assign reserves the backend for one new connection: it increments the
// active connection count, increments the lifetime total, and returns
// the new total as the connection id. Ids therefore start at 1 and are
// unique per backend.
func (b *Backend) Assign() uint64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.activeConnections++
	b.totalHandled++
	return b.totalHandled
}

// Release drops the active connection count after a connection ends.
// It reports whether the count was decremented; false means there was
// no matching assignment and the count stays at zero. The lifetime
// total is untouched.
func (b *Backend) Release() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.activeConnections == 0 {
		return false
	}
	b.activeConnections--
	return true
}

// ActiveConnections returns the current number of in-flight connections.
func (b *Backend) ActiveConnections() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.activeConnections
}

// TotalHandled returns the number of connections assigned over the
// backend's lifetime, including ones whose dial failed.
func (b *Backend) TotalHandled() uint64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.totalHandled
}

// InMaintenance returns true if the backend is withdrawn from selection.
func (b *Backend) InMaintenance() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.maintenance
}

// SetMaintenance updates the maintenance flag.
// Returns true if the flag changed, false if it was already in that state.
// Existing connections are unaffected either way.
func (b *Backend) SetMaintenance(maintenance bool) (changed bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.maintenance == maintenance {
		return false
	}

	b.maintenance = maintenance
	return true
}

// Snapshot returns all counters in one consistent read.
func (b *Backend) Snapshot() Stats {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return Stats{
		Address:           b.address,
		ActiveConnections: b.activeConnections,
		TotalHandled:      b.totalHandled,
		Maintenance:       b.maintenance,
	}
}
