package swift

import (
	"sync"

	lib "github.com/ncw/swift"
)

// ResourceHolder bounds the number of operations borrowing the shared
// swift connection at once.
type ResourceHolder struct {
	capacity uint32
	borrows  uint32
	mutex    sync.RWMutex
	con      *lib.Connection
}

func NewResourceHolder(capacity uint32, con *lib.Connection) *ResourceHolder {
	return &ResourceHolder{
		capacity: capacity,
		con:      con,
	}
}

func (h *ResourceHolder) Borrow() *lib.Connection {
	var granted bool

Acquire:
	h.onWriteLock(func() {
		if h.borrows < h.capacity {
			h.borrows++
			granted = true
		}
	})
	if !granted {
		goto Acquire
	}

	return h.con
}

func (h *ResourceHolder) Return() {
	h.onWriteLock(func() { h.borrows-- })
}

func (h *ResourceHolder) onLock(lock func(), unlock func(), handler func()) {
	lock()
	defer unlock()
	handler()
}

func (h *ResourceHolder) onReadLock(handler func()) {
	h.onLock(h.mutex.RLock, h.mutex.RUnlock, handler)
}

func (h *ResourceHolder) onWriteLock(handler func()) {
	h.onLock(h.mutex.Lock, h.mutex.Unlock, handler)
}
