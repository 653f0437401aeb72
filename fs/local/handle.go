package local

import (
	"sync"

	"github.com/ovh/pvfs/fs"
)

// handleTable tracks open file handles. Each open call gets its own
// handle value, so two opens of the same inode never collapse to one
// entry and releasing one leaves the other tracked. The guard covers
// only the map mutation, never an I/O suspension.
type handleTable struct {
	mutex sync.Mutex
	last  uint64
	open  map[uint64]fs.INum
}

func newHandleTable() *handleTable {
	return &handleTable{
		open: make(map[uint64]fs.INum),
	}
}

func (t *handleTable) insert(ino fs.INum) uint64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.last++
	t.open[t.last] = ino
	return t.last
}

// release drops a handle. Unknown handles are ignored so duplicate
// releases stay idempotent.
func (t *handleTable) release(fh uint64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	delete(t.open, fh)
}

func (t *handleTable) lookup(fh uint64) (fs.INum, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	ino, ok := t.open[fh]
	return ino, ok
}

// opens counts the live handles of one inode.
func (t *handleTable) opens(ino fs.INum) (count int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, open := range t.open {
		if open == ino {
			count++
		}
	}
	return count
}
