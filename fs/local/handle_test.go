package local

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovh/pvfs/fs"
)

func TestHandleTableInsert(t *testing.T) {
	table := newHandleTable()

	fh1 := table.insert(fs.INum(10))
	fh2 := table.insert(fs.INum(10))
	fh3 := table.insert(fs.INum(20))

	assert.NotEqual(t, fh1, fh2)
	assert.NotEqual(t, fh2, fh3)
	assert.Equal(t, 2, table.opens(fs.INum(10)))
	assert.Equal(t, 1, table.opens(fs.INum(20)))

	ino, ok := table.lookup(fh1)
	assert.True(t, ok)
	assert.Equal(t, fs.INum(10), ino)
}

func TestHandleTableRelease(t *testing.T) {
	table := newHandleTable()

	fh := table.insert(fs.INum(10))
	other := table.insert(fs.INum(10))

	table.release(fh)

	_, ok := table.lookup(fh)
	assert.False(t, ok)
	_, ok = table.lookup(other)
	assert.True(t, ok)
	assert.Equal(t, 1, table.opens(fs.INum(10)))

	// Releasing twice, or releasing a handle that never existed,
	// changes nothing.
	table.release(fh)
	table.release(4242)
	assert.Equal(t, 1, table.opens(fs.INum(10)))
}

func TestHandleTableConcurrency(t *testing.T) {
	table := newHandleTable()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fh := table.insert(fs.INum(10))
			table.release(fh)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, table.opens(fs.INum(10)))
}
