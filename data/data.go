// Package data defines the byte-storage capability a filesystem
// backend delegates raw reads and writes to. Implementations key byte
// ranges by inode; the only guarantee consumed upstream is that a
// read of a range returns the bytes of a write to it once that write
// has returned.
package data

import (
	"context"

	"github.com/ovh/pvfs/fs"
)

// Backend moves bytes for one storage substrate.
type Backend interface {
	// Setup configures the backend from a driver-specific value.
	Setup(conf interface{}) error

	// Read returns up to size bytes at offset. Reading past the end
	// of the stored bytes yields a short or empty result, not an
	// error; an inode with no bytes stored reads as empty.
	Read(c context.Context, ino fs.INum, fh uint64, offset uint64, size uint32) ([]byte, error)

	// Write stores data at offset, extending the object as needed.
	Write(c context.Context, ino fs.INum, fh uint64, offset uint64, data []byte) error

	// Truncate resizes the stored bytes, zero-filling on extension.
	Truncate(c context.Context, ino fs.INum, size uint64) error

	// Remove drops all bytes of an inode. Removing an inode with no
	// bytes stored succeeds.
	Remove(c context.Context, ino fs.INum) error
}
