// Package fs defines the virtual filesystem capability set: the
// attribute and permission model, the request parameter records and
// the VirtualFs interface every backend implements. Front ends (a
// FUSE mount, an RPC server, a language binding) drive a VirtualFs;
// backends confine their side effects to their own state.
package fs

import (
	"context"
	"time"
)

// VirtualFs is the operation set of one filesystem backend. Callers
// pass their identity (uid, gid) wherever semantics depend on
// ownership. Attribute results come with a duration during which the
// caller may treat the snapshot as valid without re-querying.
//
// Every failure carries one of the error kinds of this package,
// reachable with errors.Is. No operation retries and none hides an
// error from its caller.
type VirtualFs interface {
	// Init prepares backend state. It is idempotent.
	Init(c context.Context) error

	// Destroy irreversibly removes all backing state. Teardown and
	// testing only.
	Destroy(c context.Context) error

	// Lookup resolves name under the parent directory.
	Lookup(c context.Context, parent INum, name string) (time.Duration, FileAttr, INum, error)

	// GetAttr returns the attribute snapshot of an inode.
	GetAttr(c context.Context, ino INum) (time.Duration, FileAttr, error)

	// SetAttr applies an attribute mutation request. A permission
	// failure on any field leaves the attributes completely unchanged.
	SetAttr(c context.Context, uid, gid uint32, ino INum, param SetAttrParam) (time.Duration, FileAttr, error)

	// ReadLink returns the raw target of a symlink.
	ReadLink(c context.Context, ino INum) ([]byte, error)

	// Open checks the access the flags require and returns an opaque
	// handle for use with Read, Write and Release.
	Open(c context.Context, uid, gid uint32, ino INum, flags uint32) (uint64, error)

	// Read fills dst from the inode's bytes at offset and returns the
	// number of bytes written into dst.
	Read(c context.Context, ino INum, fh uint64, offset uint64, dst []byte) (int, error)

	// Write stores data at offset and returns the number of bytes
	// accepted, which may be a prefix of data.
	Write(c context.Context, ino INum, fh uint64, offset uint64, data []byte, flags uint32) (int, error)

	// Unlink removes the named entry from the parent directory.
	Unlink(c context.Context, uid, gid uint32, parent INum, name string) error

	// Mkdir creates a directory described by param.
	Mkdir(c context.Context, param CreateParam) (time.Duration, FileAttr, INum, error)

	// MkNod creates a non-directory entry: regular file, symlink,
	// device node, fifo or socket.
	MkNod(c context.Context, param CreateParam) (time.Duration, FileAttr, INum, error)

	// ReadDir lists the entries of a directory.
	ReadDir(c context.Context, ino INum) ([]DirEntry, error)

	// Rename moves an entry between names and parents; param flags
	// control overwrite and exchange behavior.
	Rename(c context.Context, uid, gid uint32, param RenameParam) error

	// Release drops a handle. Releasing an unknown handle succeeds so
	// teardown stays idempotent under duplicate calls.
	Release(c context.Context, ino INum, fh uint64, flags uint32, lockOwner uint64, flush bool) error

	// StatFs reports filesystem-wide usage.
	StatFs(c context.Context, uid, gid uint32, ino INum) (StatFsParam, error)
}
