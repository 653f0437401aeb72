package fs

import "time"

// SetAttrParam requests a mutation of a subset of attributes. A nil
// field means no change requested. LockOwner is only honored by
// backends declaring CapLockOwner, Ctime by CapClientCtime.
type SetAttrParam struct {
	Fh        *uint64
	Mode      *uint32
	Uid       *uint32
	Gid       *uint32
	Size      *uint64
	LockOwner *uint64
	Atime     *time.Time
	Mtime     *time.Time
	Ctime     *time.Time
}

// CreateParam describes a new entry: directory, regular file, symlink
// or special node. Link is the symlink target and is only meaningful
// for KindSymlink; Rdev only for device nodes.
type CreateParam struct {
	Parent INum
	Name   string
	Mode   uint32
	Rdev   uint32
	Uid    uint32
	Gid    uint32
	Kind   Kind
	Link   string
}

// Rename flags. Zero replaces an existing destination.
const (
	// RenameNoReplace fails with ErrExist when the destination exists.
	RenameNoReplace uint32 = 1 << iota
	// RenameExchange atomically swaps source and destination.
	RenameExchange
)

// RenameParam describes a rename between two parent directories.
type RenameParam struct {
	OldParent INum
	OldName   string
	NewParent INum
	NewName   string
	Flags     uint32
}

// StatFsParam mirrors POSIX statvfs fields.
type StatFsParam struct {
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Bsize   uint32
	NameLen uint32
	Frsize  uint32
}

// FileLockParam mirrors POSIX flock fields.
type FileLockParam struct {
	Fh        uint64
	LockOwner uint64
	Start     uint64
	End       uint64
	Typ       uint32
	Pid       uint32
}

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	Ino  INum
	Name string
	Kind Kind
}
