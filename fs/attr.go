package fs

import (
	"fmt"
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/sirupsen/logrus"
)

// INum is an opaque inode identifier. Two live entries never share one.
type INum uint64

// RootInode is the reserved identifier of the filesystem root directory.
const RootInode INum = 1

// Kind is the closed enumeration of filesystem entry types.
type Kind uint8

const (
	KindRegular Kind = iota
	KindDirectory
	KindSymlink
	KindBlockDev
	KindCharDev
	KindFIFO
	KindSocket
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindBlockDev:
		return "block device"
	case KindCharDev:
		return "character device"
	case KindFIFO:
		return "fifo"
	case KindSocket:
		return "socket"
	}
	return "unknown"
}

// Permission bits. Perm is a 12-bit structure: three special bits
// (setuid, setgid, sticky) followed by rwx for owner, group and other.
const (
	PermMask uint32 = 0o7777

	PermSetUID uint16 = 0o4000
	PermSetGID uint16 = 0o2000
	PermSticky uint16 = 0o1000

	AccessRead  uint8 = 0o4
	AccessWrite uint8 = 0o2
	AccessExec  uint8 = 0o1
)

// FileAttr is a snapshot of one inode's metadata. It is a plain value:
// every mutation produces a new copy, nothing is shared across cache
// boundaries. Ctime changes if and only if another mutable field
// changed in the same update.
type FileAttr struct {
	Ino    INum      `json:"ino"`
	Size   uint64    `json:"size"`
	Blocks uint64    `json:"blocks"`
	Atime  time.Time `json:"atime"`
	Mtime  time.Time `json:"mtime"`
	Ctime  time.Time `json:"ctime"`
	Kind   Kind      `json:"kind"`
	Perm   uint16    `json:"perm"`
	Nlink  uint32    `json:"nlink"`
	Uid    uint32    `json:"uid"`
	Gid    uint32    `json:"gid"`
	Rdev   uint32    `json:"rdev"`
}

// AccessMode selects the rwx bits applying to the given caller:
// owner bits when the uid matches, group bits when the gid matches,
// other bits as the fallback, in that precedence order.
func (a FileAttr) AccessMode(uid, gid uint32) uint8 {
	switch {
	case uid == a.Uid:
		return uint8((a.Perm >> 6) & 0o7)
	case gid == a.Gid:
		return uint8((a.Perm >> 3) & 0o7)
	default:
		return uint8(a.Perm & 0o7)
	}
}

// CapFlags declares optional set-attribute fields a backend supports.
type CapFlags uint32

const (
	// CapLockOwner enables the lock owner field of SetAttrParam.
	CapLockOwner CapFlags = 1 << iota
	// CapClientCtime lets an explicit ctime request win over the
	// implicit ctime bump.
	CapClientCtime
)

// Policy carries the permission enforcement decision for one backend
// instance. When Enforce is false every check succeeds and enforcement
// is left to the host environment, typically a kernel mount option.
type Policy struct {
	Enforce bool
	Caps    CapFlags
	Clock   timeutil.Clock
}

// NewPolicy builds a Policy. A nil clock falls back to the system clock.
func NewPolicy(enforce bool, caps CapFlags, clock timeutil.Clock) Policy {
	if clock == nil {
		clock = timeutil.RealClock()
	}
	return Policy{Enforce: enforce, Caps: caps, Clock: clock}
}

// CheckPerm decides whether a caller holds the requested access on an
// entry. The want mask is a nonzero combination of AccessRead,
// AccessWrite and AccessExec. Root always passes.
func (p Policy) CheckPerm(attr FileAttr, uid, gid uint32, want uint8) error {
	if !p.Enforce {
		return nil
	}
	if want == 0 || want > 0o7 {
		return fmt.Errorf("%w: access mask %#o out of range", ErrInvalid, want)
	}
	if uid == 0 {
		return nil
	}

	mode := attr.AccessMode(uid, gid)
	logrus.WithFields(logrus.Fields{
		"ino":  attr.Ino,
		"uid":  uid,
		"gid":  gid,
		"want": fmt.Sprintf("%#o", want),
		"mode": fmt.Sprintf("%#o", mode),
	}).Debug("permission check")

	if mode&want != want {
		return fmt.Errorf("%w: need %#o, entry grants %#o to uid %d gid %d",
			ErrPermission, want, mode, uid, gid)
	}
	return nil
}

// timesPermitted guards explicit timestamp updates. Setting atime,
// mtime or ctime to a chosen value requires ownership: root-owned
// entries only yield to root, and otherwise the caller must both pass
// a write check and own the entry.
func (p Policy) timesPermitted(cur FileAttr, uid, gid uint32) error {
	if !p.Enforce {
		return nil
	}
	if cur.Uid == 0 && uid != 0 {
		return fmt.Errorf("%w: cannot set times on a root-owned entry", ErrPermission)
	}
	if err := p.CheckPerm(cur, uid, gid, AccessWrite); err != nil {
		return err
	}
	if uid != cur.Uid {
		return fmt.Errorf("%w: cannot set times on an entry owned by uid %d",
			ErrPermission, cur.Uid)
	}
	return nil
}

// SetAttrPrecheck computes the attribute state that would result from
// applying req, without mutating anything. It reports false when no
// field actually changes, comparing values rather than presence. A
// permission violation aborts the whole request: the caller must not
// apply any part of it.
func (p Policy) SetAttrPrecheck(cur FileAttr, req SetAttrParam, uid, gid uint32) (FileAttr, bool, error) {
	dirty := cur
	now := p.Clock.Now()
	changed := false

	if req.Gid != nil {
		if uid != 0 && cur.Uid != uid {
			return cur, false, fmt.Errorf("%w: cannot change gid of an entry owned by uid %d",
				ErrPermission, cur.Uid)
		}
		if cur.Gid != *req.Gid {
			dirty.Gid = *req.Gid
			changed = true
		}
	}

	if req.Uid != nil {
		if cur.Uid != *req.Uid {
			if uid != 0 {
				return cur, false, fmt.Errorf("%w: only root may change uid", ErrPermission)
			}
			dirty.Uid = *req.Uid
			changed = true
		}
	}

	if req.Mode != nil {
		// Bits above the 12-bit permission structure are dropped.
		mode := uint16(*req.Mode & PermMask)
		if mode != cur.Perm {
			if uid != 0 && uid != cur.Uid {
				return cur, false, fmt.Errorf("%w: cannot change mode of an entry owned by uid %d",
					ErrPermission, cur.Uid)
			}
			dirty.Perm = mode
			changed = true
		}
	}

	if req.Atime != nil {
		if err := p.timesPermitted(cur, uid, gid); err != nil {
			return cur, false, err
		}
		if !req.Atime.Equal(cur.Atime) {
			dirty.Atime = *req.Atime
			changed = true
		}
	}

	if req.Mtime != nil {
		if err := p.timesPermitted(cur, uid, gid); err != nil {
			return cur, false, err
		}
		if !req.Mtime.Equal(cur.Mtime) {
			dirty.Mtime = *req.Mtime
			changed = true
		}
	}

	if req.Size != nil {
		// The backend performs the truncate or extend; the size is
		// always recorded and bumps mtime.
		dirty.Size = *req.Size
		dirty.Mtime = now
		changed = true
	}

	if changed {
		dirty.Ctime = now
	}

	// Ctime moves implicitly with any metadata change. An explicit
	// value wins only when the backend declares support for it.
	if req.Ctime != nil && p.Caps&CapClientCtime != 0 {
		if err := p.timesPermitted(cur, uid, gid); err != nil {
			return cur, false, err
		}
		if !req.Ctime.Equal(cur.Ctime) {
			dirty.Ctime = *req.Ctime
			changed = true
		}
	}

	return dirty, changed, nil
}
