// Package local implements the reference filesystem backend. Entry
// resolution goes through an explicit directory index held in a
// key-value store; raw bytes are delegated to a data backend keyed by
// inode. The backend owns no byte-range cache of its own.
package local

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ovh/pvfs/data"
	"github.com/ovh/pvfs/fs"
	"github.com/ovh/pvfs/store"
)

// Config assembles a backend instance.
type Config struct {
	// Root is the directory holding the backend's local state.
	Root string
	// BlockSize reported by StatFs, 4096 when zero.
	BlockSize uint32
	// CacheTTL is the validity duration attached to attribute
	// snapshots, one second when zero.
	CacheTTL time.Duration
	// Policy decides permission enforcement.
	Policy fs.Policy
	// Store persists the directory index.
	Store store.Store
	// Data moves raw bytes.
	Data data.Backend
}

// LocalFs maps inode identifiers onto a key-value index and a byte
// storage backend rooted at a fixed namespace.
type LocalFs struct {
	root    string
	bsize   uint32
	ttl     time.Duration
	policy  fs.Policy
	idx     index
	data    data.Backend
	handles *handleTable
}

func New(conf *Config) (*LocalFs, error) {
	if conf.Store == nil || conf.Data == nil {
		return nil, fmt.Errorf("%w: backend needs a store and a data backend", fs.ErrInvalid)
	}

	l := &LocalFs{
		root:    conf.Root,
		bsize:   conf.BlockSize,
		ttl:     conf.CacheTTL,
		policy:  conf.Policy,
		idx:     index{s: conf.Store},
		data:    conf.Data,
		handles: newHandleTable(),
	}
	if l.bsize == 0 {
		l.bsize = 4096
	}
	if l.ttl == 0 {
		l.ttl = time.Second
	}
	if l.policy.Clock == nil {
		l.policy = fs.NewPolicy(l.policy.Enforce, l.policy.Caps, nil)
	}

	return l, nil
}

// Init creates the root namespace and materialises the root directory
// attributes. Calling it on an initialised backend changes nothing.
func (l *LocalFs) Init(c context.Context) error {
	if err := os.MkdirAll(l.root, 0700); err != nil {
		return fmt.Errorf("%w: root namespace: %v", fs.ErrIO, err)
	}
	if err := l.idx.prepare(); err != nil {
		return err
	}

	_, err := l.idx.attr(fs.RootInode)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotFound) {
		return err
	}

	now := l.policy.Clock.Now()
	root := fs.FileAttr{
		Ino:    fs.RootInode,
		Size:   4096,
		Blocks: 8,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Kind:   fs.KindDirectory,
		Perm:   0o755,
		Nlink:  2,
	}
	return l.idx.saveAttr(root)
}

// Destroy removes the entire root namespace and the index. There is
// no way back; it exists for teardown and testing.
func (l *LocalFs) Destroy(c context.Context) error {
	logrus.WithField("root", l.root).Warn("destroying filesystem state")

	if err := os.RemoveAll(l.root); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return l.idx.reset()
}

func (l *LocalFs) StatFs(c context.Context, uid, gid uint32, ino fs.INum) (fs.StatFsParam, error) {
	if _, err := l.idx.attr(ino); err != nil {
		return fs.StatFsParam{}, err
	}

	files, err := l.idx.count()
	if err != nil {
		return fs.StatFsParam{}, err
	}

	// The index imposes no block budget of its own, so the device
	// reports "unlimited" blocks.
	blocks := math.MaxUint64 / uint64(l.bsize)

	return fs.StatFsParam{
		Blocks:  blocks,
		Bfree:   blocks,
		Bavail:  blocks,
		Files:   files,
		Ffree:   math.MaxUint64 - files,
		Bsize:   l.bsize,
		NameLen: 255,
		Frsize:  l.bsize,
	}, nil
}

// blocksFor converts a byte size to 512-byte allocation units.
func blocksFor(size uint64) uint64 {
	return (size + 511) / 512
}

var _ fs.VirtualFs = (*LocalFs)(nil)
