package local

import (
	"encoding/json"
	"fmt"

	"github.com/ovh/pvfs/fs"
	"github.com/ovh/pvfs/store"
	"github.com/ovh/pvfs/util"
)

// Store namespaces. Attribute records and dentries are the single
// source of truth for resolution: every entry is reachable through
// its parent dentry, never through an ad-hoc path scheme.
const (
	nsInodes   = "inodes"
	nsAttrs    = "attrs"
	nsDentries = "dentries"
	nsSymlinks = "symlinks"
)

var namespaces = []string{nsInodes, nsAttrs, nsDentries, nsSymlinks}

// index is the directory index of one backend instance: dentries
// keyed by parent inode and name, attribute records keyed by inode,
// and the inode allocation sequence.
type index struct {
	s store.Store
}

func dentryKey(parent fs.INum, name string) []byte {
	return append(util.Uint64Bytes(uint64(parent)), name...)
}

func (x index) prepare() error {
	for _, ns := range namespaces {
		if err := x.s.Prepare(ns); err != nil {
			return fmt.Errorf("%w: preparing %s: %v", fs.ErrIO, ns, err)
		}
	}
	return nil
}

func (x index) reset() error {
	for _, ns := range namespaces {
		if err := x.s.Reset(ns); err != nil {
			return fmt.Errorf("%w: resetting %s: %v", fs.ErrIO, ns, err)
		}
	}
	return nil
}

// allocate returns a fresh inode identifier. The reserved root value
// is skipped so no allocation ever collides with it.
func (x index) allocate() (fs.INum, error) {
	for {
		id, err := x.s.Append(nsInodes, nil)
		if err != nil {
			return 0, fmt.Errorf("%w: inode allocation: %v", fs.ErrIO, err)
		}
		if fs.INum(id) != fs.RootInode {
			return fs.INum(id), nil
		}
	}
}

func (x index) attr(ino fs.INum) (fs.FileAttr, error) {
	v, err := x.s.Get(nsAttrs, util.Uint64Bytes(uint64(ino)))
	if err != nil {
		return fs.FileAttr{}, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	if v == nil {
		return fs.FileAttr{}, fmt.Errorf("%w: inode %d", fs.ErrNotFound, ino)
	}

	var attr fs.FileAttr
	if err = json.Unmarshal(v, &attr); err != nil {
		return fs.FileAttr{}, fmt.Errorf("%w: corrupt attribute record for inode %d: %v",
			fs.ErrInternal, ino, err)
	}
	return attr, nil
}

func (x index) saveAttr(attr fs.FileAttr) error {
	v, err := json.Marshal(attr)
	if err != nil {
		return fmt.Errorf("%w: %v", fs.ErrInternal, err)
	}
	if err = x.s.Save(nsAttrs, util.Uint64Bytes(uint64(attr.Ino)), v); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (x index) dropAttr(ino fs.INum) error {
	if err := x.s.Delete(nsAttrs, util.Uint64Bytes(uint64(ino))); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (x index) child(parent fs.INum, name string) (fs.INum, error) {
	v, err := x.s.Get(nsDentries, dentryKey(parent, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	if v == nil {
		return 0, fmt.Errorf("%w: %q in directory %d", fs.ErrNotFound, name, parent)
	}
	return fs.INum(util.BytesUint64(v)), nil
}

func (x index) link(parent fs.INum, name string, ino fs.INum) error {
	if err := x.s.Save(nsDentries, dentryKey(parent, name), util.Uint64Bytes(uint64(ino))); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (x index) unlink(parent fs.INum, name string) error {
	if err := x.s.Delete(nsDentries, dentryKey(parent, name)); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (x index) children(parent fs.INum) (entries []fs.DirEntry, err error) {
	prefix := util.Uint64Bytes(uint64(parent))

	err = x.s.Scan(nsDentries, prefix, func(k, v []byte) error {
		entry := fs.DirEntry{
			Ino:  fs.INum(util.BytesUint64(v)),
			Name: string(k[len(prefix):]),
		}

		attr, err := x.attr(entry.Ino)
		if err != nil {
			return fmt.Errorf("%w: dentry %q points to inode %d without attributes",
				fs.ErrInternal, entry.Name, entry.Ino)
		}
		entry.Kind = attr.Kind

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (x index) symlink(ino fs.INum) ([]byte, error) {
	v, err := x.s.Get(nsSymlinks, util.Uint64Bytes(uint64(ino)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: no target for symlink %d", fs.ErrInternal, ino)
	}
	return v, nil
}

func (x index) saveSymlink(ino fs.INum, target string) error {
	if err := x.s.Save(nsSymlinks, util.Uint64Bytes(uint64(ino)), []byte(target)); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (x index) dropSymlink(ino fs.INum) error {
	if err := x.s.Delete(nsSymlinks, util.Uint64Bytes(uint64(ino))); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (x index) count() (uint64, error) {
	count, err := x.s.Count(nsAttrs)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return count, nil
}
