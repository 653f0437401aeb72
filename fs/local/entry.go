package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ovh/pvfs/fs"
)

func (l *LocalFs) Lookup(c context.Context, parent fs.INum, name string) (time.Duration, fs.FileAttr, fs.INum, error) {
	ino, err := l.idx.child(parent, name)
	if err != nil {
		return 0, fs.FileAttr{}, 0, err
	}

	attr, err := l.idx.attr(ino)
	if err != nil {
		return 0, fs.FileAttr{}, 0, err
	}
	return l.ttl, attr, ino, nil
}

// newAttr builds the attribute snapshot of a fresh entry.
func (l *LocalFs) newAttr(ino fs.INum, param fs.CreateParam) fs.FileAttr {
	now := l.policy.Clock.Now()

	attr := fs.FileAttr{
		Ino:   ino,
		Atime: now,
		Mtime: now,
		Ctime: now,
		Kind:  param.Kind,
		Perm:  uint16(param.Mode & fs.PermMask),
		Nlink: 1,
		Uid:   param.Uid,
		Gid:   param.Gid,
		Rdev:  param.Rdev,
	}

	switch param.Kind {
	case fs.KindDirectory:
		attr.Size = 4096
		attr.Blocks = 8
		attr.Nlink = 2
	case fs.KindSymlink:
		attr.Size = uint64(len(param.Link))
	}

	return attr
}

// create carries the shared protocol of Mkdir and MkNod: resolve and
// authorise the parent, refuse occupied names, allocate an inode and
// commit the dentry with its attribute record.
func (l *LocalFs) create(param fs.CreateParam) (fs.FileAttr, fs.INum, error) {
	parent, err := l.idx.attr(param.Parent)
	if err != nil {
		return fs.FileAttr{}, 0, err
	}
	if parent.Kind != fs.KindDirectory {
		return fs.FileAttr{}, 0, fmt.Errorf("%w: inode %d is not a directory", fs.ErrInvalid, param.Parent)
	}
	if err = l.policy.CheckPerm(parent, param.Uid, param.Gid, fs.AccessWrite); err != nil {
		return fs.FileAttr{}, 0, err
	}

	if _, err = l.idx.child(param.Parent, param.Name); err == nil {
		return fs.FileAttr{}, 0, fmt.Errorf("%w: %q in directory %d", fs.ErrExist, param.Name, param.Parent)
	} else if !errors.Is(err, fs.ErrNotFound) {
		return fs.FileAttr{}, 0, err
	}

	ino, err := l.idx.allocate()
	if err != nil {
		return fs.FileAttr{}, 0, err
	}

	attr := l.newAttr(ino, param)
	if err = l.idx.saveAttr(attr); err != nil {
		return fs.FileAttr{}, 0, err
	}
	if err = l.idx.link(param.Parent, param.Name, ino); err != nil {
		return fs.FileAttr{}, 0, err
	}

	now := attr.Ctime
	parent.Mtime = now
	parent.Ctime = now
	if param.Kind == fs.KindDirectory {
		parent.Nlink++
	}
	if err = l.idx.saveAttr(parent); err != nil {
		return fs.FileAttr{}, 0, err
	}

	logrus.WithFields(logrus.Fields{
		"parent": param.Parent,
		"name":   param.Name,
		"ino":    ino,
		"kind":   param.Kind.String(),
	}).Debug("entry created")

	return attr, ino, nil
}

func (l *LocalFs) Mkdir(c context.Context, param fs.CreateParam) (time.Duration, fs.FileAttr, fs.INum, error) {
	param.Kind = fs.KindDirectory

	attr, ino, err := l.create(param)
	if err != nil {
		return 0, fs.FileAttr{}, 0, err
	}
	return l.ttl, attr, ino, nil
}

func (l *LocalFs) MkNod(c context.Context, param fs.CreateParam) (time.Duration, fs.FileAttr, fs.INum, error) {
	if param.Kind == fs.KindDirectory {
		return 0, fs.FileAttr{}, 0, fmt.Errorf("%w: directories are created with Mkdir", fs.ErrInvalid)
	}
	if param.Kind == fs.KindSymlink && param.Link == "" {
		return 0, fs.FileAttr{}, 0, fmt.Errorf("%w: symlink without a target", fs.ErrInvalid)
	}

	attr, ino, err := l.create(param)
	if err != nil {
		return 0, fs.FileAttr{}, 0, err
	}

	if param.Kind == fs.KindSymlink {
		if err = l.idx.saveSymlink(ino, param.Link); err != nil {
			return 0, fs.FileAttr{}, 0, err
		}
	}
	return l.ttl, attr, ino, nil
}

func (l *LocalFs) ReadDir(c context.Context, ino fs.INum) ([]fs.DirEntry, error) {
	attr, err := l.idx.attr(ino)
	if err != nil {
		return nil, err
	}
	if attr.Kind != fs.KindDirectory {
		return nil, fmt.Errorf("%w: inode %d is not a directory", fs.ErrInvalid, ino)
	}
	return l.idx.children(ino)
}

func (l *LocalFs) ReadLink(c context.Context, ino fs.INum) ([]byte, error) {
	attr, err := l.idx.attr(ino)
	if err != nil {
		return nil, err
	}
	if attr.Kind != fs.KindSymlink {
		return nil, fmt.Errorf("%w: inode %d is not a symlink", fs.ErrInvalid, ino)
	}
	return l.idx.symlink(ino)
}

// stickyPermitted applies the sticky bit rule: in a sticky directory
// only root, the directory owner or the entry owner may remove or
// rename an entry.
func (l *LocalFs) stickyPermitted(parent, entry fs.FileAttr, uid uint32) error {
	if !l.policy.Enforce || parent.Perm&fs.PermSticky == 0 {
		return nil
	}
	if uid == 0 || uid == parent.Uid || uid == entry.Uid {
		return nil
	}
	return fmt.Errorf("%w: sticky directory %d, entry owned by uid %d",
		fs.ErrPermission, parent.Ino, entry.Uid)
}

// drop decrements an inode's link count, discarding its attribute
// record, symlink target and bytes once no links remain.
func (l *LocalFs) drop(c context.Context, attr fs.FileAttr) error {
	if attr.Nlink > 1 && attr.Kind != fs.KindDirectory {
		attr.Nlink--
		attr.Ctime = l.policy.Clock.Now()
		return l.idx.saveAttr(attr)
	}

	if err := l.idx.dropAttr(attr.Ino); err != nil {
		return err
	}
	if attr.Kind == fs.KindSymlink {
		if err := l.idx.dropSymlink(attr.Ino); err != nil {
			return err
		}
	}
	return l.data.Remove(c, attr.Ino)
}

func (l *LocalFs) Unlink(c context.Context, uid, gid uint32, parent fs.INum, name string) error {
	parentAttr, err := l.idx.attr(parent)
	if err != nil {
		return err
	}

	ino, err := l.idx.child(parent, name)
	if err != nil {
		return err
	}
	attr, err := l.idx.attr(ino)
	if err != nil {
		return err
	}

	if err = l.policy.CheckPerm(parentAttr, uid, gid, fs.AccessWrite); err != nil {
		return err
	}
	if err = l.stickyPermitted(parentAttr, attr, uid); err != nil {
		return err
	}

	if attr.Kind == fs.KindDirectory {
		children, err := l.idx.children(ino)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("%w: directory %d is not empty", fs.ErrInvalid, ino)
		}
	}

	if err = l.idx.unlink(parent, name); err != nil {
		return err
	}
	if err = l.drop(c, attr); err != nil {
		return err
	}

	now := l.policy.Clock.Now()
	parentAttr.Mtime = now
	parentAttr.Ctime = now
	if attr.Kind == fs.KindDirectory {
		parentAttr.Nlink--
	}
	return l.idx.saveAttr(parentAttr)
}

func (l *LocalFs) Rename(c context.Context, uid, gid uint32, param fs.RenameParam) error {
	oldParent, err := l.idx.attr(param.OldParent)
	if err != nil {
		return err
	}
	newParent, err := l.idx.attr(param.NewParent)
	if err != nil {
		return err
	}

	srcIno, err := l.idx.child(param.OldParent, param.OldName)
	if err != nil {
		return err
	}
	srcAttr, err := l.idx.attr(srcIno)
	if err != nil {
		return err
	}

	if err = l.policy.CheckPerm(oldParent, uid, gid, fs.AccessWrite); err != nil {
		return err
	}
	if err = l.policy.CheckPerm(newParent, uid, gid, fs.AccessWrite); err != nil {
		return err
	}
	if err = l.stickyPermitted(oldParent, srcAttr, uid); err != nil {
		return err
	}

	dstIno, dstErr := l.idx.child(param.NewParent, param.NewName)
	if dstErr != nil && !errors.Is(dstErr, fs.ErrNotFound) {
		return dstErr
	}

	now := l.policy.Clock.Now()
	crossParent := param.OldParent != param.NewParent

	// Directory link deltas accumulated per parent and applied once
	// both branches are done, so the same-parent case never splits one
	// update across two copies of the same record.
	var oldLinks, newLinks int

	switch {
	case param.Flags&fs.RenameExchange != 0:
		if dstErr != nil {
			return dstErr
		}
		dstAttr, err := l.idx.attr(dstIno)
		if err != nil {
			return err
		}
		if err = l.idx.link(param.OldParent, param.OldName, dstIno); err != nil {
			return err
		}
		if err = l.idx.link(param.NewParent, param.NewName, srcIno); err != nil {
			return err
		}
		if crossParent {
			if srcAttr.Kind == fs.KindDirectory {
				oldLinks--
				newLinks++
			}
			if dstAttr.Kind == fs.KindDirectory {
				oldLinks++
				newLinks--
			}
		}
		dstAttr.Ctime = now
		if err = l.idx.saveAttr(dstAttr); err != nil {
			return err
		}

	case dstErr == nil && param.Flags&fs.RenameNoReplace != 0:
		return fmt.Errorf("%w: %q in directory %d", fs.ErrExist, param.NewName, param.NewParent)

	default:
		if dstErr == nil {
			// Renaming an entry onto itself succeeds and changes
			// nothing.
			if dstIno == srcIno {
				return nil
			}

			dstAttr, err := l.idx.attr(dstIno)
			if err != nil {
				return err
			}
			if dstAttr.Kind == fs.KindDirectory {
				children, err := l.idx.children(dstIno)
				if err != nil {
					return err
				}
				if len(children) > 0 {
					return fmt.Errorf("%w: directory %d is not empty", fs.ErrInvalid, dstIno)
				}
				newLinks--
			}
			if err = l.drop(c, dstAttr); err != nil {
				return err
			}
		}
		if err = l.idx.unlink(param.OldParent, param.OldName); err != nil {
			return err
		}
		if err = l.idx.link(param.NewParent, param.NewName, srcIno); err != nil {
			return err
		}
		if crossParent && srcAttr.Kind == fs.KindDirectory {
			oldLinks--
			newLinks++
		}
	}

	srcAttr.Ctime = now
	if err = l.idx.saveAttr(srcAttr); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"old":   param.OldName,
		"new":   param.NewName,
		"flags": param.Flags,
	}).Debug("entry renamed")

	oldParent.Mtime = now
	oldParent.Ctime = now
	if !crossParent {
		oldParent.Nlink = uint32(int(oldParent.Nlink) + oldLinks + newLinks)
		return l.idx.saveAttr(oldParent)
	}

	oldParent.Nlink = uint32(int(oldParent.Nlink) + oldLinks)
	if err = l.idx.saveAttr(oldParent); err != nil {
		return err
	}

	newParent.Mtime = now
	newParent.Ctime = now
	newParent.Nlink = uint32(int(newParent.Nlink) + newLinks)
	return l.idx.saveAttr(newParent)
}
