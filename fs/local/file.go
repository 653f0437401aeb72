package local

import (
	"context"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ovh/pvfs/fs"
)

func (l *LocalFs) GetAttr(c context.Context, ino fs.INum) (time.Duration, fs.FileAttr, error) {
	attr, err := l.idx.attr(ino)
	if err != nil {
		return 0, fs.FileAttr{}, err
	}
	return l.ttl, attr, nil
}

func (l *LocalFs) SetAttr(c context.Context, uid, gid uint32, ino fs.INum, param fs.SetAttrParam) (time.Duration, fs.FileAttr, error) {
	cur, err := l.idx.attr(ino)
	if err != nil {
		return 0, fs.FileAttr{}, err
	}

	dirty, changed, err := l.policy.SetAttrPrecheck(cur, param, uid, gid)
	if err != nil {
		return 0, fs.FileAttr{}, err
	}
	if !changed {
		return l.ttl, cur, nil
	}

	if param.Size != nil {
		if err = l.data.Truncate(c, ino, *param.Size); err != nil {
			return 0, fs.FileAttr{}, err
		}
		dirty.Blocks = blocksFor(dirty.Size)
	}

	if err = l.idx.saveAttr(dirty); err != nil {
		return 0, fs.FileAttr{}, err
	}
	return l.ttl, dirty, nil
}

// accessIntent maps open flags to the access mask they require.
func accessIntent(flags uint32) uint8 {
	switch flags & uint32(syscall.O_ACCMODE) {
	case uint32(syscall.O_WRONLY):
		return fs.AccessWrite
	case uint32(syscall.O_RDWR):
		return fs.AccessRead | fs.AccessWrite
	default:
		return fs.AccessRead
	}
}

func (l *LocalFs) Open(c context.Context, uid, gid uint32, ino fs.INum, flags uint32) (uint64, error) {
	attr, err := l.idx.attr(ino)
	if err != nil {
		return 0, err
	}
	if err = l.policy.CheckPerm(attr, uid, gid, accessIntent(flags)); err != nil {
		return 0, err
	}

	fh := l.handles.insert(ino)

	logrus.WithFields(logrus.Fields{
		"ino": ino,
		"fh":  fh,
	}).Debug("handle opened")

	return fh, nil
}

func (l *LocalFs) Read(c context.Context, ino fs.INum, fh uint64, offset uint64, dst []byte) (int, error) {
	if _, err := l.idx.attr(ino); err != nil {
		return 0, err
	}

	content, err := l.data.Read(c, ino, fh, offset, uint32(len(dst)))
	if err != nil {
		return 0, err
	}
	return copy(dst, content), nil
}

func (l *LocalFs) Write(c context.Context, ino fs.INum, fh uint64, offset uint64, payload []byte, flags uint32) (int, error) {
	attr, err := l.idx.attr(ino)
	if err != nil {
		return 0, err
	}

	if err = l.data.Write(c, ino, fh, offset, payload); err != nil {
		return 0, err
	}

	now := l.policy.Clock.Now()
	if end := offset + uint64(len(payload)); end > attr.Size {
		attr.Size = end
		attr.Blocks = blocksFor(end)
	}
	attr.Mtime = now
	attr.Ctime = now
	if err = l.idx.saveAttr(attr); err != nil {
		return 0, err
	}

	return len(payload), nil
}

func (l *LocalFs) Release(c context.Context, ino fs.INum, fh uint64, flags uint32, lockOwner uint64, flush bool) error {
	l.handles.release(fh)

	logrus.WithFields(logrus.Fields{
		"ino": ino,
		"fh":  fh,
	}).Debug("handle released")

	return nil
}
