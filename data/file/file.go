// Package file implements the byte-storage backend over a local
// directory, one file per inode.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ovh/pvfs/data"
	_ "github.com/ovh/pvfs/data/drivers"
	"github.com/ovh/pvfs/driver"
	"github.com/ovh/pvfs/fs"
)

func init() {
	driver.GetGroup("data").Register((*File)(nil))
}

// Config locates the directory data files live in.
type Config struct {
	Root string
}

type File struct {
	root string
}

func (f *File) Setup(conf interface{}) error {
	c, ok := conf.(*Config)
	if !ok {
		return fmt.Errorf("%w: file backend wants *file.Config", fs.ErrInvalid)
	}
	if err := os.MkdirAll(c.Root, 0700); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	f.root = c.Root
	return nil
}

func (f *File) path(ino fs.INum) string {
	return filepath.Join(f.root, strconv.FormatUint(uint64(ino), 10))
}

func (f *File) Read(c context.Context, ino fs.INum, fh uint64, offset uint64, size uint32) ([]byte, error) {
	fd, err := os.Open(f.path(ino))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	defer fd.Close()

	buf := make([]byte, size)
	n, err := fd.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return buf[:n], nil
}

func (f *File) Write(c context.Context, ino fs.INum, fh uint64, offset uint64, data []byte) error {
	fd, err := os.OpenFile(f.path(ino), os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	defer fd.Close()

	if _, err = fd.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (f *File) Truncate(c context.Context, ino fs.INum, size uint64) error {
	path := f.path(ino)

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	fd.Close()

	if err = os.Truncate(path, int64(size)); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (f *File) Remove(c context.Context, ino fs.INum) error {
	err := os.Remove(f.path(ino))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

var _ data.Backend = (*File)(nil)
