// Package swift implements the byte-storage backend over Openstack
// Swift, one object per inode. Offset writes rewrite the object, so
// this backend favors read-mostly or whole-file workloads.
package swift

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	lib "github.com/ncw/swift"
	"github.com/sirupsen/logrus"

	"github.com/ovh/pvfs/data"
	_ "github.com/ovh/pvfs/data/drivers"
	"github.com/ovh/pvfs/driver"
	"github.com/ovh/pvfs/fs"
)

func init() {
	driver.GetGroup("data").Register((*Swift)(nil))
}

const contentType = "application/octet-stream"

// Config carries the connection settings. A preauthenticated pair of
// StorageURL and AuthToken skips the authentication round trip;
// Transport overrides the HTTP transport, which tests rely on.
type Config struct {
	Container   string
	Connections uint32

	AuthURL  string
	UserName string
	APIKey   string
	Tenant   string
	Region   string

	StorageURL string
	AuthToken  string
	Transport  http.RoundTripper
}

type Swift struct {
	container string
	storage   *ResourceHolder
}

func (s *Swift) Setup(conf interface{}) error {
	c, ok := conf.(*Config)
	if !ok {
		return fmt.Errorf("%w: swift backend wants *swift.Config", fs.ErrInvalid)
	}

	con := &lib.Connection{
		AuthUrl:    c.AuthURL,
		UserName:   c.UserName,
		ApiKey:     c.APIKey,
		Tenant:     c.Tenant,
		Region:     c.Region,
		StorageUrl: c.StorageURL,
		AuthToken:  c.AuthToken,
		Transport:  c.Transport,
	}

	if !con.Authenticated() {
		if err := con.Authenticate(); err != nil {
			return fmt.Errorf("%w: swift authentication: %v", fs.ErrIO, err)
		}
	}

	connections := c.Connections
	if connections == 0 {
		connections = 1
	}

	s.container = c.Container
	s.storage = NewResourceHolder(connections, con)

	return s.ensureContainer()
}

func (s *Swift) ensureContainer() error {
	con := s.storage.Borrow()
	defer s.storage.Return()

	_, _, err := con.Container(s.container)
	if err == lib.ContainerNotFound {
		err = con.ContainerCreate(s.container, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: container %q: %v", fs.ErrIO, s.container, err)
	}
	return nil
}

func object(ino fs.INum) string {
	return strconv.FormatUint(uint64(ino), 10)
}

func (s *Swift) get(ino fs.INum) ([]byte, error) {
	con := s.storage.Borrow()
	defer s.storage.Return()

	content, err := con.ObjectGetBytes(s.container, object(ino))
	if err == lib.ObjectNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return content, nil
}

func (s *Swift) put(ino fs.INum, content []byte) error {
	con := s.storage.Borrow()
	defer s.storage.Return()

	if err := con.ObjectPutBytes(s.container, object(ino), content, contentType); err != nil {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

func (s *Swift) Read(c context.Context, ino fs.INum, fh uint64, offset uint64, size uint32) ([]byte, error) {
	content, err := s.get(ino)
	if err != nil {
		return nil, err
	}
	if offset >= uint64(len(content)) {
		return nil, nil
	}

	end := offset + uint64(size)
	if end > uint64(len(content)) {
		end = uint64(len(content))
	}
	return content[offset:end], nil
}

func (s *Swift) Write(c context.Context, ino fs.INum, fh uint64, offset uint64, data []byte) error {
	content, err := s.get(ino)
	if err != nil {
		return err
	}

	end := offset + uint64(len(data))
	if end > uint64(len(content)) {
		grown := make([]byte, end)
		copy(grown, content)
		content = grown
	}
	copy(content[offset:], data)

	logrus.WithFields(logrus.Fields{
		"ino":    ino,
		"offset": offset,
		"bytes":  len(data),
	}).Debug("swift object rewrite")

	return s.put(ino, content)
}

func (s *Swift) Truncate(c context.Context, ino fs.INum, size uint64) error {
	content, err := s.get(ino)
	if err != nil {
		return err
	}

	resized := make([]byte, size)
	copy(resized, content)

	return s.put(ino, resized)
}

func (s *Swift) Remove(c context.Context, ino fs.INum) error {
	con := s.storage.Borrow()
	defer s.storage.Return()

	err := con.ObjectDelete(s.container, object(ino))
	if err != nil && err != lib.ObjectNotFound {
		return fmt.Errorf("%w: %v", fs.ErrIO, err)
	}
	return nil
}

var _ data.Backend = (*Swift)(nil)
