// Package store defines the persistent key-value capability backends
// use for inode allocation, the directory index and attribute records.
package store

// Store is a namespaced key-value store. Append allocates the next
// identifier of a namespace sequence, which backends use for inode
// numbers: the first Append of a fresh namespace returns 1.
type Store interface {
	Init(path string) error
	Prepare(namespace string) error
	Append(namespace string, v []byte) (id uint64, err error)
	Get(namespace string, k []byte) ([]byte, error)
	Save(namespace string, k, v []byte) error
	Delete(namespace string, k []byte) error
	Scan(namespace string, prefix []byte, fn func(k, v []byte) error) error
	Count(namespace string) (uint64, error)
	Reset(namespace string) error
	Path() string
	Close() error
}
