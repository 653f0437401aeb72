package bolt

import (
	"bytes"

	"github.com/boltdb/bolt"
	"github.com/ovh/pvfs/driver"
	_ "github.com/ovh/pvfs/store/drivers"
	"github.com/ovh/pvfs/util"
)

func init() {
	driver.GetGroup("store").Register((*Bolt)(nil))
}

// Bolt stores every namespace in one boltdb bucket.
type Bolt struct {
	db *bolt.DB
}

func (b *Bolt) Init(path string) (err error) {
	b.db, err = bolt.Open(path, 0600, nil)
	return err
}

func (b *Bolt) Prepare(namespace string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(namespace))
		return err
	})
}

func (b *Bolt) Append(namespace string, v []byte) (id uint64, err error) {
	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		id, err = bucket.NextSequence()
		if err != nil {
			return err
		}

		return bucket.Put(util.Uint64Bytes(id), v)
	})

	return id, err
}

func (b *Bolt) Get(namespace string, k []byte) (v []byte, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		if stored := tx.Bucket([]byte(namespace)).Get(k); stored != nil {
			v = append([]byte(nil), stored...)
		}
		return nil
	})
	return v, err
}

func (b *Bolt) Save(namespace string, k, v []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(namespace)).Put(k, v)
	})
}

func (b *Bolt) Delete(namespace string, k []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(namespace)).Delete(k)
	})
}

func (b *Bolt) Scan(namespace string, prefix []byte, fn func(k, v []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(namespace)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := fn(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Bolt) Count(namespace string) (count uint64, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		count = uint64(tx.Bucket([]byte(namespace)).Stats().KeyN)
		return nil
	})
	return count, err
}

// Reset drops the namespace content but keeps its sequence, so
// identifiers are never reused after a reset.
func (b *Bolt) Reset(namespace string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		seq := bucket.Sequence()

		if err := tx.DeleteBucket([]byte(namespace)); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(namespace))
		if err != nil {
			return err
		}

		return bucket.SetSequence(seq)
	})
}

func (b *Bolt) Path() string {
	return b.db.Path()
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
