package evidence

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

var bucketMeta = []byte("metadata")

// Cache keeps inspection results between runs. Keys include size and
// modification time so changed documents are inspected again.
type Cache struct {
	db *bbolt.DB
}

// OpenCache opens (creating if necessary) bolt database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open evidence cache %q: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to prepare evidence cache %q: %w", path, err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns cached metadata for key.
func (c *Cache) Get(key []byte) (Metadata, bool) {
	var (
		md    Metadata
		found bool
	)
	_ = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(key)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &md); err != nil {
			// treat garbage as a miss, it is overwritten on next Put
			return nil
		}
		found = true
		return nil
	})
	return md, found
}

// Put stores metadata under key.
func (c *Cache) Put(key []byte, md Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(key, data)
	})
}

// Len returns number of cached records.
func (c *Cache) Len() (n int) {
	_ = c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketMeta).Stats().KeyN
		return nil
	})
	return n
}

func fileKey(path string, size int64, mtime time.Time) []byte {
	return []byte(path + "\x00" + strconv.FormatInt(size, 10) + "\x00" + strconv.FormatInt(mtime.UnixNano(), 10))
}

func entryKey(archive, name string, size uint64, crc uint32) []byte {
	return []byte(archive + "!" + name + "\x00" + strconv.FormatUint(size, 10) + "\x00" + strconv.FormatUint(uint64(crc), 16))
}
