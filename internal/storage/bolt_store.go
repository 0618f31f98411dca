package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var seenBucket = []byte("seen_items")

var errBucketMissing = errors.New("seen items bucket missing")

// boltStore keeps seen keys in a single bucket. Each value is the expiry
// as big-endian unix seconds; a background sweeper deletes expired keys.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// openBolt opens (or creates) the database file, its bucket and starts the sweeper.
func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(seenBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	s := &boltStore{
		db:   db,
		ttl:  opts.ItemTTL,
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.sweepEvery(opts.CleanupInterval)
	return s, nil
}

// SeenItem reports whether key was marked and has not expired yet.
func (s *boltStore) SeenItem(key string) (bool, error) {
	now := s.now()
	seen := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(seenBucket)
		if b == nil {
			return errBucketMissing
		}
		expiry, ok := decodeExpiry(b.Get([]byte(key)))
		seen = ok && expiry.After(now)
		return nil
	})
	return seen, err
}

// MarkItem records key as seen until the TTL elapses. Marking again extends it.
func (s *boltStore) MarkItem(key string) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(s.now().Add(s.ttl).Unix()))

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(seenBucket)
		if b == nil {
			return errBucketMissing
		}
		return b.Put([]byte(key), val)
	})
}

// Close stops the sweeper and closes the database. It is safe to call twice.
func (s *boltStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *boltStore) sweepEvery(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_, _ = s.sweep()
		}
	}
}

// sweep deletes every expired or unreadable entry and returns how many it removed.
func (s *boltStore) sweep() (int, error) {
	now := s.now()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(seenBucket)
		if b == nil {
			return errBucketMissing
		}
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != 8 {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
