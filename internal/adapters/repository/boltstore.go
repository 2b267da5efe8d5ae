package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/boltdb/bolt"
	"github.com/okian/uranai/internal/domain/model"
)

const boltFileMode = 0600

var rankingsBucket = []byte("rankings")

// BoltStore persists records in a single bolt bucket keyed by date.
// Bolt orders keys bytewise, which for YYYYMMDD is date order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the bolt file at path.
func OpenBolt(path string, opts ...Option) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bolt store path is required")
	}
	o := newOptions(opts)

	db, err := bolt.Open(path, boltFileMode, &bolt.Options{Timeout: o.busyTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rankingsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create rankings bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// GetOrInsert runs the lookup and the insert in one write transaction.
func (s *BoltStore) GetOrInsert(ctx context.Context, date, code string) (model.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, false, err
	}
	if err := validate(date, code); err != nil {
		return model.Record{}, false, err
	}

	rec := model.Record{Date: date, Code: code}
	created := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rankingsBucket)
		if existing := b.Get([]byte(date)); existing != nil {
			rec.Code = string(existing)
			return nil
		}
		created = true
		return b.Put([]byte(date), []byte(code))
	})
	if err != nil {
		return model.Record{}, false, fmt.Errorf("bolt get or insert %s: %w", date, err)
	}
	return rec, created, nil
}

// All walks the bucket in key order.
func (s *BoltStore) All(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rankingsBucket)
		out = make([]model.Record, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			out = append(out, model.Record{Date: string(k), Code: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt list rankings: %w", err)
	}
	return out, nil
}

// Count returns the number of keys in the bucket.
func (s *BoltStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(rankingsBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bolt count rankings: %w", err)
	}
	return n, nil
}

// Ping opens a read transaction.
func (s *BoltStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.View(func(*bolt.Tx) error { return nil }); err != nil {
		return fmt.Errorf("bolt ping: %w", err)
	}
	return nil
}

// Close releases the file lock.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
