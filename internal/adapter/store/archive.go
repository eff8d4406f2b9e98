package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"clausecheck/internal/domain"
)

var (
	bucketReviews = []byte("reviews")
	bucketMeta    = []byte("meta")
)

// ErrReviewNotFound is returned by Get for unknown review IDs.
var ErrReviewNotFound = errors.New("review not found")

// ReviewArchive keeps past review outcomes in a bbolt file. Keys are the
// bucket sequence, so cursor order is creation order.
type ReviewArchive struct {
	db   *bbolt.DB
	path string
}

func NewReviewArchive(path string) (*ReviewArchive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketReviews, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &ReviewArchive{db: db, path: path}
	if err := a.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *ReviewArchive) Path() string {
	return a.path
}

// Put stores rec and returns it with its assigned ID. A zero CreatedAt is
// set to the current time.
func (a *ReviewArchive) Put(rec domain.ReviewRecord) (domain.ReviewRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	err := a.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketReviews)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = strconv.FormatUint(seq, 10)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), data)
	})
	if err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("failed to archive review: %w", err)
	}
	return rec, nil
}

func (a *ReviewArchive) Get(id string) (domain.ReviewRecord, error) {
	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("%w: %s", ErrReviewNotFound, id)
	}

	var rec domain.ReviewRecord
	err = a.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketReviews).Get(itob(seq))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrReviewNotFound, id)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (a *ReviewArchive) List(limit int) ([]domain.ReviewRecord, error) {
	var recs []domain.ReviewRecord
	err := a.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketReviews).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(recs) >= limit {
				break
			}
			var rec domain.ReviewRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

func (a *ReviewArchive) Count() (int, error) {
	var n int
	err := a.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketReviews).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes every archived review but keeps the schema version.
func (a *ReviewArchive) Clear() error {
	return a.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketReviews); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketReviews)
		return err
	})
}

func (a *ReviewArchive) Close() error {
	return a.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
