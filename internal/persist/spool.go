package persist

import (
	"encoding/json"
	"fmt"

	bbolt "go.etcd.io/bbolt"
)

var bucketPending = []byte("pending")

// Spool is a local bbolt file holding the latest snapshot of every
// character whose save failed. A newer snapshot replaces an older one.
type Spool struct {
	bolt *bbolt.DB
}

// OpenSpool opens or creates the spool file.
func OpenSpool(path string) (*Spool, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("spool: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPending)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("spool: create bucket: %w", err)
	}
	return &Spool{bolt: db}, nil
}

func (s *Spool) Close() error {
	return s.bolt.Close()
}

// Put stores rec, replacing any pending snapshot for the same user.
func (s *Spool) Put(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("spool: encode %s: %w", rec.UserID, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).Put([]byte(rec.UserID), data)
	})
}

// Get returns the pending snapshot for userID, or nil.
func (s *Spool) Get(userID string) (*Record, error) {
	var rec *Record
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPending).Get([]byte(userID))
		if data == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("spool: read %s: %w", userID, err)
	}
	return rec, nil
}

func (s *Spool) Delete(userID string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).Delete([]byte(userID))
	})
}

// All returns every pending snapshot in key order.
func (s *Spool) All() ([]*Record, error) {
	var out []*Record
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).ForEach(func(k, v []byte) error {
			rec := &Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("spool: scan: %w", err)
	}
	return out, nil
}

// Len returns the number of pending snapshots.
func (s *Spool) Len() int {
	n := 0
	s.bolt.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketPending).Stats().KeyN
		return nil
	})
	return n
}
