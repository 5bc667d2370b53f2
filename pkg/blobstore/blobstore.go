// Package blobstore keeps framed payloads in a single bbolt bucket.
package blobstore

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("blobstore: key not found")

type Store struct {
	bdb    *bbolt.DB
	bucket []byte
}

type Options struct {
	// NoSync skips fsync on commit. Only for tests and scratch stores.
	NoSync   bool
	ReadOnly bool
}

// Open opens or creates the database at path and makes sure bucket exists.
func Open(path, bucket string, opt Options) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("blobstore: empty bucket name")
	}
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.NoSync = opt.NoSync
	bopt.ReadOnly = opt.ReadOnly

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("blobstore: %w", err)
	}
	s := &Store{bdb: bdb, bucket: []byte(bucket)}
	if !opt.ReadOnly {
		err = bdb.Update(func(btx *bbolt.Tx) error {
			_, err := btx.CreateBucketIfNotExists(s.bucket)
			return err
		})
		if err != nil {
			bdb.Close()
			return nil, fmt.Errorf("blobstore: bucket %q: %w", bucket, err)
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.bdb.Close()
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key string, value []byte) error {
	if key == "" {
		return errors.New("blobstore: empty key")
	}
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(s.bucket).Put([]byte(key), value)
	})
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	var out []byte
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(s.bucket)
		if buck == nil {
			return ErrNotFound
		}
		v := buck.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, key)
	}
	return out, nil
}

func (s *Store) Delete(key string) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Keys lists stored keys in byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(s.bucket)
		if buck == nil {
			return nil
		}
		return buck.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
