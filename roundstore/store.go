// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package roundstore persists mixed rounds in a bbolt database so that
// simulation runs can be compared later.
package roundstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// dbVersion is the current version of the store layout.
const dbVersion = 1

var (
	roundsBucketName = []byte("rounds")
	metaBucketName   = []byte("meta")

	versionKeyName = []byte("version")
)

// Store is a bbolt backed store of mixed rounds.
type Store struct {
	db *bolt.DB
}

// Open opens the store at path, creating it if it does not exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		str := fmt.Sprintf("failed to open round store %s", path)
		return nil, storeError(ErrDatabase, str, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(roundsBucketName); err != nil {
			return storeError(ErrDatabase, "failed to create "+
				"rounds bucket", err)
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucketName)
		if err != nil {
			return storeError(ErrDatabase, "failed to create "+
				"meta bucket", err)
		}

		v := meta.Get(versionKeyName)
		if v == nil {
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], dbVersion)
			return meta.Put(versionKeyName, buf[:])
		}
		if len(v) != 4 {
			return storeError(ErrData, "malformed store version", nil)
		}
		if version := binary.BigEndian.Uint32(v); version > dbVersion {
			str := fmt.Sprintf("store version %d is newer than "+
				"supported version %d", version, dbVersion)
			return storeError(ErrUnknownVersion, str, nil)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debugf("Opened round store %s", path)

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return storeError(ErrDatabase, "failed to close round store", err)
	}
	return nil
}

func roundKey(id uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], id)
	return k[:]
}

// PutRound stores a round under a new sequential id, which is returned and
// set on the record.
func (s *Store) PutRound(r *Record) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		rounds := tx.Bucket(roundsBucketName)

		var err error
		id, err = rounds.NextSequence()
		if err != nil {
			return storeError(ErrDatabase, "failed to assign round "+
				"id", err)
		}

		if err := rounds.Put(roundKey(id), serializeRecord(r)); err != nil {
			str := fmt.Sprintf("failed to store round %d", id)
			return storeError(ErrDatabase, str, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.ID = id
	log.Debugf("Stored round %d with %d outputs", id, len(r.Outputs))

	return id, nil
}

// FetchRound returns the round with the given id.
func (s *Store) FetchRound(id uint64) (*Record, error) {
	var r *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(roundsBucketName).Get(roundKey(id))
		if v == nil {
			str := fmt.Sprintf("round %d does not exist", id)
			return storeError(ErrNoExists, str, nil)
		}

		var err error
		r, err = deserializeRecord(id, v)
		return err
	})
	return r, err
}

// ForEachRound calls fn for every stored round in id order. Iteration stops
// at the first error fn returns, which is returned.
func (s *Store) ForEachRound(fn func(*Record) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(roundsBucketName).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return storeError(ErrData, "malformed round key",
					nil)
			}

			r, err := deserializeRecord(binary.BigEndian.Uint64(k), v)
			if err != nil {
				return err
			}
			return fn(r)
		})
	})
}

// DropRounds removes all stored rounds and restarts the id sequence.
func (s *Store) DropRounds() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(roundsBucketName)
		if err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return storeError(ErrDatabase, "failed to drop rounds",
				err)
		}
		if _, err := tx.CreateBucket(roundsBucketName); err != nil {
			return storeError(ErrDatabase, "failed to create "+
				"rounds bucket", err)
		}
		return nil
	})
}
