// Package store keeps view specs in a bbolt database.
//
// Views are stored as JSON documents keyed by name in the "views" bucket,
// so a registry can be edited by one process and served by another.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pthm/hxview"
	bolt "go.etcd.io/bbolt"
)

const bucketViews = "views"

// ErrNoSuchView is returned when a view is not in the store.
var ErrNoSuchView = errors.New("store: no such view")

// Store is a bbolt backed view store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketViews))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutView stores the raw spec of a view, replacing any previous one.
func (s *Store) PutView(name string, spec any) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("store: encode view %s: %w", name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketViews)).Put([]byte(name), data)
	})
}

// PutRegistry stores every entry of a decoded views document.
func (s *Store) PutRegistry(raw map[string]any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketViews))
		for name, spec := range raw {
			data, err := json.Marshal(spec)
			if err != nil {
				return fmt.Errorf("store: encode view %s: %w", name, err)
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// View returns the raw spec stored under name.
func (s *Store) View(name string) (any, error) {
	var spec any
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketViews)).Get([]byte(name))
		if data == nil {
			return ErrNoSuchView
		}
		return json.Unmarshal(data, &spec)
	})
	return spec, err
}

// DeleteView removes a view. Deleting a missing view is not an error.
func (s *Store) DeleteView(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketViews)).Delete([]byte(name))
	})
}

// Names returns the stored view names in order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketViews)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

// Registry decodes every stored view into a registry.
func (s *Store) Registry() (hxview.Registry, error) {
	raw := make(map[string]any)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketViews)).ForEach(func(k, v []byte) error {
			var spec any
			if err := json.Unmarshal(v, &spec); err != nil {
				return fmt.Errorf("store: decode view %s: %w", k, err)
			}
			raw[string(k)] = spec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return hxview.DecodeRegistry(raw), nil
}
