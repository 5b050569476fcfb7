package room

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"github.com/meltosdev/meltos/internal/session"
)

var bucketRooms = []byte("rooms")

// Metadata is the durable record of a room's identity, kept only so an
// operator (or a restarted gateway) can recover which rooms existed
// and when they were opened — it holds no repository or discussion
// content, both of which live in the room's own (separately durable)
// stores. Grounded on javanhut-IvaldiVCS's store.DB (internal/store/kv.go),
// generalized from content-hash mappings to room bookkeeping.
type Metadata struct {
	Id        Id             `json:"id"`
	Owner     session.UserId `json:"owner"`
	Capacity  uint64         `json:"capacity"`
	OpenedAt  time.Time      `json:"openedAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// MetadataStore persists Metadata records in a single bbolt file.
type MetadataStore struct {
	db *bbolt.DB
}

// OpenMetadataStore opens (creating if absent) a bbolt file at path and
// ensures its rooms bucket exists.
func OpenMetadataStore(path string) (*MetadataStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketRooms)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &MetadataStore{db: db}, nil
}

// Put records or overwrites m's entry.
func (s *MetadataStore) Put(m Metadata) error {
	buf, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRooms).Put([]byte(m.Id), buf)
	})
}

// Delete removes id's entry, if any.
func (s *MetadataStore) Delete(id Id) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRooms).Delete([]byte(id))
	})
}

// All returns every recorded room, in no particular order. Listed rooms
// are not recreated by anything in this package (their repository
// and discussion content is process-local and does not survive a
// restart unless backed by the sqlite stores).
func (s *MetadataStore) All() ([]Metadata, error) {
	var out []Metadata
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRooms).ForEach(func(k, v []byte) error {
			var m Metadata
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m)
			return nil
		})
	})
	return out, err
}

// Close closes the underlying bbolt file.
func (s *MetadataStore) Close() error {
	return s.db.Close()
}
