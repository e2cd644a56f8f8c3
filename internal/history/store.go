package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var reportsBucket = []byte("reports")

var ErrNotFound = errors.New("report not found")

var errReadOnly = errors.New("history opened read-only")

// Record is one completed pipeline run.
type Record struct {
	ID                     string        `json:"id"`
	Assignment             string        `json:"assignment"`
	InteractionDescription string        `json:"interactionDescription"`
	Model                  string        `json:"model,omitempty"`
	Report                 string        `json:"report"`
	StartedAt              time.Time     `json:"startedAt"`
	Duration               time.Duration `json:"duration"`
}

// Store keeps pipeline reports in a local bbolt database. A read-only
// Store over a database that does not exist yet has a nil db and is empty.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing history without creating or locking it for
// writing. A missing database reads as empty.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &Store{}, nil
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewID returns a fresh run ID.
func NewID() string {
	return uuid.NewString()
}

// Put stores rec, assigning an ID if it has none, and returns the ID.
func (s *Store) Put(rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if s.db == nil {
		return "", errReadOnly
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("store report %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

func (s *Store) Get(id string) (*Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		var data []byte
		if b := tx.Bucket(reportsBucket); b != nil {
			data = b.Get([]byte(id))
		}
		if data == nil {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every stored record, newest first.
func (s *Store) List() ([]Record, error) {
	if s.db == nil {
		return nil, nil
	}
	var recs []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, data []byte) error {
			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].StartedAt.After(recs[j].StartedAt)
	})
	return recs, nil
}
