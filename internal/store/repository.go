package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketAppState    = []byte("app_state")
	bucketTranscripts = []byte("transcripts")
	keyAppState       = []byte("state")
)

// ErrLocked is returned when another storechat process holds the database.
var ErrLocked = errors.New("local store is in use by another storechat process")

const openTimeout = 2 * time.Second

type Repository interface {
	Transcripts() TranscriptStore
	AppState() AppStateStore
	Close() error
}

type bboltRepository struct {
	db          *bolt.DB
	transcripts TranscriptStore
	appState    AppStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	return openBbolt(path, false)
}

// OpenReadOnly opens an existing store without creating the file or its
// buckets. It still waits on a running chat session's lock.
func OpenReadOnly(path string) (Repository, error) {
	return openBbolt(path, true)
}

func openBbolt(path string, readOnly bool) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout, ReadOnly: readOnly})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrLocked
		}
		return nil, err
	}
	if !readOnly {
		if err := initBboltSchema(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &bboltRepository{
		db:          db,
		transcripts: &bboltTranscriptStore{db: db},
		appState:    &bboltAppStateStore{db: db},
	}, nil
}

func (r *bboltRepository) Transcripts() TranscriptStore {
	return r.transcripts
}

func (r *bboltRepository) AppState() AppStateStore {
	return r.appState
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAppState); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketTranscripts); err != nil {
			return err
		}
		return nil
	})
}
