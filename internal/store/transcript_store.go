package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"storechat/internal/types"
)

// TranscriptStore keeps conversations that ended with an agent goodbye.
// Keys are ULIDs, so cursor order is chronological.
type TranscriptStore interface {
	Save(ctx context.Context, transcript types.Transcript) error
	Get(ctx context.Context, id string) (*types.Transcript, bool, error)
	List(ctx context.Context, limit int) ([]types.Transcript, error)
	Delete(ctx context.Context, id string) error
}

type bboltTranscriptStore struct {
	db *bolt.DB
}

func (s *bboltTranscriptStore) Save(ctx context.Context, transcript types.Transcript) error {
	id := strings.TrimSpace(transcript.ID)
	if id == "" {
		return errors.New("transcript id is required")
	}
	transcript.ID = id
	raw, err := json.Marshal(transcript)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTranscripts)
		if b == nil {
			return errors.New("transcripts bucket missing")
		}
		return b.Put([]byte(id), raw)
	})
}

func (s *bboltTranscriptStore) Get(ctx context.Context, id string) (*types.Transcript, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, errors.New("transcript id is required")
	}
	var (
		out *types.Transcript
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTranscripts)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if raw == nil {
			return nil
		}
		var transcript types.Transcript
		if err := json.Unmarshal(raw, &transcript); err != nil {
			return err
		}
		out = &transcript
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

// List returns up to limit transcripts, newest first. A limit <= 0 returns
// all of them.
func (s *bboltTranscriptStore) List(ctx context.Context, limit int) ([]types.Transcript, error) {
	out := make([]types.Transcript, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTranscripts)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var transcript types.Transcript
			if err := json.Unmarshal(v, &transcript); err != nil {
				return err
			}
			out = append(out, transcript)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bboltTranscriptStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("transcript id is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTranscripts)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

// TranscriptSink adapts a TranscriptStore for callers without a context.
type TranscriptSink struct {
	Store   TranscriptStore
	Timeout time.Duration
}

func NewTranscriptSink(store TranscriptStore) *TranscriptSink {
	return &TranscriptSink{Store: store, Timeout: openTimeout}
}

func (s *TranscriptSink) SaveTranscript(transcript types.Transcript) error {
	if s == nil || s.Store == nil {
		return errors.New("transcript store is not configured")
	}
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Store.Save(ctx, transcript)
}
