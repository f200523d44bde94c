package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/azeraturan/spiderfoot/internal/model"
)

const (
	bucketEvents = "events"
	bucketRuns   = "runs"
)

// Store is the embedded findings database the harness writes every
// emitted event and run summary into.
type Store struct {
	db *bbolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists([]byte(bucketEvents)); e != nil {
			return e
		}
		if _, e := tx.CreateBucketIfNotExists([]byte(bucketRuns)); e != nil {
			return e
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) SaveEvent(ev *model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		if b == nil {
			return errors.New("bucket not found")
		}
		return b.Put([]byte(ev.ID), data)
	})
}

func (s *Store) ListEvents() ([]model.Event, error) {
	out := make([]model.Event, 0, 256)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		if b == nil {
			return errors.New("bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			var ev model.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			out = append(out, ev)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// newest first
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (s *Store) AddRun(run *model.EnrichmentRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		if b == nil {
			return errors.New("bucket not found")
		}
		return b.Put([]byte(run.ID), data)
	})
}

func (s *Store) ListRuns(limit int) ([]model.EnrichmentRun, error) {
	out := []model.EnrichmentRun{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		if b == nil {
			return errors.New("bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			var r model.EnrichmentRun
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type Stats struct {
	TotalFindings int            `json:"total_findings"`
	ByType        map[string]int `json:"by_type"`
}

func (s *Store) GetStats() (Stats, error) {
	events, err := s.ListEvents()
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{ByType: map[string]int{}}
	for _, ev := range events {
		stats.TotalFindings++
		stats.ByType[ev.Type]++
	}
	return stats, nil
}
