package storage

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/asdine/storm"
	"github.com/google/uuid"
)

// CallRecord is one dispatched contract call as seen by this client.
type CallRecord struct {
	ID        string    `storm:"id" json:"id"`
	Operation string    `storm:"index" json:"operation"`
	Actor     string    `storm:"index" json:"actor"`
	Group     string    `json:"group"`
	Method    string    `json:"method"`
	Args      []string  `json:"args"`
	TxHash    string    `json:"txHash,omitempty"`
	Values    []string  `json:"values,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Journal is a local, append-only log of calls kept in a storm (bbolt) file.
type Journal struct {
	db *storm.DB
}

func Open(path string) (*Journal, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(rec CallRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return j.db.Save(&rec)
}

// All returns every record, oldest first.
func (j *Journal) All() ([]CallRecord, error) {
	var recs []CallRecord
	err := j.db.All(&recs)
	if errors.Is(err, storm.ErrNotFound) {
		return []CallRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	sortByTime(recs)
	return recs, nil
}

func (j *Journal) ByActor(actor string) ([]CallRecord, error) {
	var recs []CallRecord
	err := j.db.Find("Actor", actor, &recs)
	if errors.Is(err, storm.ErrNotFound) {
		return []CallRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	sortByTime(recs)
	return recs, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func sortByTime(recs []CallRecord) {
	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].CreatedAt.Before(recs[b].CreatedAt)
	})
}
