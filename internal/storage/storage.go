// Package storage provides the model registry the win predictor loads its
// classifier from. It uses BoltDB as the underlying storage engine and keeps
// every imported model artifact together with its evaluation metrics, so an
// older version can be re-activated without retraining.
//
// The registry stores model artifacts only. Predictions and match states
// are never written.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	modelsBucket = "models" // Bucket name for model records keyed by version
	metaBucket   = "meta"   // Bucket name for registry bookkeeping
	activeKey    = "active"
	dbFile       = "models.db"
)

var (
	ErrModelNotFound = errors.New("model version not found")
	ErrNoActiveModel = errors.New("no active model")
	ErrNoRollback    = errors.New("no previous version available for rollback")
)

// ModelMetrics contains offline evaluation metrics for a model
type ModelMetrics struct {
	Accuracy        float64 `json:"accuracy"`
	LogLoss         float64 `json:"log_loss"`
	AUCScore        float64 `json:"auc_score"`
	TrainingSamples int     `json:"training_samples"`
}

// ModelRecord represents a versioned model artifact
type ModelRecord struct {
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Metrics   ModelMetrics `json:"metrics"`
	Artifact  []byte       `json:"artifact"`
	IsActive  bool         `json:"is_active"`
}

// Store is a BoltDB backed model registry.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the registry in dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(modelsBucket)); err != nil {
			return fmt.Errorf("create models bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is harmless.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// PutModel stores rec, replacing any record with the same version. The
// active flag is owned by the registry and ignored here.
func (s *Store) PutModel(rec ModelRecord) error {
	if rec.Version == "" {
		return fmt.Errorf("model version is required")
	}
	if len(rec.Artifact) == 0 {
		return fmt.Errorf("model %s has an empty artifact", rec.Version)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		rec.IsActive = string(tx.Bucket([]byte(metaBucket)).Get([]byte(activeKey))) == rec.Version

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal model record: %w", err)
		}
		return tx.Bucket([]byte(modelsBucket)).Put([]byte(rec.Version), data)
	})
}

// GetModel returns the record for version.
func (s *Store) GetModel(version string) (ModelRecord, error) {
	var rec ModelRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		rec, err = getRecord(tx, version)
		return err
	})
	return rec, err
}

// ListModels returns all records, newest first.
func (s *Store) ListModels() ([]ModelRecord, error) {
	var records []ModelRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(modelsBucket)).ForEach(func(_, v []byte) error {
			var rec ModelRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil // Skip malformed records
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Version > records[j].Version
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Activate marks version as the model to serve.
func (s *Store) Activate(version string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return activate(tx, version)
	})
}

// ActiveModel returns the record currently marked active.
func (s *Store) ActiveModel() (ModelRecord, error) {
	var rec ModelRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		version := tx.Bucket([]byte(metaBucket)).Get([]byte(activeKey))
		if version == nil {
			return ErrNoActiveModel
		}
		var err error
		rec, err = getRecord(tx, string(version))
		return err
	})
	return rec, err
}

// Rollback activates the version created just before the active one.
func (s *Store) Rollback() (ModelRecord, error) {
	records, err := s.ListModels()
	if err != nil {
		return ModelRecord{}, err
	}

	current := -1
	for i, r := range records {
		if r.IsActive {
			current = i
			break
		}
	}
	if current == -1 {
		return ModelRecord{}, ErrNoActiveModel
	}
	if current+1 >= len(records) {
		return ModelRecord{}, ErrNoRollback
	}

	prev := records[current+1]
	if err := s.Activate(prev.Version); err != nil {
		return ModelRecord{}, err
	}
	prev.IsActive = true
	return prev, nil
}

func getRecord(tx *bbolt.Tx, version string) (ModelRecord, error) {
	var rec ModelRecord
	data := tx.Bucket([]byte(modelsBucket)).Get([]byte(version))
	if data == nil {
		return rec, fmt.Errorf("%w: %s", ErrModelNotFound, version)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("unmarshal model %s: %w", version, err)
	}
	return rec, nil
}

func activate(tx *bbolt.Tx, version string) error {
	models := tx.Bucket([]byte(modelsBucket))
	if models.Get([]byte(version)) == nil {
		return fmt.Errorf("%w: %s", ErrModelNotFound, version)
	}

	// Rewrite every record so exactly one carries the active flag.
	type update struct {
		key  []byte
		data []byte
	}
	var updates []update
	err := models.ForEach(func(k, v []byte) error {
		var rec ModelRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil
		}
		want := string(k) == version
		if rec.IsActive == want {
			return nil
		}
		rec.IsActive = want
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal model record: %w", err)
		}
		updates = append(updates, update{key: append([]byte(nil), k...), data: data})
		return nil
	})
	if err != nil {
		return err
	}
	for _, u := range updates {
		if err := models.Put(u.key, u.data); err != nil {
			return err
		}
	}

	return tx.Bucket([]byte(metaBucket)).Put([]byte(activeKey), []byte(version))
}
