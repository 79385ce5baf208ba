package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

const (
	DefaultKey = "ridewise-data"
	probeKey   = "__ridewise_test__"
)

type Options struct {
	Key     string
	Backend string
	Logger  ports.LoggerPort
	Metrics ports.MetricsPort
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Store reads and writes the whole Document under one key. When the backend
// is unusable it keeps the document in memory for the rest of the process.
type Store struct {
	kv      ports.KVStorage
	key     string
	backend string
	logger  ports.LoggerPort
	metrics ports.MetricsPort
	now     func() time.Time

	mu       sync.Mutex
	degraded bool
	memory   *domain.Document
}

// Open probes the backend and returns a ready store. It never fails: an
// unusable backend puts the store into degraded mode.
func Open(ctx context.Context, kv ports.KVStorage, opts Options) *Store {
	s := &Store{
		kv:      kv,
		key:     opts.Key,
		backend: opts.Backend,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.backend == "" {
		s.backend = "unknown"
	}

	if kv == nil {
		s.degrade(errors.New("no storage backend configured"))
		return s
	}
	if err := s.probe(ctx); err != nil {
		s.degrade(err)
	}
	return s
}

func (s *Store) probe(ctx context.Context) error {
	if err := s.kv.SetItem(ctx, probeKey, []byte(probeKey)); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	if err := s.kv.RemoveItem(ctx, probeKey); err != nil {
		return fmt.Errorf("probe remove: %w", err)
	}
	return nil
}

func (s *Store) Key() string {
	return s.key
}

func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Load returns the stored document, seeding or repairing storage as needed.
func (s *Store) Load(ctx context.Context) domain.Document {
	if doc, ok := s.memoryDocument(); ok {
		return doc
	}

	raw, err := s.kv.GetItem(ctx, s.key)
	switch {
	case errors.Is(err, ports.ErrKeyNotFound) || (err == nil && len(bytes.TrimSpace(raw)) == 0):
		s.logInfo("No stored document, writing seed", nil)
		return s.reseed(ctx)
	case err != nil:
		s.degrade(err)
		doc, _ := s.memoryDocument()
		return doc
	}

	doc, err := migrate(raw, s.now())
	if err != nil {
		s.logWarn("Stored document is malformed, replacing with seed", map[string]interface{}{
			"error": fmt.Errorf("%w: %v", domain.ErrMalformedStoredData, err).Error(),
			"key":   s.key,
		})
		return s.reseed(ctx)
	}

	if err := s.Save(ctx, doc); err != nil {
		s.logWarn("Failed to persist migrated document", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return s.stamped(doc)
}

// Save overwrites the stored document. Backend failures degrade the store
// rather than surface to the caller; only encoding errors are returned.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	doc = s.stamped(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if s.Degraded() {
		s.remember(doc)
		return nil
	}

	err = s.kv.SetItem(ctx, s.key, data)
	if s.metrics != nil {
		s.metrics.RecordStoreWrite(s.backend, err)
	}
	if err != nil {
		s.degrade(err)
		s.remember(doc)
	}
	return nil
}

// Reset replaces the stored document with the seed.
func (s *Store) Reset(ctx context.Context) domain.Document {
	s.logInfo("Resetting stored document", nil)
	return s.reseed(ctx)
}

// Export returns the stored document as indented JSON.
func (s *Store) Export(ctx context.Context) (string, error) {
	return Encode(s.Load(ctx))
}

// Import replaces the stored document with a previously exported one.
// Malformed input leaves storage untouched.
func (s *Store) Import(ctx context.Context, data string) (domain.Document, error) {
	doc, err := decode(data, s.now())
	if err != nil {
		return domain.Document{}, err
	}
	if err := s.Save(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	return s.stamped(doc), nil
}

// Encode renders a document the way Export does.
func Encode(doc domain.Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}

// decode parses and migrates an exported document.
func decode(data string, now time.Time) (domain.Document, error) {
	doc, err := migrate([]byte(data), now)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrMalformedImport, err)
	}
	return doc, nil
}

func (s *Store) reseed(ctx context.Context) domain.Document {
	doc := Seed()
	if err := s.Save(ctx, doc); err != nil {
		s.logWarn("Failed to write seed document", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return doc
}

func (s *Store) stamped(doc domain.Document) domain.Document {
	if doc.SchemaVersion < CurrentSchemaVersion {
		doc.SchemaVersion = CurrentSchemaVersion
	}
	return doc
}

func (s *Store) degrade(cause error) {
	s.mu.Lock()
	already := s.degraded
	s.degraded = true
	s.mu.Unlock()

	if already {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordDegraded(s.backend)
	}
	s.logWarn("Storage unavailable, keeping data in memory for this session", map[string]interface{}{
		"error":   fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, cause).Error(),
		"backend": s.backend,
	})
}

func (s *Store) memoryDocument() (domain.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		return domain.Document{}, false
	}
	if s.memory == nil {
		seed := Seed()
		s.memory = &seed
	}
	return s.memory.Clone(), true
}

func (s *Store) remember(doc domain.Document) {
	clone := doc.Clone()
	s.mu.Lock()
	s.memory = &clone
	s.mu.Unlock()
}

func (s *Store) logInfo(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Store) logWarn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
