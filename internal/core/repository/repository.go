package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/storage"
)

// Repository owns the working copy of the document. Every mutation is
// written through to the store as one full-document save.
type Repository struct {
	store  *storage.Store
	logger ports.LoggerPort
	now    func() time.Time

	mu  sync.RWMutex
	doc domain.Document
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func New(store *storage.Store, logger ports.LoggerPort, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: logger,
		now:    time.Now,
		doc:    domain.Document{Preferences: domain.DefaultPreferences()},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init loads the document from the store. It must run before first use.
func (r *Repository) Init(ctx context.Context) {
	doc := r.store.Load(ctx)

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()

	r.logger.Info("Repository initialized", map[string]interface{}{
		"bikes":    len(doc.Bikes),
		"services": len(doc.Services),
		"degraded": r.store.Degraded(),
	})
}

func (r *Repository) ListBikes() []domain.Bike {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Bike, len(r.doc.Bikes))
	for i, b := range r.doc.Bikes {
		out[i] = b.Clone()
	}
	return out
}

func (r *Repository) GetBike(id string) (domain.Bike, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, _, ok := r.doc.FindBike(id)
	if !ok {
		return domain.Bike{}, false
	}
	return b.Clone(), true
}

// AddBike normalizes the patch into a new bike and appends it.
func (r *Repository) AddBike(ctx context.Context, patch domain.BikePatch) (domain.Bike, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bike := domain.NormalizeNewBike(patch, r.now())
	if _, _, taken := r.doc.FindBike(bike.ID); taken {
		bike.ID = r.freshBikeID()
	}
	r.doc.Bikes = append(r.doc.Bikes, bike)

	if err := r.persist(ctx); err != nil {
		return domain.Bike{}, err
	}
	return bike.Clone(), nil
}

// UpsertBike merges into the bike with the patch id, or adds a new bike.
func (r *Repository) UpsertBike(ctx context.Context, patch domain.BikePatch) (domain.Bike, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bike domain.Bike
	id := ""
	if patch.ID != nil {
		id = strings.TrimSpace(*patch.ID)
	}
	if existing, idx, ok := r.doc.FindBike(id); ok && id != "" {
		bike = domain.MergeBike(existing, patch)
		r.doc.Bikes[idx] = bike
	} else {
		bike = domain.NormalizeNewBike(patch, r.now())
		if _, _, taken := r.doc.FindBike(bike.ID); taken {
			bike.ID = r.freshBikeID()
		}
		r.doc.Bikes = append(r.doc.Bikes, bike)
	}

	if err := r.persist(ctx); err != nil {
		return domain.Bike{}, err
	}
	return bike.Clone(), nil
}

func (r *Repository) ListServices() []domain.ServiceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ServiceEntry, len(r.doc.Services))
	for i, s := range r.doc.Services {
		out[i] = s.Clone()
	}
	return out
}

func (r *Repository) GetService(id string) (domain.ServiceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, _, ok := r.doc.FindService(id)
	if !ok {
		return domain.ServiceEntry{}, false
	}
	return s.Clone(), true
}

// UpsertService merges into the entry with the patch id, or appends a new one.
func (r *Repository) UpsertService(ctx context.Context, patch domain.ServicePatch) (domain.ServiceEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entry domain.ServiceEntry
	id := ""
	if patch.ID != nil {
		id = strings.TrimSpace(*patch.ID)
	}
	if existing, idx, ok := r.doc.FindService(id); ok && id != "" {
		entry = domain.MergeService(existing, patch)
		r.doc.Services[idx] = entry
	} else {
		entry = domain.NormalizeNewService(patch)
		for {
			if _, _, taken := r.doc.FindService(entry.ID); !taken {
				break
			}
			entry.ID = domain.NewID()
		}
		r.doc.Services = append(r.doc.Services, entry)
	}

	if err := r.persist(ctx); err != nil {
		return domain.ServiceEntry{}, err
	}
	return entry.Clone(), nil
}

// RemoveService deletes the entry with id. Unknown ids are a no-op.
func (r *Repository) RemoveService(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, idx, ok := r.doc.FindService(id)
	if !ok {
		return nil
	}
	r.doc.Services = append(r.doc.Services[:idx:idx], r.doc.Services[idx+1:]...)
	return r.persist(ctx)
}

func (r *Repository) Preferences() domain.Preferences {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Preferences.Clone()
}

func (r *Repository) UpdatePreferences(ctx context.Context, patch domain.PreferencesPatch) (domain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc.Preferences = domain.MergePreferences(r.doc.Preferences, patch)
	if err := r.persist(ctx); err != nil {
		return domain.Preferences{}, err
	}
	return r.doc.Preferences.Clone(), nil
}

// Snapshot returns a deep copy of the working document.
func (r *Repository) Snapshot() domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Clone()
}

// Reload replaces the working copy with what the store holds now.
func (r *Repository) Reload(ctx context.Context) domain.Document {
	doc := r.store.Load(ctx)

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()
	return doc.Clone()
}

func (r *Repository) Reset(ctx context.Context) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc = r.store.Reset(ctx)
	r.logger.Info("Data reset to seed", nil)
	return r.doc.Clone(), nil
}

// Import replaces the working copy with an exported document.
func (r *Repository) Import(ctx context.Context, data string) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Import(ctx, data)
	if err != nil {
		r.logger.Warn("Import rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.Document{}, err
	}
	r.doc = doc
	r.logger.Info("Data imported", map[string]interface{}{
		"bikes":    len(doc.Bikes),
		"services": len(doc.Services),
	})
	return r.doc.Clone(), nil
}

// Export serializes the working copy.
func (r *Repository) Export(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return storage.Encode(r.doc)
}

func (r *Repository) persist(ctx context.Context) error {
	if err := r.store.Save(ctx, r.doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *Repository) freshBikeID() string {
	for {
		id := domain.NewID()
		if _, _, taken := r.doc.FindBike(id); !taken {
			return id
		}
	}
}

var _ ports.MaintenanceRepository = (*Repository)(nil)
