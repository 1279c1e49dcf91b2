package storemock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"agri-credit-engine/internal/domain/tenant"
)

// Ensure compile-time compliance
var _ tenant.Store = (*Store)(nil)

// Store is an in-memory tenant.Store with hooks for injecting failures.
type Store struct {
	mu      sync.Mutex
	records map[string]tenant.Record

	// BeforePutFn runs before every Put; a non-nil error is returned as-is.
	BeforePutFn func(key string, expectedVersion int64) error
	// GetFn, when set, replaces Get.
	GetFn func(ctx context.Context, key string) (tenant.Record, error)

	Puts int
}

func New() *Store { return &Store{records: map[string]tenant.Record{}} }

func (s *Store) Get(ctx context.Context, key string) (tenant.Record, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return tenant.Record{}, tenant.ErrRecordNotFound
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return rec, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	if s.BeforePutFn != nil {
		if err := s.BeforePutFn(key, expectedVersion); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = map[string]tenant.Record{}
	}
	cur, ok := s.records[key]
	if (!ok && expectedVersion != 0) || (ok && cur.Version != expectedVersion) {
		return 0, tenant.ErrVersionConflict
	}
	next := expectedVersion + 1
	s.records[key] = tenant.Record{Key: key, Version: next, Data: append([]byte(nil), data...)}
	s.Puts++
	return next, nil
}

func (s *Store) ScanByPrefix(ctx context.Context, prefix string, fn func(tenant.Record) error) error {
	s.mu.Lock()
	var recs []tenant.Record
	for k, r := range s.records {
		if strings.HasPrefix(k, prefix) {
			recs = append(recs, r)
		}
	}
	s.mu.Unlock()
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	for _, r := range recs {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns every stored key, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
