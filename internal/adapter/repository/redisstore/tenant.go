package redisstore

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"agri-credit-engine/internal/domain/tenant"

	"github.com/redis/go-redis/v9"
)

const (
	fieldVersion = "v"
	fieldData    = "d"

	scanCount = 200
)

var errMalformed = errors.New("redisstore: malformed version field")

// TenantStore keeps each record as a hash {v: version, d: data} under
// namespace+key.
type TenantStore struct {
	rdb       *redis.Client
	namespace string
}

func NewTenantStore(rdb *redis.Client, namespace string) *TenantStore {
	return &TenantStore{rdb: rdb, namespace: namespace}
}

func (s *TenantStore) redisKey(key string) string { return s.namespace + key }

func (s *TenantStore) Get(ctx context.Context, key string) (tenant.Record, error) {
	return s.load(ctx, s.rdb, key)
}

type hashReader interface {
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

func (s *TenantStore) load(ctx context.Context, c hashReader, key string) (tenant.Record, error) {
	vals, err := c.HMGet(ctx, s.redisKey(key), fieldVersion, fieldData).Result()
	if err != nil {
		return tenant.Record{}, err
	}
	if vals[0] == nil {
		return tenant.Record{}, tenant.ErrRecordNotFound
	}
	rec := tenant.Record{Key: key}
	v, ok := vals[0].(string)
	if !ok {
		return tenant.Record{}, errMalformed
	}
	if rec.Version, err = strconv.ParseInt(v, 10, 64); err != nil {
		return tenant.Record{}, errMalformed
	}
	if d, ok := vals[1].(string); ok {
		rec.Data = []byte(d)
	}
	return rec, nil
}

// Put uses WATCH/MULTI so the version check and the write are one step.
func (s *TenantStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	rk := s.redisKey(key)
	next := expectedVersion + 1

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := s.load(ctx, tx, key)
		switch {
		case errors.Is(err, tenant.ErrRecordNotFound):
			if expectedVersion != 0 {
				return tenant.ErrVersionConflict
			}
		case err != nil:
			return err
		case cur.Version != expectedVersion:
			return tenant.ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, rk, fieldVersion, next, fieldData, data)
			return nil
		})
		return err
	}, rk)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, tenant.ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

// ScanByPrefix collects matching keys with SCAN, then visits them sorted.
func (s *TenantStore) ScanByPrefix(ctx context.Context, prefix string, fn func(tenant.Record) error) error {
	pattern := escapeGlob(s.redisKey(prefix)) + "*"
	var keys []string
	iter := s.rdb.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return err
	}
	sort.Strings(keys)

	for _, k := range keys {
		rec, err := s.Get(ctx, k)
		if errors.Is(err, tenant.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
