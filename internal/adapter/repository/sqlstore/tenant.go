package sqlstore

import (
	"context"
	"errors"
	"time"

	"agri-credit-engine/internal/domain/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultScanBatch = 200

// Table: tenant_records
type tenantRecord struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:191"`
	Version   int64     `gorm:"column:version;not null"`
	Data      string    `gorm:"column:data;type:longtext;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (tenantRecord) TableName() string { return "tenant_records" }

type TenantStore struct {
	db    *gorm.DB
	batch int
}

func NewTenantStore(db *gorm.DB, scanBatch int) *TenantStore {
	if scanBatch <= 0 {
		scanBatch = defaultScanBatch
	}
	return &TenantStore{db: db, batch: scanBatch}
}

// Migrate creates the tenant_records table.
func (s *TenantStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&tenantRecord{})
}

func (s *TenantStore) Get(ctx context.Context, key string) (tenant.Record, error) {
	var out tenantRecord
	err := s.db.WithContext(ctx).Where("record_key = ?", key).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant.Record{}, tenant.ErrRecordNotFound
	}
	if err != nil {
		return tenant.Record{}, err
	}
	return tenant.Record{Key: out.Key, Version: out.Version, Data: []byte(out.Data)}, nil
}

func (s *TenantStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	db := s.db.WithContext(ctx)
	if expectedVersion == 0 {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&tenantRecord{Key: key, Version: 1, Data: string(data)})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, tenant.ErrVersionConflict
		}
		return 1, nil
	}

	next := expectedVersion + 1
	res := db.Model(&tenantRecord{}).
		Where("record_key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]any{"data": string(data), "version": next, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, tenant.ErrVersionConflict
	}
	return next, nil
}

// ScanByPrefix walks the key range [prefix, upper) with keyset pagination,
// so no single query holds the whole keyspace.
func (s *TenantStore) ScanByPrefix(ctx context.Context, prefix string, fn func(tenant.Record) error) error {
	upper := tenant.PrefixUpperBound(prefix)
	after := ""
	for {
		q := s.db.WithContext(ctx).Where("record_key >= ?", prefix)
		if upper != "" {
			q = q.Where("record_key < ?", upper)
		}
		if after != "" {
			q = q.Where("record_key > ?", after)
		}
		var page []tenantRecord
		if err := q.Order("record_key ASC").Limit(s.batch).Find(&page).Error; err != nil {
			return err
		}
		for _, r := range page {
			if err := fn(tenant.Record{Key: r.Key, Version: r.Version, Data: []byte(r.Data)}); err != nil {
				return err
			}
		}
		if len(page) < s.batch {
			return nil
		}
		after = page[len(page)-1].Key
	}
}
