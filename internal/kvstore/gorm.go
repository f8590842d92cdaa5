package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"RostrDating/internal/model"
)

// GormStore postgres 后端，过期记录在读取时过滤，不做后台清理
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) live(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.KVEntry{}).
		Where("expires_at IS NULL OR expires_at > ?", s.now())
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := s.live(ctx).Where("key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *GormStore) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var entries []model.KVEntry
	if err := s.live(ctx).Where("key IN ?", keys).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query %d keys: %w", len(keys), err)
	}

	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	entry := model.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		entry.ExpiresAt = &expiresAt
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %d keys: %w", len(keys), err)
	}
	return nil
}
