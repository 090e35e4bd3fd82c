package docstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bapti-church/bapti-web/internal/db/models"
)

const whereCollectionAndID = "collection = ? AND id = ?"

// GormStore keeps documents as JSON rows in a single gorm table, which
// works the same on sqlite, mysql and postgres.
type GormStore struct {
	db       *gorm.DB
	readOnly bool
	now      func() time.Time
}

var _ Store = (*GormStore)(nil)

// Option configures a GormStore.
type Option func(*GormStore)

// ReadOnly makes every write fail with ErrPermissionDenied.
func ReadOnly() Option {
	return func(s *GormStore) {
		s.readOnly = true
	}
}

// WithClock replaces time.Now for the row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GormStore) {
		s.now = now
	}
}

// NewGormStore creates a store on db. The documents table must be migrated.
func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	s := &GormStore{db: db, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Record, error) {
	if collection == "" || id == "" {
		return nil, ErrEmptyKey
	}

	var doc models.Document

	err := s.db.WithContext(ctx).Where(whereCollectionAndID, collection, id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	return decodeRecord(doc.Data)
}

func (s *GormStore) Set(ctx context.Context, collection, id string, rec Record) error {
	if err := s.writable(collection, id); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	now := s.now()
	doc := models.Document{Collection: collection, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	return nil
}

func (s *GormStore) Update(ctx context.Context, collection, id string, fields Record) error {
	if err := s.writable(collection, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error { //nolint:wrapcheck
		var doc models.Document

		err := tx.Where(whereCollectionAndID, collection, id).First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, err)
		}

		rec, err := decodeRecord(doc.Data)
		if err != nil {
			return err
		}

		for k, v := range fields {
			rec[k] = v
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}

		err = tx.Model(&models.Document{}).
			Where(whereCollectionAndID, collection, id).
			Updates(map[string]any{"data": data, "updated_at": s.now()}).Error
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, err)
		}

		return nil
	})
}

func (s *GormStore) Add(ctx context.Context, collection string, rec Record) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}

	if err = s.writable(collection, id); err != nil {
		return "", err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", collection, err)
	}

	now := s.now()

	doc := models.Document{Collection: collection, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
	if err = s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}

	return id, nil
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.writable(collection, id); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where(whereCollectionAndID, collection, id).Delete(&models.Document{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *GormStore) List(ctx context.Context, collection string, opts ...ListOption) ([]Document, error) {
	var o ListOptions
	for _, opt := range opts {
		opt(&o)
	}

	var rows []models.Document
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([]Document, 0, len(rows))

	for _, row := range rows {
		rec, err := decodeRecord(row.Data)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", collection, row.ID, err)
		}

		if !matches(rec, o.Where) {
			continue
		}

		out = append(out, Document{ID: row.ID, Data: rec})
	}

	if o.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Document) int {
			c := compareValues(a.Data[o.OrderBy], b.Data[o.OrderBy])
			if o.Desc {
				return -c
			}

			return c
		})
	}

	return out, nil
}

func (s *GormStore) writable(collection, id string) error {
	if collection == "" || id == "" {
		return ErrEmptyKey
	}

	if s.readOnly {
		return ErrPermissionDenied
	}

	return nil
}

func decodeRecord(data []byte) (Record, error) {
	rec := Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return rec, nil
}

func matches(rec Record, where map[string]any) bool {
	for field, want := range where {
		if compareValues(rec[field], want) != 0 {
			return false
		}
	}

	return true
}

// compareValues orders json decoded values: nil first, then numbers,
// strings and bools by value. Mixed types compare by their printed form.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)

	if aNum && bNum {
		return cmp.Compare(fa, fb)
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
