package storage

import (
	"context"
	"errors"
	"fmt"

	"shelleylegion/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresBackend stores objects as rows of the content_documents table.
// Conditional writes are a single UPDATE guarded by the version column.
type PostgresBackend struct {
	db *gorm.DB
}

func NewPostgresBackend(db *gorm.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) GetObject(ctx context.Context, key string) (*Object, error) {
	var doc models.StoredDocument
	err := b.db.WithContext(ctx).Where("doc_key = ?", key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s: %w", key, err)
	}
	return &Object{Key: doc.Key, Data: doc.Data, Version: doc.Version}, nil
}

func (b *PostgresBackend) PutObject(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	version := uuid.NewString()
	db := b.db.WithContext(ctx)

	if expectedVersion == "" {
		doc := models.StoredDocument{Key: key, Data: data, Version: version}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "version", "updated_at"}),
		}).Create(&doc).Error
		if err != nil {
			return "", fmt.Errorf("postgres: upsert %s: %w", key, err)
		}
		return version, nil
	}

	if expectedVersion == AbsentVersion {
		doc := models.StoredDocument{Key: key, Data: data, Version: version}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&doc)
		if res.Error != nil {
			return "", fmt.Errorf("postgres: insert %s: %w", key, res.Error)
		}
		if res.RowsAffected == 0 {
			return "", ErrVersionMismatch
		}
		return version, nil
	}

	res := db.Model(&models.StoredDocument{}).
		Where("doc_key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]any{"data": data, "version": version})
	if res.Error != nil {
		return "", fmt.Errorf("postgres: update %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrVersionMismatch
	}
	return version, nil
}

func (b *PostgresBackend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.db.WithContext(ctx).Model(&models.StoredDocument{}).
		Where("doc_key LIKE ?", prefix+"%").
		Order("doc_key").
		Pluck("doc_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s: %w", prefix, err)
	}
	return keys, nil
}
