package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRecordNotFound = errors.New("session record not found")

// SessionRecordRepository is the durable retention tier. One row per
// console session id; Upsert replaces the previous record for the same id.
type SessionRecordRepository interface {
	Upsert(ctx context.Context, rec *domain.SessionRecord) error
	FindBySessionID(ctx context.Context, sid string) (*domain.SessionRecord, error)
	DeleteBySessionID(ctx context.Context, sid string) error
	CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type GormSessionRecordRepository struct{ db *gorm.DB }

func NewSessionRecordRepository(db *gorm.DB) SessionRecordRepository {
	return &GormSessionRecordRepository{db: db}
}

func (r *GormSessionRecordRepository) Upsert(ctx context.Context, rec *domain.SessionRecord) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_blob", "token", "remember", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		observability.RecordSessionStoreOperation(ctx, "durable", "upsert", "error")
		return err
	}
	observability.RecordSessionStoreOperation(ctx, "durable", "upsert", "success")
	return nil
}

func (r *GormSessionRecordRepository) FindBySessionID(ctx context.Context, sid string) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	err := r.db.WithContext(ctx).Where("session_id = ?", sid).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordSessionStoreOperation(ctx, "durable", "find", "not_found")
			return nil, ErrRecordNotFound
		}
		observability.RecordSessionStoreOperation(ctx, "durable", "find", "error")
		return nil, err
	}
	observability.RecordSessionStoreOperation(ctx, "durable", "find", "success")
	return &rec, nil
}

func (r *GormSessionRecordRepository) DeleteBySessionID(ctx context.Context, sid string) error {
	err := r.db.WithContext(ctx).Where("session_id = ?", sid).Delete(&domain.SessionRecord{}).Error
	if err != nil {
		observability.RecordSessionStoreOperation(ctx, "durable", "delete", "error")
		return err
	}
	observability.RecordSessionStoreOperation(ctx, "durable", "delete", "success")
	return nil
}

func (r *GormSessionRecordRepository) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res := r.db.WithContext(ctx).Where("updated_at <= ?", cutoff).Delete(&domain.SessionRecord{})
	if res.Error != nil {
		observability.RecordSessionStoreOperation(ctx, "durable", "cleanup", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordSessionStoreOperation(ctx, "durable", "cleanup", "success")
	return res.RowsAffected, nil
}
