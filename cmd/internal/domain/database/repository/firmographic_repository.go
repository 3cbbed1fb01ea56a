package repository

import (
	"context"
	"errors"
	"time"

	"corpanalyst/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultFirmographicRepository struct {
	db *gorm.DB
}

func NewFirmographicRepository(db *gorm.DB) *DefaultFirmographicRepository {
	return &DefaultFirmographicRepository{db: db}
}

func (r *DefaultFirmographicRepository) FindByTicker(ctx context.Context, ticker string) (*entity.FirmographicEnrichment, error) {
	var enrichment entity.FirmographicEnrichment
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		First(&enrichment).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &enrichment, nil
}

// Upsert writes the row in a single INSERT ... ON CONFLICT (ticker) DO UPDATE,
// so concurrent refreshes of the same ticker resolve to the last writer.
func (r *DefaultFirmographicRepository) Upsert(ctx context.Context, enrichment *entity.FirmographicEnrichment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			UpdateAll: true,
		}).
		Create(enrichment).Error
}

func (r *DefaultFirmographicRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Delete(&entity.FirmographicEnrichment{}).Error
}

func (r *DefaultFirmographicRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("last_update_date < ?", before).
		Delete(&entity.FirmographicEnrichment{})
	return res.RowsAffected, res.Error
}
