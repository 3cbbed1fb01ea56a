package repository

import (
	"context"
	"errors"
	"time"

	"corpanalyst/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultProfessionalNetworkRepository struct {
	db *gorm.DB
}

func NewProfessionalNetworkRepository(db *gorm.DB) *DefaultProfessionalNetworkRepository {
	return &DefaultProfessionalNetworkRepository{db: db}
}

func (r *DefaultProfessionalNetworkRepository) FindByTicker(ctx context.Context, ticker string) (*entity.ProfessionalNetworkEnrichment, error) {
	var enrichment entity.ProfessionalNetworkEnrichment
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

// Upsert writes the row in a single INSERT ... ON CONFLICT (ticker) DO UPDATE.
func (r *DefaultProfessionalNetworkRepository) Upsert(ctx context.Context, enrichment *entity.ProfessionalNetworkEnrichment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			UpdateAll: true,
		}).
		Create(enrichment).Error
}

func (r *DefaultProfessionalNetworkRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Delete(&entity.ProfessionalNetworkEnrichment{}).Error
}

func (r *DefaultProfessionalNetworkRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("last_update_date < ?", before).
		Delete(&entity.ProfessionalNetworkEnrichment{})
	return res.RowsAffected, res.Error
}
