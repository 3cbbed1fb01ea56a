package repository

import (
	"context"
	"errors"
	"time"

	"corpanalyst/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultFilingRepository struct {
	db *gorm.DB
}

func NewFilingRepository(db *gorm.DB) *DefaultFilingRepository {
	return &DefaultFilingRepository{db: db}
}

// FindLatestByTicker returns the most recent filing link for the ticker without
// loading its text. Rows without a filing date sort last on every driver.
func (r *DefaultFilingRepository) FindLatestByTicker(ctx context.Context, ticker string) (*entity.Filing, error) {
	var filing entity.Filing
	err := r.db.WithContext(ctx).
		Select("url", "ticker", "date_of_report", "date_of_download").
		Where("ticker = ?", ticker).
		Order("CASE WHEN date_of_report IS NULL THEN 1 ELSE 0 END").
		Order("date_of_report DESC").
		First(&filing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &filing, nil
}

func (r *DefaultFilingRepository) FindByURL(ctx context.Context, url string) (*entity.Filing, error) {
	var filing entity.Filing
	err := r.db.WithContext(ctx).
		Where("url = ?", url).
		First(&filing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &filing, nil
}

// Upsert inserts the filing or overwrites the row already stored for its URL.
func (r *DefaultFilingRepository) Upsert(ctx context.Context, filing *entity.Filing) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			UpdateAll: true,
		}).
		Create(filing).Error
}

func (r *DefaultFilingRepository) Delete(ctx context.Context, url string) error {
	return r.db.WithContext(ctx).
		Where("url = ?", url).
		Delete(&entity.Filing{}).Error
}

func (r *DefaultFilingRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("date_of_download < ?", before).
		Delete(&entity.Filing{})
	return res.RowsAffected, res.Error
}
