package entity

import "time"

// Filing is a cached SEC filing. The URL is the identity of the row: the
// extracted text behind a URL never changes, so a hit on the URL is always
// served as-is. The ticker/date pair drives the "latest filing" lookup.
type Filing struct {
	URL            string     `gorm:"primaryKey;column:url"`
	Ticker         string     `gorm:"not null;index:idx_sec_filings_ticker_date,priority:1"`
	DateOfReport   *time.Time `gorm:"index:idx_sec_filings_ticker_date,priority:2,sort:desc"`
	TextReport     string     `gorm:"type:text;not null"`
	DateOfDownload time.Time  `gorm:"not null"`
}

func (Filing) TableName() string {
	return "sec_filings"
}
