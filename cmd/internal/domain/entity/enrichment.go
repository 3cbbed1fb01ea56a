package entity

import "time"

// FirmographicEnrichment caches the raw ZoomInfo enrich payload per ticker.
type FirmographicEnrichment struct {
	Ticker                string    `gorm:"primaryKey;column:ticker"`
	CompanyDomain         string    `gorm:"not null"`
	CompanyEnrichmentData string    `gorm:"type:text;not null"`
	LastUpdateDate        time.Time `gorm:"not null;index"`
}

func (FirmographicEnrichment) TableName() string {
	return "zoominfo_enrichments"
}

// ProfessionalNetworkEnrichment caches the trimmed Proxycurl company profile per
// ticker, together with the identifiers used for the lookup.
type ProfessionalNetworkEnrichment struct {
	Ticker                 string    `gorm:"primaryKey;column:ticker"`
	LinkedinCompanyProfile string    `gorm:"not null"`
	CompanyDomain          string    `gorm:"not null"`
	CompanyName            string    `gorm:"not null"`
	NubelaEnrichmentData   string    `gorm:"type:text;not null"`
	LastUpdateDate         time.Time `gorm:"not null;index"`
}

func (ProfessionalNetworkEnrichment) TableName() string {
	return "nubela_enrichments"
}
