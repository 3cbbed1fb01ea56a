package policy

import "time"

const (
	FilingLinkTTLDays   = 90
	FirmographicTTLDays = 30
)

type Freshness int

const (
	Stale Freshness = iota
	Fresh
)

func (f Freshness) String() string {
	if f == Fresh {
		return "fresh"
	}
	return "stale"
}

// FreshnessPolicy decides whether a cached row may be served without a remote
// refresh. Ages are counted in whole UTC calendar days and a row is fresh only
// while its age is strictly below TTLDays.
type FreshnessPolicy struct {
	TTLDays int
}

func NewFreshnessPolicy(ttlDays int) *FreshnessPolicy {
	return &FreshnessPolicy{TTLDays: ttlDays}
}

// Evaluate classifies a row last updated at lastUpdate. A nil date is stale.
func (p *FreshnessPolicy) Evaluate(now time.Time, lastUpdate *time.Time) Freshness {
	if lastUpdate == nil {
		return Stale
	}

	if AgeInDays(now, *lastUpdate) < p.TTLDays {
		return Fresh
	}
	return Stale
}

func (p *FreshnessPolicy) IsFresh(now, lastUpdate time.Time) bool {
	return p.Evaluate(now, &lastUpdate) == Fresh
}

// AgeInDays returns the number of calendar days between the UTC dates of then and now.
func AgeInDays(now, then time.Time) int {
	return int(truncateDay(now).Sub(truncateDay(then)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
