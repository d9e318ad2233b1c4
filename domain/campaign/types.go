// Package campaign defines the tabular data model shared by every pipeline
// stage: one Record per (day, campaign, ad instance), plus the aggregate row
// types the analyzer emits. All financial metrics are in USD. CTR and
// conversion rate are expressed as percentages (0-100).
package campaign

import (
	"fmt"
	"math"
	"time"
)

// Campaign types as they appear in the campaign_type column.
const (
	TypeSearch  = "Search"
	TypeDisplay = "Display"
)

// DisplayKeyword is the keyword sentinel used for non-search campaigns.
const DisplayKeyword = "display_ad"

// Base metric column names. Order matters: cleaning passes walk these in
// schema order so that quartiles are deterministic.
const (
	MetricImpressions = "impressions"
	MetricClicks      = "clicks"
	MetricConversions = "conversions"
	MetricCost        = "cost"
	MetricRevenue     = "revenue"
)

// BaseMetrics lists the five ground-truth metric columns in schema order.
var BaseMetrics = []string{
	MetricImpressions,
	MetricClicks,
	MetricConversions,
	MetricCost,
	MetricRevenue,
}

// Record is one row of campaign performance data. Base metrics are float64
// so a missing cell can be carried as NaN until the cleaner imputes it.
type Record struct {
	Date time.Time

	// RawDate preserves the unparsed date cell from the interchange file.
	// The cleaner's parse step is the only consumer allowed to trust Date
	// on a raw table.
	RawDate string

	CampaignID   string
	CampaignName string
	CampaignType string
	Keyword      string
	Device       string
	Location     string

	Impressions float64
	Clicks      float64
	Conversions float64
	Cost        float64
	Revenue     float64

	// Derived KPIs, recomputed from the base metrics, never ground truth.
	CTR            float64 // clicks/impressions * 100
	CPC            float64 // cost/clicks
	CPA            float64 // cost/conversions
	ROAS           float64 // revenue/cost
	ConversionRate float64 // conversions/clicks * 100

	// Enrichment columns, present only on processed tables.
	DayOfWeek         string
	Month             int
	Week              int
	IsWeekend         bool
	CTRCategory       string
	ROASCategory      string
	CostPerImpression float64
	RevenuePerClick   float64
}

// Table is an ordered collection of records. Enriched marks tables that
// carry the feature columns (day_of_week onward).
type Table struct {
	Records  []Record
	Enriched bool
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// Missing reports whether a metric cell carries no value.
func Missing(v float64) bool { return math.IsNaN(v) }

// Base returns the named base metric value.
func (r *Record) Base(name string) float64 {
	switch name {
	case MetricImpressions:
		return r.Impressions
	case MetricClicks:
		return r.Clicks
	case MetricConversions:
		return r.Conversions
	case MetricCost:
		return r.Cost
	case MetricRevenue:
		return r.Revenue
	}
	return math.NaN()
}

// SetBase assigns the named base metric value.
func (r *Record) SetBase(name string, v float64) {
	switch name {
	case MetricImpressions:
		r.Impressions = v
	case MetricClicks:
		r.Clicks = v
	case MetricConversions:
		r.Conversions = v
	case MetricCost:
		r.Cost = v
	case MetricRevenue:
		r.Revenue = v
	}
}

// DedupKey builds a full-row identity key for exact-duplicate detection.
// Every stored column participates, so two rows are duplicates only when
// all columns are equal.
func (r *Record) DedupKey() string {
	date := r.RawDate
	if date == "" {
		date = r.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%v|%v|%v|%v|%v",
		date,
		r.CampaignID, r.CampaignName, r.CampaignType,
		r.Keyword, r.Device, r.Location,
		r.Impressions, r.Clicks, r.Conversions, r.Cost, r.Revenue)
}

// DateRange returns the earliest and latest dates in the table.
// Both are zero when the table is empty.
func (t *Table) DateRange() (min, max time.Time) {
	for i, r := range t.Records {
		if i == 0 || r.Date.Before(min) {
			min = r.Date
		}
		if i == 0 || r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max
}

// DistinctCount counts distinct values of a string-keyed column.
func (t *Table) DistinctCount(key func(*Record) string) int {
	seen := make(map[string]struct{})
	for i := range t.Records {
		seen[key(&t.Records[i])] = struct{}{}
	}
	return len(seen)
}
