// Package quality inspects a raw campaign table before cleaning. It is
// strictly read-only: the report it builds feeds the processing log and the
// before/after summary, never the cleaning decisions themselves.
package quality

import (
	"fmt"

	"adpulse/domain/campaign"
)

// Report is a point-in-time snapshot of raw table health.
type Report struct {
	TotalRecords int
	TotalColumns int
	DateRange    string

	// MissingValues maps column name to missing-cell count; only columns
	// with at least one missing value appear.
	MissingValues map[string]int

	// DataTypes is a per-column type snapshot of the stored schema.
	DataTypes map[string]string

	DuplicateRecords int

	UniqueCampaigns int
	UniqueDevices   int
	UniqueLocations int
}

// columnTypes reflects the interchange schema. The date column stays a
// string until the cleaner parses it.
var columnTypes = map[string]string{
	"date":            "string",
	"campaign_id":     "string",
	"campaign_name":   "string",
	"campaign_type":   "string",
	"keyword":         "string",
	"device":          "string",
	"location":        "string",
	"impressions":     "float64",
	"clicks":          "float64",
	"conversions":     "float64",
	"cost":            "float64",
	"revenue":         "float64",
	"ctr":             "float64",
	"cpc":             "float64",
	"cpa":             "float64",
	"roas":            "float64",
	"conversion_rate": "float64",
}

// Assess builds the quality report for a raw table.
func Assess(table *campaign.Table) Report {
	report := Report{
		TotalRecords:  table.Len(),
		TotalColumns:  len(columnTypes),
		MissingValues: make(map[string]int),
		DataTypes:     columnTypes,
	}

	// Date range over the raw (string) dates; ISO dates order lexically.
	var minDate, maxDate string
	for i := range table.Records {
		d := table.Records[i].RawDate
		if i == 0 || d < minDate {
			minDate = d
		}
		if i == 0 || d > maxDate {
			maxDate = d
		}
	}
	report.DateRange = fmt.Sprintf("%s to %s", minDate, maxDate)

	for i := range table.Records {
		r := &table.Records[i]
		for _, m := range campaign.BaseMetrics {
			if campaign.Missing(r.Base(m)) {
				report.MissingValues[m]++
			}
		}
	}

	seen := make(map[string]int)
	for i := range table.Records {
		seen[table.Records[i].DedupKey()]++
	}
	for _, count := range seen {
		if count > 1 {
			report.DuplicateRecords += count - 1
		}
	}

	report.UniqueCampaigns = table.DistinctCount(func(r *campaign.Record) string { return r.CampaignID })
	report.UniqueDevices = table.DistinctCount(func(r *campaign.Record) string { return r.Device })
	report.UniqueLocations = table.DistinctCount(func(r *campaign.Record) string { return r.Location })

	return report
}
