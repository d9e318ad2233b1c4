package clean

import (
	"fmt"

	"adpulse/domain/campaign"
)

// Validation is the post-cleaning gate result. Valid is false when any
// invariant the cleaner guarantees does not actually hold; Issues itemizes
// every violated check. The processor skips persistence on failure, so no
// partial output file is ever left behind.
type Validation struct {
	Valid  bool
	Issues []string
}

// Validate checks the cleaned, enriched table against the invariants every
// downstream stage assumes.
func Validate(table *campaign.Table) Validation {
	var issues []string

	missing := 0
	for i := range table.Records {
		r := &table.Records[i]
		for _, m := range campaign.BaseMetrics {
			if campaign.Missing(r.Base(m)) {
				missing++
			}
		}
	}
	if missing > 0 {
		issues = append(issues, fmt.Sprintf("still have %d missing values in base metrics", missing))
	}

	for _, m := range campaign.BaseMetrics {
		for i := range table.Records {
			if table.Records[i].Base(m) < 0 {
				issues = append(issues, fmt.Sprintf("found negative values in %s", m))
				break
			}
		}
	}

	for i := range table.Records {
		if table.Records[i].CTR > 100 {
			issues = append(issues, "found CTR values > 100%")
			break
		}
	}
	for i := range table.Records {
		if table.Records[i].ConversionRate > 100 {
			issues = append(issues, "found conversion rate values > 100%")
			break
		}
	}

	if min, max := table.DateRange(); min.After(max) {
		issues = append(issues, "date range is invalid")
	}

	return Validation{Valid: len(issues) == 0, Issues: issues}
}
