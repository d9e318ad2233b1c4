package generate

import (
	"time"

	"adpulse/domain/campaign"

	"github.com/montanaflynn/stats"
)

// Summary is the descriptive snapshot printed after generation.
type Summary struct {
	TotalRecords int
	DateMin      time.Time
	DateMax      time.Time
	Campaigns    int
	Devices      int
	Locations    int

	MeanKPIs campaign.KPISet
	Totals   campaign.Totals
}

// Summarize computes the post-generation summary for a table.
func Summarize(table *campaign.Table) Summary {
	s := Summary{TotalRecords: table.Len()}
	s.DateMin, s.DateMax = table.DateRange()
	s.Campaigns = table.DistinctCount(func(r *campaign.Record) string { return r.CampaignID })
	s.Devices = table.DistinctCount(func(r *campaign.Record) string { return r.Device })
	s.Locations = table.DistinctCount(func(r *campaign.Record) string { return r.Location })
	s.Totals = campaign.Sum(table.Records)

	n := table.Len()
	ctr := make([]float64, 0, n)
	cpc := make([]float64, 0, n)
	cpa := make([]float64, 0, n)
	roas := make([]float64, 0, n)
	cvr := make([]float64, 0, n)
	for i := range table.Records {
		r := &table.Records[i]
		ctr = append(ctr, r.CTR)
		cpc = append(cpc, r.CPC)
		cpa = append(cpa, r.CPA)
		roas = append(roas, r.ROAS)
		cvr = append(cvr, r.ConversionRate)
	}

	s.MeanKPIs.CTR, _ = stats.Mean(ctr)
	s.MeanKPIs.CPC, _ = stats.Mean(cpc)
	s.MeanKPIs.CPA, _ = stats.Mean(cpa)
	s.MeanKPIs.ROAS, _ = stats.Mean(roas)
	s.MeanKPIs.ConversionRate, _ = stats.Mean(cvr)

	return s
}
