// Package generate synthesizes campaign performance data with realistic
// relationships between the base metrics: clicks follow impressions through
// a campaign-type CTR, conversions follow clicks, cost follows clicks
// through a CPC draw, revenue follows conversions. A second pass injects
// the defects (missing cells, outliers, negative values) the processor
// stage exists to clean.
package generate

import (
	"math"
	rand "math/rand/v2"
	"time"

	"adpulse/domain/campaign"
	"adpulse/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

type campaignSpec struct {
	ID     string
	Name   string
	Budget float64
	Type   string
}

var campaigns = []campaignSpec{
	{ID: "CAMP_001", Name: "Summer Sale 2024", Budget: 5000, Type: campaign.TypeSearch},
	{ID: "CAMP_002", Name: "Brand Awareness", Budget: 3000, Type: campaign.TypeDisplay},
	{ID: "CAMP_003", Name: "Product Launch", Budget: 8000, Type: campaign.TypeSearch},
	{ID: "CAMP_004", Name: "Retargeting", Budget: 2000, Type: campaign.TypeDisplay},
	{ID: "CAMP_005", Name: "Holiday Special", Budget: 6000, Type: campaign.TypeSearch},
}

var keywords = []string{
	"summer sale", "discount", "clearance", "brand name", "product category",
	"best price", "free shipping", "limited time", "exclusive offer", "new arrival",
}

var devices = []string{"Desktop", "Mobile", "Tablet"}

// Mobile is the most common device.
var deviceWeights = []float64{0.4, 0.5, 0.1}

var locations = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
}

type Config struct {
	Days      int
	Seed      int64
	StartDate time.Time

	// AnomalyRate is the fraction of records the defect pass touches.
	AnomalyRate float64
}

func DefaultConfig() Config {
	return Config{
		Days:        90,
		Seed:        42,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AnomalyRate: 0.05,
	}
}

// Generator produces deterministic synthetic campaign tables for a config.
type Generator struct {
	cfg Config
	rng *rand.Rand
	src *rand.PCG

	weekdayImpr distuv.Poisson
	weekendImpr distuv.Poisson
	ctrJitter   distuv.Normal
	cvrJitter   distuv.Normal
	cpcJitter   distuv.Normal
	revJitter   distuv.Normal
}

func New(cfg Config) (*Generator, error) {
	if cfg.Days <= 0 {
		return nil, errors.InvalidInput("days must be > 0")
	}
	if cfg.AnomalyRate < 0 || cfg.AnomalyRate > 1 {
		return nil, errors.InvalidInput("anomaly rate must be in [0,1]")
	}

	src := rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed))
	return &Generator{
		cfg: cfg,
		rng: rand.New(src),
		src: src,

		weekdayImpr: distuv.Poisson{Lambda: 1000, Src: src},
		weekendImpr: distuv.Poisson{Lambda: 600, Src: src},
		ctrJitter:   distuv.Normal{Mu: 0, Sigma: 0.005, Src: src},
		cvrJitter:   distuv.Normal{Mu: 0, Sigma: 0.01, Src: src},
		cpcJitter:   distuv.Normal{Mu: 0, Sigma: 0.5, Src: src},
		revJitter:   distuv.Normal{Mu: 0, Sigma: 10, Src: src},
	}, nil
}

// Generate builds the clean dataset: multiple ad records per campaign per
// day, fewer on weekends, with all derived KPI columns populated.
func (g *Generator) Generate() *campaign.Table {
	table := &campaign.Table{}

	for d := 0; d < g.cfg.Days; d++ {
		date := g.cfg.StartDate.AddDate(0, 0, d)
		weekend := isWeekend(date)

		for _, spec := range campaigns {
			numRecords := 3 + g.rng.IntN(5)
			if weekend {
				numRecords = 1 + g.rng.IntN(3)
			}

			for n := 0; n < numRecords; n++ {
				table.Records = append(table.Records, g.record(date, spec, weekend))
			}
		}
	}

	return table
}

func (g *Generator) record(date time.Time, spec campaignSpec, weekend bool) campaign.Record {
	impressions := g.weekdayImpr.Rand()
	if weekend {
		impressions = g.weekendImpr.Rand()
	}

	baseCTR := 0.02
	baseCVR := 0.05
	baseCPC := 2.5
	baseRevenue := 50.0
	if spec.Type == campaign.TypeDisplay {
		baseCTR = 0.005
		baseCVR = 0.02
		baseCPC = 0.8
		baseRevenue = 30.0
	}

	ctr := clamp(baseCTR+g.ctrJitter.Rand(), 0.001, 0.1)
	clicks := math.Floor(impressions * ctr)

	cvr := clamp(baseCVR+g.cvrJitter.Rand(), 0.001, 0.2)
	conversions := math.Floor(clicks * cvr)

	cpc := math.Max(0.1, baseCPC+g.cpcJitter.Rand())
	cost := campaign.Round2(clicks * cpc)

	revenuePerConversion := math.Max(5, baseRevenue+g.revJitter.Rand())
	revenue := campaign.Round2(conversions * revenuePerConversion)

	keyword := campaign.DisplayKeyword
	if spec.Type == campaign.TypeSearch {
		keyword = keywords[g.rng.IntN(len(keywords))]
	}

	rec := campaign.Record{
		Date:         date,
		CampaignID:   spec.ID,
		CampaignName: spec.Name,
		CampaignType: spec.Type,
		Keyword:      keyword,
		Device:       g.pickDevice(),
		Location:     locations[g.rng.IntN(len(locations))],
		Impressions:  impressions,
		Clicks:       clicks,
		Conversions:  conversions,
		Cost:         cost,
		Revenue:      revenue,
	}
	rec.RecomputeKPIs()
	return rec
}

func (g *Generator) pickDevice() string {
	x := g.rng.Float64()
	cum := 0.0
	for i, w := range deviceWeights {
		cum += w
		if x < cum {
			return devices[i]
		}
	}
	return devices[len(devices)-1]
}

// InjectAnomalies returns a copy of the table with defects added to a
// random sample of records: a missing value, an extreme outlier, or an
// impossible negative value, each equally likely per touched record.
func (g *Generator) InjectAnomalies(table *campaign.Table) *campaign.Table {
	out := &campaign.Table{Records: make([]campaign.Record, len(table.Records))}
	copy(out.Records, table.Records)

	count := int(float64(len(out.Records)) * g.cfg.AnomalyRate)
	perm := g.rng.Perm(len(out.Records))

	for _, idx := range perm[:count] {
		rec := &out.Records[idx]

		switch g.rng.IntN(3) {
		case 0: // missing data
			field := []string{campaign.MetricClicks, campaign.MetricConversions, campaign.MetricCost}[g.rng.IntN(3)]
			rec.SetBase(field, math.NaN())
		case 1: // extreme outlier
			switch g.rng.IntN(3) {
			case 0:
				rec.Impressions = float64(10000 + g.rng.IntN(40000))
			case 1:
				rec.Clicks = float64(500 + g.rng.IntN(1500))
			default:
				rec.Cost = campaign.Round2(1000 + g.rng.Float64()*4000)
			}
		default: // impossible value
			field := []string{campaign.MetricClicks, campaign.MetricConversions}[g.rng.IntN(2)]
			rec.SetBase(field, -1)
		}
	}

	return out
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
