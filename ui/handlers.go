package ui

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"adpulse/domain/campaign"
)

// filter is the record-level selection the explore page and /api/filter
// accept. Empty fields match everything.
type filter struct {
	CampaignID string
	Device     string
	Location   string
	From       time.Time
	To         time.Time
}

func filterFromQuery(c *gin.Context) (filter, error) {
	f := filter{
		CampaignID: c.Query("campaign"),
		Device:     c.Query("device"),
		Location:   c.Query("location"),
	}
	var err error
	if from := c.Query("from"); from != "" {
		if f.From, err = time.ParseInLocation("2006-01-02", from, time.UTC); err != nil {
			return f, err
		}
	}
	if to := c.Query("to"); to != "" {
		if f.To, err = time.ParseInLocation("2006-01-02", to, time.UTC); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (f filter) matches(r *campaign.Record) bool {
	if f.CampaignID != "" && r.CampaignID != f.CampaignID {
		return false
	}
	if f.Device != "" && r.Device != f.Device {
		return false
	}
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To) {
		return false
	}
	return true
}

// apply selects the matching records and re-derives the KPI rollup from
// their sums, never from averaging per-row ratios.
func (f filter) apply(table *campaign.Table) ([]campaign.Record, campaign.OverallKPIs) {
	var selected []campaign.Record
	for i := range table.Records {
		if f.matches(&table.Records[i]) {
			selected = append(selected, table.Records[i])
		}
	}
	totals := campaign.Sum(selected)
	return selected, campaign.OverallKPIs{Totals: totals, KPIs: campaign.ComputeKPIs(totals)}
}

// noData renders the empty-state page when the pipeline has not run yet.
func (s *Server) noData(c *gin.Context) bool {
	if s.snapshot() != nil {
		return false
	}
	c.HTML(http.StatusServiceUnavailable, "nodata.html", gin.H{
		"Title": "No Data",
	})
	return true
}

func (s *Server) handleOverview(c *gin.Context) {
	if s.noData(c) {
		return
	}
	ds := s.snapshot()

	topCampaigns := ds.ByCampaign.Rows
	if len(topCampaigns) > 5 {
		topCampaigns = topCampaigns[:5]
	}
	c.HTML(http.StatusOK, "overview.html", gin.H{
		"Title":        "Overview",
		"Overall":      ds.Overall,
		"TopCampaigns": topCampaigns,
		"Records":      ds.Processed.Len(),
		"Days":         len(ds.Daily),
		"Anomalies":    len(ds.Anomalies),
		"LoadedAt":     ds.LoadedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleCampaigns(c *gin.Context) {
	s.renderSegments(c, "Campaign Performance", func(ds *Dataset) *campaign.SegmentReport {
		return ds.ByCampaign
	})
}

func (s *Server) handleDevices(c *gin.Context) {
	s.renderSegments(c, "Device Performance", func(ds *Dataset) *campaign.SegmentReport {
		return ds.ByDevice
	})
}

func (s *Server) handleLocations(c *gin.Context) {
	s.renderSegments(c, "Location Performance", func(ds *Dataset) *campaign.SegmentReport {
		return ds.ByLocation
	})
}

func (s *Server) renderSegments(c *gin.Context, title string, pick func(*Dataset) *campaign.SegmentReport) {
	if s.noData(c) {
		return
	}
	ds := s.snapshot()
	c.HTML(http.StatusOK, "segments.html", gin.H{
		"Title":  title,
		"Report": pick(ds),
	})
}

func (s *Server) handleTrends(c *gin.Context) {
	if s.noData(c) {
		return
	}
	ds := s.snapshot()
	c.HTML(http.StatusOK, "trends.html", gin.H{
		"Title":     "Daily Trends",
		"Daily":     ds.Daily,
		"Anomalies": ds.Anomalies,
	})
}

func (s *Server) handleInsights(c *gin.Context) {
	if s.noData(c) {
		return
	}
	ds := s.snapshot()
	c.HTML(http.StatusOK, "insights.html", gin.H{
		"Title":    "Insights",
		"Insights": ds.InsightsHTML,
	})
}

func (s *Server) handleExplore(c *gin.Context) {
	if s.noData(c) {
		return
	}
	ds := s.snapshot()

	f, err := filterFromQuery(c)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid date filter: %v", err)
		return
	}
	selected, rollup := f.apply(ds.Processed)

	c.HTML(http.StatusOK, "explore.html", gin.H{
		"Title":     "Explore",
		"Filter":    f,
		"Selected":  len(selected),
		"Rollup":    rollup,
		"Campaigns": distinct(ds.Processed, func(r *campaign.Record) string { return r.CampaignID }),
		"Devices":   distinct(ds.Processed, func(r *campaign.Record) string { return r.Device }),
		"Locations": distinct(ds.Processed, func(r *campaign.Record) string { return r.Location }),
	})
}

func distinct(table *campaign.Table, key func(*campaign.Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range table.Records {
		k := key(&table.Records[i])
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
