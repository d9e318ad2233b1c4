package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adpulse/domain/campaign"
)

func (s *Server) apiNoData(c *gin.Context) bool {
	if s.snapshot() != nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "no analysis data loaded - run the pipeline first",
	})
	return true
}

func (s *Server) apiSummary(c *gin.Context) {
	if s.apiNoData(c) {
		return
	}
	ds := s.snapshot()
	c.JSON(http.StatusOK, gin.H{
		"records":   ds.Processed.Len(),
		"days":      len(ds.Daily),
		"anomalies": len(ds.Anomalies),
		"totals":    ds.Overall.Totals,
		"kpis":      ds.Overall.KPIs,
		"loaded_at": ds.LoadedAt,
	})
}

func (s *Server) apiCampaigns(c *gin.Context) {
	s.jsonSegments(c, func(ds *Dataset) *campaign.SegmentReport { return ds.ByCampaign })
}

func (s *Server) apiDevices(c *gin.Context) {
	s.jsonSegments(c, func(ds *Dataset) *campaign.SegmentReport { return ds.ByDevice })
}

func (s *Server) apiLocations(c *gin.Context) {
	s.jsonSegments(c, func(ds *Dataset) *campaign.SegmentReport { return ds.ByLocation })
}

func (s *Server) jsonSegments(c *gin.Context, pick func(*Dataset) *campaign.SegmentReport) {
	if s.apiNoData(c) {
		return
	}
	c.JSON(http.StatusOK, pick(s.snapshot()))
}

func (s *Server) apiTrends(c *gin.Context) {
	if s.apiNoData(c) {
		return
	}
	c.JSON(http.StatusOK, s.snapshot().Daily)
}

func (s *Server) apiAnomalies(c *gin.Context) {
	if s.apiNoData(c) {
		return
	}
	c.JSON(http.StatusOK, s.snapshot().Anomalies)
}

func (s *Server) apiFilter(c *gin.Context) {
	if s.apiNoData(c) {
		return
	}
	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date filter: " + err.Error()})
		return
	}
	selected, rollup := f.apply(s.snapshot().Processed)
	c.JSON(http.StatusOK, gin.H{
		"matched": len(selected),
		"totals":  rollup.Totals,
		"kpis":    rollup.KPIs,
	})
}

func (s *Server) apiReload(c *gin.Context) {
	if err := s.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
