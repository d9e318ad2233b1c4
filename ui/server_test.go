package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"adpulse/domain/campaign"
	"adpulse/internal"
	"adpulse/internal/config"
	"adpulse/internal/store"
)

func writeFixtures(t *testing.T, data config.DataConfig) {
	t.Helper()

	rec := func(d int, id, device, location string, impr, clicks, conv, cost, rev float64) campaign.Record {
		date := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		r := campaign.Record{
			Date: date, RawDate: date.Format("2006-01-02"),
			CampaignID: id, CampaignName: "Campaign " + id, CampaignType: campaign.TypeSearch,
			Keyword: "shoes", Device: device, Location: location,
			Impressions: impr, Clicks: clicks, Conversions: conv, Cost: cost, Revenue: rev,
		}
		r.RecomputeKPIs()
		return r
	}
	table := &campaign.Table{Enriched: true, Records: []campaign.Record{
		rec(1, "CAMP_001", "Mobile", "New York", 600, 60, 6, 120, 340),
		rec(2, "CAMP_002", "Desktop", "Chicago", 400, 40, 4, 80, 226.6),
	}}
	if err := store.WriteTable(data.Path(data.ProcessedFile), table); err != nil {
		t.Fatal(err)
	}

	report := &campaign.SegmentReport{
		KeyColumns: []string{"campaign_id", "campaign_name", "campaign_type"},
		Rows: []campaign.SegmentRow{{
			Keys:   []string{"CAMP_001", "Campaign CAMP_001", campaign.TypeSearch},
			Totals: campaign.Totals{Impressions: 600, Clicks: 60, Conversions: 6, Cost: 120, Revenue: 340},
			KPIs:   campaign.KPISet{CTR: 10, CPC: 2, CPA: 20, ROAS: 2.83, ConversionRate: 10},
		}},
	}
	if err := store.WriteSegmentReport(data.Path(data.CampaignPerfFile), report); err != nil {
		t.Fatal(err)
	}
	single := &campaign.SegmentReport{KeyColumns: []string{"device"}, Rows: report.Rows[:1]}
	single.Rows = []campaign.SegmentRow{{
		Keys:   []string{"Mobile"},
		Totals: report.Rows[0].Totals,
		KPIs:   report.Rows[0].KPIs,
	}}
	if err := store.WriteSegmentReport(data.Path(data.DevicePerfFile), single); err != nil {
		t.Fatal(err)
	}
	location := &campaign.SegmentReport{KeyColumns: []string{"location"}, Rows: []campaign.SegmentRow{{
		Keys:   []string{"New York"},
		Totals: report.Rows[0].Totals,
		KPIs:   report.Rows[0].KPIs,
	}}}
	if err := store.WriteSegmentReport(data.Path(data.LocationPerfFile), location); err != nil {
		t.Fatal(err)
	}

	daily := []campaign.DailyRow{{
		Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Totals: campaign.Totals{Impressions: 600, Clicks: 60, Conversions: 6, Cost: 120, Revenue: 340},
		CTR:    10, CPC: 2, ROAS: 2.83,
		RevenueMA7: 340, CTRMA7: 10, ROASMA7: 2.83,
	}}
	if err := store.WriteDailyTrends(data.Path(data.DailyTrendsFile), daily); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteAnomalies(data.Path(data.AnomaliesFile), nil); err != nil {
		t.Fatal(err)
	}
	md := "# Campaign Insights\n\n## Top Performers\n\n- Campaign CAMP_001 leads on ROAS\n"
	if err := os.WriteFile(data.Path(data.InsightsFile), []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Data.Dir = t.TempDir()
	cfg.Server.GinMode = "test"
	writeFixtures(t, cfg.Data)

	s := NewServer(cfg, internal.NewLogger(internal.LogLevelError))
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func TestServer_Pages(t *testing.T) {
	s := testServer(t)

	for _, path := range []string{
		"/", "/campaigns", "/devices", "/locations", "/trends", "/insights", "/explore",
	} {
		if w := get(t, s, path); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200 (body %s)", path, w.Code, w.Body.String())
		}
	}
}

func TestServer_APISummary(t *testing.T) {
	s := testServer(t)

	w := get(t, s, "/api/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Records int `json:"records"`
		KPIs    struct {
			CTR  float64
			ROAS float64
		} `json:"kpis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Records != 2 {
		t.Errorf("records = %d, want 2", body.Records)
	}
	if body.KPIs.CTR != 10 {
		t.Errorf("CTR = %v, want 10", body.KPIs.CTR)
	}
}

func TestServer_APIFilterRecomputesKPIs(t *testing.T) {
	s := testServer(t)

	w := get(t, s, "/api/filter?device=Mobile")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	var body struct {
		Matched int `json:"matched"`
		KPIs    struct {
			ROAS float64
			CPC  float64
		} `json:"kpis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Matched != 1 {
		t.Fatalf("matched = %d, want 1", body.Matched)
	}
	// the Mobile slice alone: 340 revenue on 120 cost
	if diff := body.KPIs.ROAS - 340.0/120.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ROAS = %v, want %v", body.KPIs.ROAS, 340.0/120.0)
	}
	if body.KPIs.CPC != 2 {
		t.Errorf("CPC = %v, want 2", body.KPIs.CPC)
	}
}

func TestServer_APIFilterAllPassMatchesSummary(t *testing.T) {
	s := testServer(t)

	type kpis struct {
		CTR, CPC, CPA, ROAS, ConversionRate float64
	}

	w := get(t, s, "/api/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d", w.Code)
	}
	var summary struct {
		Records int  `json:"records"`
		KPIs    kpis `json:"kpis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}

	w = get(t, s, "/api/filter")
	if w.Code != http.StatusOK {
		t.Fatalf("filter status = %d (body %s)", w.Code, w.Body.String())
	}
	var filtered struct {
		Matched int  `json:"matched"`
		KPIs    kpis `json:"kpis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode filter: %v", err)
	}

	if filtered.Matched != summary.Records {
		t.Fatalf("matched = %d, want %d", filtered.Matched, summary.Records)
	}
	if filtered.KPIs != summary.KPIs {
		t.Errorf("filter KPIs = %+v, want %+v", filtered.KPIs, summary.KPIs)
	}
}

func TestServer_APIFilterRejectsBadDate(t *testing.T) {
	s := testServer(t)

	if w := get(t, s, "/api/filter?from=01-02-2024"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestServer_NoDataState(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Data.Dir = t.TempDir() // empty: no pipeline outputs
	cfg.Server.GinMode = "test"

	s := NewServer(cfg, internal.NewLogger(internal.LogLevelError))
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if w := get(t, s, "/"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET / = %d, want 503", w.Code)
	}
	if w := get(t, s, "/api/summary"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/summary = %d, want 503", w.Code)
	}
}
