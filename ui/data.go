package ui

import (
	"html/template"
	"os"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"

	"adpulse/domain/campaign"
	"adpulse/internal/config"
	"adpulse/internal/store"
)

// Dataset is the dashboard's in-memory snapshot of every analysis artifact.
// It is loaded as a unit so a reload never serves a half-updated view.
type Dataset struct {
	Processed  *campaign.Table
	Overall    campaign.OverallKPIs
	ByCampaign *campaign.SegmentReport
	ByDevice   *campaign.SegmentReport
	ByLocation *campaign.SegmentReport
	Daily      []campaign.DailyRow
	Anomalies  []campaign.Anomaly

	InsightsHTML template.HTML
	LoadedAt     time.Time
}

// loadDataset reads the interchange files concurrently. Any missing file
// fails the whole load with the stage that should have produced it.
func loadDataset(data config.DataConfig) (*Dataset, error) {
	ds := &Dataset{}
	var g errgroup.Group

	g.Go(func() (err error) {
		ds.Processed, err = store.ReadTable(data.Path(data.ProcessedFile), "process")
		return err
	})
	g.Go(func() (err error) {
		ds.ByCampaign, err = store.ReadSegmentReport(data.Path(data.CampaignPerfFile), 3, "analyze")
		return err
	})
	g.Go(func() (err error) {
		ds.ByDevice, err = store.ReadSegmentReport(data.Path(data.DevicePerfFile), 1, "analyze")
		return err
	})
	g.Go(func() (err error) {
		ds.ByLocation, err = store.ReadSegmentReport(data.Path(data.LocationPerfFile), 1, "analyze")
		return err
	})
	g.Go(func() (err error) {
		ds.Daily, err = store.ReadDailyTrends(data.Path(data.DailyTrendsFile), "analyze")
		return err
	})
	g.Go(func() (err error) {
		ds.Anomalies, err = store.ReadAnomalies(data.Path(data.AnomaliesFile), "analyze")
		return err
	})
	g.Go(func() error {
		md, err := os.ReadFile(data.Path(data.InsightsFile))
		if err != nil {
			if os.IsNotExist(err) {
				// insights are optional for the dashboard; the page shows a hint
				return nil
			}
			return err
		}
		ds.InsightsHTML = renderMarkdown(md)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := campaign.Sum(ds.Processed.Records)
	ds.Overall = campaign.OverallKPIs{Totals: totals, KPIs: campaign.ComputeKPIs(totals)}
	ds.LoadedAt = time.Now()
	return ds, nil
}

func renderMarkdown(src []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML(src, p, renderer))
}
