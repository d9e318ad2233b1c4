package store

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"adpulse/domain/campaign"
	"adpulse/internal/errors"
)

// WriteWorkbook exports every analysis artifact into one XLSX workbook, a
// sheet per report, for hand-off outside the pipeline.
func WriteWorkbook(path string, overall campaign.OverallKPIs,
	byCampaign, byDevice, byLocation *campaign.SegmentReport,
	daily []campaign.DailyRow) error {

	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverviewSheet(f, "Overview", overall); err != nil {
		return errors.StorageError("write overview sheet", err)
	}
	for _, s := range []struct {
		name   string
		report *campaign.SegmentReport
	}{
		{"Campaigns", byCampaign},
		{"Devices", byDevice},
		{"Locations", byLocation},
	} {
		if err := writeSegmentSheet(f, s.name, s.report); err != nil {
			return errors.StorageError(fmt.Sprintf("write %s sheet", s.name), err)
		}
	}
	if err := writeTrendsSheet(f, "Daily Trends", daily); err != nil {
		return errors.StorageError("write trends sheet", err)
	}

	// the default Sheet1 only existed to seed the workbook
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.StorageError("drop default sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.StorageError(fmt.Sprintf("save %s", path), err)
	}
	return nil
}

func writeOverviewSheet(f *excelize.File, sheet string, overall campaign.OverallKPIs) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"metric", "value"},
		{"total_impressions", overall.Impressions},
		{"total_clicks", overall.Clicks},
		{"total_conversions", overall.Conversions},
		{"total_cost", overall.Cost},
		{"total_revenue", overall.Revenue},
		{"ctr", overall.KPIs.CTR},
		{"cpc", overall.KPIs.CPC},
		{"cpa", overall.KPIs.CPA},
		{"roas", overall.KPIs.ROAS},
		{"conversion_rate", overall.KPIs.ConversionRate},
	}
	return writeRows(f, sheet, rows)
}

func writeSegmentSheet(f *excelize.File, sheet string, report *campaign.SegmentReport) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(report.KeyColumns)+10)
	for _, k := range report.KeyColumns {
		header = append(header, k)
	}
	header = append(header,
		"impressions", "clicks", "conversions", "cost", "revenue",
		"ctr", "cpc", "cpa", "roas", "conversion_rate")

	rows := [][]interface{}{header}
	for _, row := range report.Rows {
		cells := make([]interface{}, 0, len(header))
		for _, k := range row.Keys {
			cells = append(cells, k)
		}
		cells = append(cells,
			row.Impressions, row.Clicks, row.Conversions, row.Cost, row.Revenue,
			row.KPIs.CTR, row.KPIs.CPC, row.KPIs.CPA, row.KPIs.ROAS, row.KPIs.ConversionRate)
		rows = append(rows, cells)
	}
	return writeRows(f, sheet, rows)
}

func writeTrendsSheet(f *excelize.File, sheet string, daily []campaign.DailyRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{{
		"date", "impressions", "clicks", "conversions", "cost", "revenue",
		"ctr", "cpc", "roas", "revenue_ma7", "ctr_ma7", "roas_ma7",
	}}
	for _, row := range daily {
		rows = append(rows, []interface{}{
			row.Date.Format(dateLayout),
			row.Impressions, row.Clicks, row.Conversions, row.Cost, row.Revenue,
			row.CTR, row.CPC, row.ROAS,
			row.RevenueMA7, row.CTRMA7, row.ROASMA7,
		})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
