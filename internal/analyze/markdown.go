package analyze

import (
	"fmt"
	"strings"

	"adpulse/domain/campaign"
)

// RenderMarkdown lays the insight set and anomaly report out as a markdown
// document. The analyzer writes it next to the CSV outputs and the dashboard
// renders it to HTML.
func RenderMarkdown(set *campaign.InsightSet, anomalies []campaign.Anomaly) string {
	var b strings.Builder

	b.WriteString("# Campaign Insights\n")

	writeSection(&b, "Top Performers", set.TopPerformers)
	writeSection(&b, "Optimization Opportunities", set.OptimizationOpportunities)
	writeSection(&b, "Trends", set.Trends)
	writeSection(&b, "Recommendations", set.Recommendations)

	b.WriteString("\n## Anomalies\n\n")
	if len(anomalies) == 0 {
		b.WriteString("No anomalies detected.\n")
		return b.String()
	}

	b.WriteString("| Date | Metric | Value | Z-Score | Expected Range |\n")
	b.WriteString("|------|--------|-------|---------|----------------|\n")
	for _, a := range anomalies {
		fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f | %s |\n",
			a.Date.Format("2006-01-02"), a.Metric, a.Value, a.ZScore, a.ExpectedRange)
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString("\n## " + title + "\n\n")
	if len(lines) == 0 {
		b.WriteString("Nothing to report.\n")
		return
	}
	for _, line := range lines {
		b.WriteString("- " + line + "\n")
	}
}
