package pipeline

import (
	"strings"
	"testing"
)

func TestComputeDraftMetrics(t *testing.T) {
	markdown := `# Night Differential Pay Guide

Night differential pay is extra compensation. Night differential pay applies to night work.

## Rules

See the [DOL fact sheet](https://www.dol.gov/sheet) and our [overtime guide](/overtime-guide).

> Key takeaway: night differential pay rates vary by employer.

## FAQ

Is night differential pay taxable? Yes.`

	metrics := ComputeDraftMetrics(markdown, "night differential pay")

	if metrics.KeywordCount != 5 {
		t.Errorf("expected 5 keyword occurrences, got %d", metrics.KeywordCount)
	}
	if metrics.OutboundLinks != 1 {
		t.Errorf("expected 1 outbound link, got %d", metrics.OutboundLinks)
	}
	if metrics.InternalLinks != 1 {
		t.Errorf("expected 1 internal link, got %d", metrics.InternalLinks)
	}
	if metrics.Callouts != 1 {
		t.Errorf("expected 1 callout, got %d", metrics.Callouts)
	}
	if metrics.WordCount == 0 {
		t.Error("word count should be non-zero")
	}
	if metrics.SEOScore <= 0 || metrics.SEOScore > 100 {
		t.Errorf("seo score out of range: %d", metrics.SEOScore)
	}
}

func TestComputeDraftMetricsNoKeyword(t *testing.T) {
	metrics := ComputeDraftMetrics("# Title\n\nBody text here.", "")
	if metrics.KeywordCount != 0 || metrics.KeywordDensity != 0 {
		t.Errorf("expected zero keyword metrics, got %+v", metrics)
	}
}

func TestCalloutGroupsCountOnce(t *testing.T) {
	markdown := strings.Join([]string{
		"> line one of callout",
		"> line two of callout",
		"",
		"regular text",
		"",
		"> second callout",
	}, "\n")

	metrics := ComputeDraftMetrics(markdown, "")
	if metrics.Callouts != 2 {
		t.Errorf("expected 2 callout groups, got %d", metrics.Callouts)
	}
}
