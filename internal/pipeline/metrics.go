package pipeline

import (
	"regexp"
	"strings"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\(([^)]+)\)`)
	headingRe      = regexp.MustCompile(`(?m)^#{1,6}\s`)
	h2Re           = regexp.MustCompile(`(?m)^##\s`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+\s`)
)

// ComputeDraftMetrics measures a drafted article against its main keyword.
// The numbers are advisory, surfaced in logs and the stats command.
func ComputeDraftMetrics(markdown string, mainKeyword string) models.DraftMetrics {
	metrics := models.DraftMetrics{
		WordCount: common.CountWords(markdown),
	}

	lower := strings.ToLower(markdown)
	if mainKeyword != "" {
		metrics.KeywordCount = strings.Count(lower, strings.ToLower(mainKeyword))
		if metrics.WordCount > 0 {
			keywordWords := len(strings.Fields(mainKeyword))
			metrics.KeywordDensity = float64(metrics.KeywordCount*keywordWords) / float64(metrics.WordCount) * 100
		}
	}

	for _, match := range markdownLinkRe.FindAllStringSubmatch(markdown, -1) {
		target := match[1]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			metrics.OutboundLinks++
		} else {
			metrics.InternalLinks++
		}
	}

	// Blockquote groups count as callouts
	inCallout := false
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			if !inCallout {
				metrics.Callouts++
				inCallout = true
			}
		} else {
			inCallout = false
		}
	}

	sentences := len(sentenceEndRe.FindAllString(markdown, -1)) + 1
	if sentences > 0 {
		metrics.AvgWordsPerSent = float64(metrics.WordCount) / float64(sentences)
	}

	metrics.SEOScore = scoreStructure(markdown, metrics)
	return metrics
}

// scoreStructure grades heading usage, link presence, and keyword placement
// on a 0-100 scale.
func scoreStructure(markdown string, metrics models.DraftMetrics) int {
	score := 0

	headings := len(headingRe.FindAllString(markdown, -1))
	h2s := len(h2Re.FindAllString(markdown, -1))

	if headings > 0 {
		score += 20
	}
	if h2s >= 3 {
		score += 20
	}
	if metrics.OutboundLinks > 0 {
		score += 15
	}
	if metrics.InternalLinks > 0 {
		score += 15
	}
	if metrics.KeywordDensity >= 0.5 && metrics.KeywordDensity <= 3.0 {
		score += 20
	} else if metrics.KeywordCount > 0 {
		score += 10
	}
	if metrics.AvgWordsPerSent > 0 && metrics.AvgWordsPerSent <= 25 {
		score += 10
	}

	return score
}
