package pipeline

import (
	"fmt"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

// WordCountSeverity grades how far a draft sits outside its band
type WordCountSeverity int

const (
	WordCountOK WordCountSeverity = iota
	// WordCountWarn covers drafts outside the band but within tolerance
	WordCountWarn
	// WordCountEscalated covers drafts past the hard ceiling
	WordCountEscalated
)

// WordCountCheck is the outcome of band evaluation for one draft
type WordCountCheck struct {
	Words    int
	Min      int
	Max      int
	Severity WordCountSeverity
	Warning  string
}

// EvaluateWordCount grades a word count against the band for the item's
// content level. The count never blocks the pipeline; governance is
// warnings only.
func EvaluateWordCount(config *common.PipelineConfig, level models.ContentLevel, words int) WordCountCheck {
	min, max := config.Band(level == models.LevelPillar)
	ceiling := max + config.OverflowTolerance

	check := WordCountCheck{Words: words, Min: min, Max: max}

	switch {
	case words > ceiling:
		check.Severity = WordCountEscalated
		check.Warning = fmt.Sprintf("draft is %d words, more than %d past the %d-word maximum", words, config.OverflowTolerance, max)
	case words > max:
		check.Severity = WordCountWarn
		check.Warning = fmt.Sprintf("draft is %d words, above the %d-word maximum", words, max)
	case words < min:
		check.Severity = WordCountWarn
		check.Warning = fmt.Sprintf("draft is %d words, below the %d-word minimum", words, min)
	default:
		check.Severity = WordCountOK
	}

	return check
}
