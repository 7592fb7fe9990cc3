package pipeline

import (
	"testing"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

func testPipelineConfig() *common.PipelineConfig {
	cfg := common.NewDefaultConfig()
	return &cfg.Pipeline
}

func TestEvaluateWordCountSupportingBand(t *testing.T) {
	cfg := testPipelineConfig() // supporting band 1800-2200, tolerance 500

	tests := []struct {
		name     string
		words    int
		severity WordCountSeverity
	}{
		{"inside band", 2000, WordCountOK},
		{"at minimum", 1800, WordCountOK},
		{"at maximum", 2200, WordCountOK},
		{"below minimum", 900, WordCountWarn},
		{"above maximum within tolerance", 2600, WordCountWarn},
		{"at hard ceiling", 2700, WordCountWarn},
		{"past hard ceiling", 2800, WordCountEscalated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := EvaluateWordCount(cfg, models.LevelSupporting, tt.words)
			if check.Severity != tt.severity {
				t.Errorf("words=%d: severity %d, want %d (warning: %q)", tt.words, check.Severity, tt.severity, check.Warning)
			}
			if tt.severity == WordCountOK && check.Warning != "" {
				t.Errorf("in-band count produced warning: %q", check.Warning)
			}
			if tt.severity != WordCountOK && check.Warning == "" {
				t.Errorf("out-of-band count produced no warning")
			}
		})
	}
}

func TestEvaluateWordCountPillarBand(t *testing.T) {
	cfg := testPipelineConfig() // pillar band 3000-4000

	if check := EvaluateWordCount(cfg, models.LevelPillar, 3500); check.Severity != WordCountOK {
		t.Errorf("3500 words should be inside pillar band, got warning %q", check.Warning)
	}
	if check := EvaluateWordCount(cfg, models.LevelPillar, 2000); check.Severity != WordCountWarn {
		t.Errorf("2000 words should warn for pillar, got severity %d", check.Severity)
	}
	if check := EvaluateWordCount(cfg, models.LevelPillar, 4600); check.Severity != WordCountEscalated {
		t.Errorf("4600 words should escalate for pillar, got severity %d", check.Severity)
	}
}
