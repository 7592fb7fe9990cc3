package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PipelineRecord is the durable per-item record of pipeline progress. One
// record per QueueItem (or standalone when driven interactively). Artifacts
// are persisted immediately after each stage completes, which is what makes
// a half-finished item resumable without re-running completed stages.
type PipelineRecord struct {
	ID     string `badgerhold:"key" json:"id"`
	ItemID string `badgerhold:"index" json:"item_id"`

	// CurrentStage indexes into StageOrder and only advances after the
	// corresponding artifact is persisted and valid.
	CurrentStage int `json:"current_stage"`

	Research  *ResearchArtifact  `json:"research,omitempty"`
	Plan      *PlanArtifact      `json:"plan,omitempty"`
	Draft     *DraftArtifact     `json:"draft,omitempty"`
	Humanized *HumanizedArtifact `json:"humanized,omitempty"`
	SEO       *SEOArtifact       `json:"seo,omitempty"`
	Meta      *MetaArtifact      `json:"meta,omitempty"`

	// Candidates holds redo output awaiting an explicit promote/discard
	// decision, keyed by stage. The committed artifact above is untouched
	// until promotion. Stored as raw JSON so each stage keeps its own shape.
	Candidates map[Stage]json.RawMessage `json:"candidates,omitempty"`

	// Approvals is set by an external reviewer before an item may progress
	// in interactive mode. The batch orchestrator does not consult it.
	Approvals map[Stage]bool `json:"approvals,omitempty"`

	WordCount        int    `json:"word_count,omitempty"`
	WordCountWarning string `json:"word_count_warning,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artifact returns the committed artifact for a stage, or nil when the stage
// has not produced one. Publish has no artifact of its own.
func (r *PipelineRecord) Artifact(stage Stage) interface{ Validate() error } {
	switch stage {
	case StageResearch:
		if r.Research == nil {
			return nil
		}
		return r.Research
	case StagePlan:
		if r.Plan == nil {
			return nil
		}
		return r.Plan
	case StageWrite:
		if r.Draft == nil {
			return nil
		}
		return r.Draft
	case StageHumanize:
		if r.Humanized == nil {
			return nil
		}
		return r.Humanized
	case StageSEOOptimize:
		if r.SEO == nil {
			return nil
		}
		return r.SEO
	case StageMeta:
		if r.Meta == nil {
			return nil
		}
		return r.Meta
	default:
		return nil
	}
}

// HasValidArtifact reports whether a stage already holds a structurally valid
// committed artifact. The orchestrator uses this to skip completed stages on
// resume instead of re-invoking the generation service.
func (r *PipelineRecord) HasValidArtifact(stage Stage) bool {
	a := r.Artifact(stage)
	if a == nil {
		return false
	}
	return a.Validate() == nil
}

// SetArtifact stores a stage's committed artifact. The caller persists the
// record afterwards; this only mutates in memory.
func (r *PipelineRecord) SetArtifact(stage Stage, artifact any) error {
	switch stage {
	case StageResearch:
		v, ok := artifact.(*ResearchArtifact)
		if !ok {
			return fmt.Errorf("expected *ResearchArtifact for stage %s", stage)
		}
		r.Research = v
	case StagePlan:
		v, ok := artifact.(*PlanArtifact)
		if !ok {
			return fmt.Errorf("expected *PlanArtifact for stage %s", stage)
		}
		r.Plan = v
	case StageWrite:
		v, ok := artifact.(*DraftArtifact)
		if !ok {
			return fmt.Errorf("expected *DraftArtifact for stage %s", stage)
		}
		r.Draft = v
	case StageHumanize:
		v, ok := artifact.(*HumanizedArtifact)
		if !ok {
			return fmt.Errorf("expected *HumanizedArtifact for stage %s", stage)
		}
		r.Humanized = v
	case StageSEOOptimize:
		v, ok := artifact.(*SEOArtifact)
		if !ok {
			return fmt.Errorf("expected *SEOArtifact for stage %s", stage)
		}
		r.SEO = v
	case StageMeta:
		v, ok := artifact.(*MetaArtifact)
		if !ok {
			return fmt.Errorf("expected *MetaArtifact for stage %s", stage)
		}
		r.Meta = v
	default:
		return fmt.Errorf("stage %s does not persist an artifact", stage)
	}
	return nil
}

// UnmarshalArtifact decodes raw JSON into the artifact type for a stage.
// Used when promoting a stored candidate back into a typed artifact.
func UnmarshalArtifact(stage Stage, data []byte) (any, error) {
	var target any
	switch stage {
	case StageResearch:
		target = &ResearchArtifact{}
	case StagePlan:
		target = &PlanArtifact{}
	case StageWrite:
		target = &DraftArtifact{}
	case StageHumanize:
		target = &HumanizedArtifact{}
	case StageSEOOptimize:
		target = &SEOArtifact{}
	case StageMeta:
		target = &MetaArtifact{}
	default:
		return nil, fmt.Errorf("stage %s does not persist an artifact", stage)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("failed to decode %s artifact: %w", stage, err)
	}
	return target, nil
}

// FinalMarkdown returns the most refined article body available, preferring
// later stages. Used by Meta and Publish.
func (r *PipelineRecord) FinalMarkdown() string {
	if r.SEO != nil && r.SEO.Markdown != "" {
		return r.SEO.Markdown
	}
	if r.Humanized != nil && r.Humanized.Markdown != "" {
		return r.Humanized.Markdown
	}
	if r.Draft != nil {
		return r.Draft.Markdown
	}
	return ""
}
