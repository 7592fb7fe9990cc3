package models

import "fmt"

// Stage identifies one phase of the content production pipeline.
type Stage string

const (
	StageResearch    Stage = "research"
	StagePlan        Stage = "plan"
	StageWrite       Stage = "write"
	StageHumanize    Stage = "humanize"
	StageSEOOptimize Stage = "seo_optimize"
	StageMeta        Stage = "meta"
	StagePublish     Stage = "publish"
)

// StageOrder is the fixed execution order. The orchestrator drives every item
// through this sequence; CurrentStage on a PipelineRecord indexes into it.
var StageOrder = []Stage{
	StageResearch,
	StagePlan,
	StageWrite,
	StageHumanize,
	StageSEOOptimize,
	StageMeta,
	StagePublish,
}

// StageIndex returns the position of a stage in StageOrder, or -1 if unknown.
func StageIndex(stage Stage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// InProgressStatus maps a stage to the queue status an item carries while
// that stage is executing.
func (s Stage) InProgressStatus() ItemStatus {
	switch s {
	case StageResearch:
		return StatusResearching
	case StagePlan:
		return StatusPlanning
	case StageWrite:
		return StatusWriting
	case StageHumanize:
		return StatusHumanizing
	case StageSEOOptimize:
		return StatusSEO
	case StageMeta:
		return StatusMeta
	case StagePublish:
		return StatusPublishing
	default:
		return StatusQueued
	}
}

// ParseStage validates a stage name from external input (CLI, redo requests).
// "seo" is accepted as shorthand for seo_optimize.
func ParseStage(name string) (Stage, error) {
	if name == "seo" {
		return StageSEOOptimize, nil
	}
	stage := Stage(name)
	if StageIndex(stage) < 0 {
		return "", fmt.Errorf("unknown stage: %s", name)
	}
	return stage, nil
}
