package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ternarybob/scribo/internal/app"
	"github.com/ternarybob/scribo/internal/models"
)

// cmdRedo re-runs a completed stage for an item, storing the output as a
// candidate that must be promoted before it replaces the committed artifact.
func cmdRedo(application *app.App, args []string) error {
	itemID, stage, err := parseRedoArgs("redo", args)
	if err != nil {
		return err
	}

	if err := application.Orchestrator.RedoStage(context.Background(), itemID, stage); err != nil {
		return err
	}

	fmt.Printf("Candidate %s artifact stored for %s; promote or discard to finish\n", stage, itemID)
	return nil
}

// cmdPromote replaces the committed artifact with the stored candidate
func cmdPromote(application *app.App, args []string) error {
	itemID, stage, err := parseRedoArgs("promote", args)
	if err != nil {
		return err
	}

	if err := application.Orchestrator.PromoteCandidate(context.Background(), itemID, stage); err != nil {
		return err
	}

	fmt.Printf("Promoted candidate %s artifact for %s\n", stage, itemID)
	return nil
}

// cmdDiscard drops the stored candidate, leaving the committed artifact as-is
func cmdDiscard(application *app.App, args []string) error {
	itemID, stage, err := parseRedoArgs("discard", args)
	if err != nil {
		return err
	}

	if err := application.Orchestrator.DiscardCandidate(context.Background(), itemID, stage); err != nil {
		return err
	}

	fmt.Printf("Discarded candidate %s artifact for %s\n", stage, itemID)
	return nil
}

// cmdApprove records a reviewer decision for a completed stage
func cmdApprove(application *app.App, args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	item := fs.String("item", "", "Item ID")
	stageName := fs.String("stage", "", "Stage name (research, plan, write, humanize, seo, meta)")
	reject := fs.Bool("reject", false, "Record a rejection instead of an approval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *item == "" || *stageName == "" {
		return fmt.Errorf("-item and -stage are required")
	}

	stage, err := models.ParseStage(*stageName)
	if err != nil {
		return err
	}

	approved := !*reject
	if err := application.StorageManager.PipelineStorage().SetApproval(context.Background(), *item, stage, approved); err != nil {
		return err
	}

	if approved {
		fmt.Printf("Approved %s artifact for %s\n", stage, *item)
	} else {
		fmt.Printf("Rejected %s artifact for %s\n", stage, *item)
	}
	return nil
}

func parseRedoArgs(name string, args []string) (string, models.Stage, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	item := fs.String("item", "", "Item ID")
	stageName := fs.String("stage", "", "Stage name (research, plan, write, humanize, seo, meta)")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if *item == "" {
		return "", "", fmt.Errorf("-item is required")
	}
	if *stageName == "" {
		return "", "", fmt.Errorf("-stage is required")
	}

	stage, err := models.ParseStage(*stageName)
	if err != nil {
		return "", "", err
	}
	return *item, stage, nil
}
