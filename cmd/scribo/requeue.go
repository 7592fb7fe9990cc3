package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ternarybob/scribo/internal/app"
	"github.com/ternarybob/scribo/internal/models"
)

// cmdRequeue returns failed items to the queue, by ID or all at once
func cmdRequeue(application *app.App, args []string) error {
	fs := flag.NewFlagSet("requeue", flag.ExitOnError)
	item := fs.String("item", "", "Failed item ID to requeue")
	all := fs.Bool("all", false, "Requeue every failed item")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	queue := application.StorageManager.QueueStorage()

	if *item != "" {
		if err := queue.Requeue(ctx, *item); err != nil {
			return err
		}
		fmt.Printf("Requeued %s\n", *item)
		return nil
	}

	if !*all {
		return fmt.Errorf("either -item or -all is required")
	}

	failed, err := queue.ListItems(ctx, models.StatusFailed, 0)
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		fmt.Println("No failed items")
		return nil
	}

	requeued := 0
	for _, f := range failed {
		if err := queue.Requeue(ctx, f.ID); err != nil {
			fmt.Printf("Skipped %s: %v\n", f.ID, err)
			continue
		}
		requeued++
	}

	fmt.Printf("Requeued %d of %d failed items\n", requeued, len(failed))
	return nil
}
