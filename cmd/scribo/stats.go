package main

import (
	"context"
	"fmt"

	"github.com/ternarybob/scribo/internal/app"
)

// cmdStats prints queue counts and the published article total
func cmdStats(application *app.App, args []string) error {
	ctx := context.Background()

	stats, err := application.StorageManager.QueueStorage().CountByStatus(ctx)
	if err != nil {
		return err
	}

	articles, err := application.StorageManager.ArticleStorage().Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Queue:\n")
	fmt.Printf("  queued       %d\n", stats.Queued)
	fmt.Printf("  in progress  %d\n", stats.InProgress)
	fmt.Printf("  published    %d\n", stats.Published)
	fmt.Printf("  failed       %d\n", stats.Failed)
	fmt.Printf("  total        %d\n", stats.Total)
	fmt.Printf("Articles:      %d\n", articles)
	return nil
}
