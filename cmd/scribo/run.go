package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ternarybob/scribo/internal/app"
	"github.com/ternarybob/scribo/internal/common"
)

// cmdRun processes the queue. By default it makes one run-to-completion
// pass; with scheduling enabled it keeps running passes on the cron
// expression until interrupted.
func cmdRun(application *app.App, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	schedule := fs.String("schedule", "", "Cron expression for recurring passes (overrides config)")
	once := fs.Bool("once", false, "Force a single pass even when scheduling is configured")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		application.Logger.Info().Msg("Interrupt received, finishing current item")
		cancel()
	}()

	cronExpr := application.Config.Schedule.Cron
	scheduled := application.Config.Schedule.Enabled
	if *schedule != "" {
		cronExpr = *schedule
		scheduled = true
	}
	if *once {
		scheduled = false
	}

	if !scheduled {
		return runPass(ctx, application)
	}

	if err := common.ValidateSchedule(cronExpr); err != nil {
		return err
	}

	application.Logger.Info().Str("cron", cronExpr).Msg("Starting scheduled runs")

	// Run one pass immediately, then on the schedule
	if err := runPass(ctx, application); err != nil && ctx.Err() == nil {
		application.Logger.Error().Err(err).Msg("Initial pass failed")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	scheduler := cron.New(cron.WithParser(parser))
	_, err := scheduler.AddFunc(cronExpr, func() {
		if err := runPass(ctx, application); err != nil && ctx.Err() == nil {
			application.Logger.Error().Err(err).Msg("Scheduled pass failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule runs: %w", err)
	}

	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()
	return nil
}

func runPass(ctx context.Context, application *app.App) error {
	result, err := application.Orchestrator.RunBatch(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Printf("Processed %d items: %d published, %d failed (%s)\n",
		result.Processed, result.Published, result.Failed, result.Duration.Round(time.Second))

	application.StorageManager.RunGC()
	return nil
}
