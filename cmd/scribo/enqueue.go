package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/scribo/internal/app"
	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

// topicSeed is one entry in a YAML seed file
type topicSeed struct {
	Title    string   `yaml:"title"`
	Keywords []string `yaml:"keywords"`
	Level    string   `yaml:"level"`
	Priority int      `yaml:"priority"`
}

// seedFile is the YAML shape accepted by enqueue -file
type seedFile struct {
	Items []topicSeed `yaml:"items"`
}

// cmdEnqueue adds one item from flags, or many from a YAML seed file
func cmdEnqueue(application *app.App, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	title := fs.String("title", "", "Article topic title")
	keywords := fs.String("keywords", "", "Comma-separated target keywords")
	level := fs.String("level", string(models.LevelSupporting), "Content level: pillar or supporting")
	priority := fs.Int("priority", 0, "Claim priority (higher claims sooner)")
	file := fs.String("file", "", "YAML seed file with multiple topics")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()

	if *file != "" {
		return enqueueFromFile(ctx, application, *file)
	}

	if *title == "" {
		return fmt.Errorf("either -title or -file is required")
	}

	item, err := buildItem(topicSeed{
		Title:    *title,
		Keywords: splitKeywords(*keywords),
		Level:    *level,
		Priority: *priority,
	})
	if err != nil {
		return err
	}

	if err := application.StorageManager.QueueStorage().Enqueue(ctx, item); err != nil {
		return err
	}

	fmt.Printf("Enqueued %s: %s\n", item.ID, item.Title)
	return nil
}

func enqueueFromFile(ctx context.Context, application *app.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds seedFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if len(seeds.Items) == 0 {
		return fmt.Errorf("seed file %s contains no items", path)
	}

	items := make([]*models.QueueItem, 0, len(seeds.Items))
	for i, seed := range seeds.Items {
		item, err := buildItem(seed)
		if err != nil {
			return fmt.Errorf("seed item %d: %w", i+1, err)
		}
		items = append(items, item)
	}

	enqueued, err := application.StorageManager.QueueStorage().EnqueueBatch(ctx, items)
	if err != nil {
		return err
	}

	fmt.Printf("Enqueued %d of %d items from %s\n", enqueued, len(items), path)
	return nil
}

func buildItem(seed topicSeed) (*models.QueueItem, error) {
	if strings.TrimSpace(seed.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	level := models.ContentLevel(seed.Level)
	switch level {
	case models.LevelPillar, models.LevelSupporting:
	case "":
		level = models.LevelSupporting
	default:
		return nil, fmt.Errorf("unknown level %q (use pillar or supporting)", seed.Level)
	}

	return &models.QueueItem{
		ID:             common.NewItemID(),
		Title:          strings.TrimSpace(seed.Title),
		Slug:           common.Slugify(seed.Title),
		TargetKeywords: seed.Keywords,
		Level:          level,
		Priority:       seed.Priority,
	}, nil
}

func splitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
