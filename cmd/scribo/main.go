package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/app"
	"github.com/ternarybob/scribo/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: scribo [flags] <command> [command flags]

Commands:
  run      Process queued items through the pipeline until the queue drains
  enqueue  Add content items to the work queue
  stats    Show queue and published article counts
  requeue  Return failed items to the queue
  redo     Re-run one stage for an item, producing a review candidate
  promote  Commit a redo candidate as the stage's artifact
  discard  Drop a redo candidate
  approve  Record a reviewer decision for a stage artifact

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Scribo version %s\n", common.LoadVersionFromFile())
		os.Exit(0)
	}

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("scribo.toml"); err == nil {
			configFiles = append(configFiles, "scribo.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.InstallCrashHandler("")

	defer func() {
		if r := recover(); r != nil {
			crashPath := common.WriteCrashFile(r, string(debug.Stack()))
			logger.Fatal().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("crash_file", crashPath).
				Msg("Unrecovered panic")
			os.Exit(1)
		}
	}()

	common.PrintBanner(common.LoadVersionFromFile())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	args := flag.Args()[1:]
	switch command {
	case "run":
		err = cmdRun(application, args)
	case "enqueue":
		err = cmdEnqueue(application, args)
	case "stats":
		err = cmdStats(application, args)
	case "requeue":
		err = cmdRequeue(application, args)
	case "redo":
		err = cmdRedo(application, args)
	case "promote":
		err = cmdPromote(application, args)
	case "discard":
		err = cmdDiscard(application, args)
	case "approve":
		err = cmdApprove(application, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}
