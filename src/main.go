package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"discmerge/src/features/config"
	"discmerge/src/features/history"
	"discmerge/src/features/hosting"
	"discmerge/src/features/jobs"
	"discmerge/src/features/logging"
	"discmerge/src/features/merging"
	"discmerge/src/features/metrics"
	"discmerge/src/features/scanning"
	"discmerge/src/features/staging"
	"discmerge/src/infra/database"
	"discmerge/src/infra/notify"
	"discmerge/src/infra/watcher"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	serve := flag.Bool("serve", false, "run as a long-lived service with the HTTP API")
	flag.Parse()

	// Load configuration
	cfgManager, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Preconditions fail before anything is scanned or touched.
	if err := checkPreconditions(cfgManager.Get()); err != nil {
		log.Fatalf("precondition failed: %v", err)
	}

	// The prompt removal mode asks once up front; a service has no operator
	// attached, so it degrades to keeping originals.
	if cfgManager.Get().Removal.Mode == "prompt" {
		if *serve {
			slog.Warn("Removal mode 'prompt' is not available in service mode, originals will be kept")
			updateRemovalMode(cfgManager, "never")
		} else if err := resolveRemovalPrompt(cfgManager); err != nil {
			log.Fatalf("%v", err)
		}
	}

	// Create the merge history store
	historyStore, err := database.NewSqliteHistory(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to create history store: %v", err)
	}
	defer historyStore.Close()
	historyService := history.NewService(historyStore)

	// Create the job service
	jobService := jobs.NewService(&cfgManager.Get().Jobs)

	// Create the Telegram notifier if enabled
	var notifier merging.Notifier
	if cfgManager.Get().Telegram.Enabled {
		telegramNotifier, err := notify.NewTelegramNotifier(cfgManager)
		if err != nil {
			slog.Error("Failed to initialize Telegram notifier", "error", err)
		} else {
			notifier = telegramNotifier
		}
	}

	// Create the merging service
	scanner := scanning.NewScanner(cfgManager)
	stagingManager := staging.NewManager()
	invoker := merging.NewInvoker(cfgManager.Get().Merge.Interpreter, cfgManager.Get().Merge.Tool)
	recorder := metrics.NewRecorder()
	mergingService := merging.NewService(cfgManager, scanner, stagingManager, invoker,
		historyService, recorder, jobService, notifier)

	batchTask := merging.NewBatchMergeTask(mergingService)
	jobService.RegisterHandler("merge_batch", jobs.NewBaseTaskHandler(batchTask))

	if !*serve {
		runOnce(cfgManager, mergingService)
		return
	}

	// Start the filesystem watcher if enabled
	if cfgManager.Get().Watcher.Enabled {
		w, err := watcher.NewWatcher(func(root string) {
			if _, err := mergingService.StartBatch(context.Background(), root); err != nil {
				slog.Error("Watcher: failed to start batch merge", "error", err)
			}
		})
		if err != nil {
			slog.Error("Failed to create file watcher", "error", err)
		} else if err := w.Start(context.Background(), cfgManager.Get().RootPath); err != nil {
			slog.Error("Failed to start file watcher", "error", err)
		} else {
			defer w.Stop()
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, scanner, mergingService, jobService, historyService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}

// runOnce processes the whole root a single time and exits zero regardless
// of per-unit outcomes; only preconditions (checked earlier) or a failed
// scan abort with a non-zero status.
func runOnce(cfgManager *config.Manager, mergingService *merging.Service) {
	root := cfgManager.Get().RootPath
	slog.Info("Starting batch merge", "root", root)

	stats, err := mergingService.RunBatch(context.Background(), root, "", slog.Default(), nil)
	if err != nil {
		log.Fatalf("batch merge aborted: %v", err)
	}
	slog.Info("Batch merge finished",
		"merged", stats.Merged,
		"rolled_back", stats.RolledBack,
		"skipped", stats.Skipped,
		"no_op", stats.NoOp,
		"discarded", stats.Discarded,
		"duration", stats.Duration.Round(1e6).String(),
	)
}

// checkPreconditions verifies the scan root and the merge tool are usable.
func checkPreconditions(cfg *config.Config) error {
	info, err := os.Stat(cfg.RootPath)
	if err != nil {
		return fmt.Errorf("root directory %s is not accessible: %w", cfg.RootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %s is not a directory", cfg.RootPath)
	}

	if _, err := os.Stat(cfg.Merge.Tool); err != nil {
		return fmt.Errorf("merge tool %s not found: %w", cfg.Merge.Tool, err)
	}
	if cfg.Merge.Interpreter != "" {
		if _, err := exec.LookPath(cfg.Merge.Interpreter); err != nil {
			return fmt.Errorf("interpreter %s not found in PATH: %w", cfg.Merge.Interpreter, err)
		}
	}
	return nil
}

// resolveRemovalPrompt asks the operator once whether originals should be
// deleted after a successful merge.
func resolveRemovalPrompt(cfgManager *config.Manager) error {
	fmt.Println("Delete the original multi-track files after a successful merge?")
	fmt.Println("  y  DELETE originals once a unit has merged successfully")
	fmt.Println("  n  KEEP originals in the backup directory")
	fmt.Println("  q  QUIT without processing anything")
	fmt.Print("Proceed? [y/n/q]: ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y":
		slog.Info("Originals will be deleted after successful merges")
		updateRemovalMode(cfgManager, "always")
	case "n":
		slog.Info("Originals will be kept in the backup directory")
		updateRemovalMode(cfgManager, "never")
	case "q":
		return fmt.Errorf("aborted by user")
	default:
		return fmt.Errorf("unknown response, run again and select a valid option")
	}
	return nil
}

func updateRemovalMode(cfgManager *config.Manager, mode string) {
	cfg := *cfgManager.Get()
	cfg.Removal.Mode = mode
	cfgManager.Update(&cfg)
}
