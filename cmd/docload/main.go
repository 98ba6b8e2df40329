package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docload/internal/config"
	"docload/internal/domain/models"
	"docload/internal/domain/services"
	"docload/internal/repository/postgres"
	"docload/internal/service/importer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	archivePath := flag.String("archive", "", "Path to the zip archive to import")
	workspaceID := flag.Int("workspace", 0, "Target workspace id")
	categoryID := flag.Int("category", 0, "Target category id")
	categoryName := flag.String("category-name", "", "Target category name")
	subCategoryID := flag.Int("subcategory", 0, "Target sub-category id (0 = none)")
	subCategoryName := flag.String("subcategory-name", "", "Target sub-category name")
	userID := flag.Int("user", 0, "Acting user id")
	parentFolderID := flag.Int("parent", 0, "Existing parent folder id to import under (0 = top level)")
	batchSize := flag.Int("batch", 0, "Files per document batch (0 = configured default)")
	settingsPath := flag.String("settings", "", "Optional YAML settings file")
	plain := flag.Bool("plain", false, "Print progress as plain lines instead of the terminal UI")
	listFolders := flag.Bool("list", false, "List live root folders for the category scope and exit")
	initSchema := flag.Bool("init-schema", false, "Create the folders/documents tables if missing and exit")
	flag.Parse()

	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()
	if *settingsPath != "" {
		if err := config.LoadFile(cfg, *settingsPath); err != nil {
			log.Fatalf("Failed to load settings file: %v", err)
		}
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set (environment or settings file)")
	}

	// Log to a file so the progress view owns the terminal
	logFile, err := config.SetupLogFile(cfg.LogDir, cfg.MaxLogFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ctrl+C cancels the run cooperatively; the open transaction rolls back
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *initSchema {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		fmt.Printf("Schema ready (prefix %q)\n", cfg.TablePrefix)
		return
	}

	repo := postgres.NewHierarchyRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})

	if !repo.Ping(ctx) {
		log.Fatal("Database is not reachable, refusing to start")
	}

	if *listFolders {
		folders, err := repo.ListRootFolders(ctx, *categoryName, *subCategoryName)
		if err != nil {
			log.Fatalf("Failed to list folders: %v", err)
		}
		if len(folders) == 0 {
			fmt.Println("No live root folders for this category scope")
			return
		}
		for _, f := range folders {
			fmt.Printf("%6d  %s (workspace %d, level %d)\n",
				f.FolderID, f.Name, f.WorkspaceID, f.HierarchyLevel)
		}
		return
	}

	req := &services.ImportRequest{
		ArchivePath:     *archivePath,
		WorkspaceID:     *workspaceID,
		CategoryID:      *categoryID,
		CategoryName:    *categoryName,
		SubCategoryName: *subCategoryName,
		UserID:          *userID,
	}
	if *subCategoryID > 0 {
		req.SubCategoryID = subCategoryID
	}
	if *parentFolderID > 0 {
		req.ParentFolderID = parentFolderID
	}

	txManager := postgres.NewTransactionManager(pool)
	pipeline := importer.New(repo, txManager, logger, cfg.BatchSize)

	progress := make(chan models.Progress, 64)
	results := make(chan *models.ImportResult, 1)

	go func() {
		results <- pipeline.Run(ctx, req, progress)
		close(progress)
	}()

	var result *models.ImportResult
	if *plain {
		result = consumePlain(progress, results)
	} else {
		result = consumeTUI(progress, results, stop)
	}

	fmt.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
}

// consumePlain drains progress snapshots as log lines on stdout.
func consumePlain(progress <-chan models.Progress, results <-chan *models.ImportResult) *models.ImportResult {
	for {
		select {
		case p, ok := <-progress:
			if !ok {
				return <-results
			}
			if p.CurrentFile != "" {
				fmt.Printf("[%3d%%] %s\n", p.Percent, p.CurrentFile)
			} else {
				fmt.Printf("[%3d%%] %s\n", p.Percent, p.Operation)
			}
		case result := <-results:
			return result
		}
	}
}

// consumeTUI runs the terminal progress view until the pipeline finishes.
// cancel is invoked when the user quits early, which rolls the run back.
func consumeTUI(progress <-chan models.Progress, results <-chan *models.ImportResult, cancel func()) *models.ImportResult {
	program := tea.NewProgram(newImportView(progress, results, cancel))
	final, err := program.Run()
	if err != nil {
		// Degrade to draining without a UI rather than abandoning the run
		fmt.Fprintf(os.Stderr, "progress view failed: %v\n", err)
		return consumePlain(progress, results)
	}
	view := final.(importView)
	if view.result != nil {
		return view.result
	}
	return <-results
}
