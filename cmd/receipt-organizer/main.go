package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-organizer/internal/organize"
	"github.com/zombor/receipt-organizer/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A .env file may hold GEMINI_API_KEY; its absence is fine
	_ = godotenv.Load()

	fs := ff.NewFlagSet("receipt-organizer")
	var (
		dryRun      = fs.BoolLong("dry-run", "Preview renames without executing")
		verbose     = fs.BoolLong("verbose", "Show detailed extraction for each file")
		workers     = fs.IntLong("workers", 4, "Number of parallel workers")
		dpi         = fs.IntLong("dpi", 400, "Image resolution for processing")
		yes         = fs.BoolLong("yes", "Skip confirmation prompts (auto-approve all)")
		scannerType = fs.StringLong("scanner", "ollama", "Scanner type: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("model", "qwen2.5vl:7b", "Ollama vision model to use (must support vision)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_ORGANIZER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	args := fs.GetArgs()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: exactly one receipts directory is required")
		os.Exit(1)
	}
	directory := args[0]

	// Validate configuration before any file is touched
	info, err := os.Stat(directory)
	if err != nil {
		slog.Error("Directory not found", "directory", directory)
		os.Exit(1)
	}
	if !info.IsDir() {
		slog.Error("Not a directory", "path", directory)
		os.Exit(1)
	}
	if *workers < 1 {
		slog.Error("Workers must be at least 1", "workers", *workers)
		os.Exit(1)
	}

	var (
		scanner   scanning.Scanner
		modelName string
	)
	switch *scannerType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		modelName = *geminiModel
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
		modelName = *ollamaModel
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer scanner.Close()

	mode := "LIVE"
	if *dryRun {
		mode = "DRY RUN"
	}
	fmt.Printf("Model: %s | DPI: %d | Mode: %s\n", modelName, *dpi, mode)
	fmt.Println()

	organizer := organize.New(organize.Config{
		Scanner: scanner,
		Images:  scanning.NewConverter(*dpi),
		DryRun:  *dryRun,
		Verbose: *verbose,
		Confirm: !*yes,
		Workers: *workers,
	})

	summary, err := organizer.Run(context.Background(), directory)
	if err != nil {
		slog.Error("Run aborted", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 40))
	action := "Renamed"
	if *dryRun {
		action = "Would rename"
	}
	fmt.Printf("%s: %d file(s)\n", action, summary.Processed)
	fmt.Printf("Skipped (not receipts): %d\n", summary.Skipped)
	fmt.Printf("Failed: %d\n", summary.Failed)
}
