package organize

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/receipt-organizer/internal/receipt"
	"github.com/zombor/receipt-organizer/internal/scanning"
)

// ImageSource renders a file on disk to PNG bytes for the vision model
type ImageSource interface {
	ToImage(path string) ([]byte, error)
}

// Outcome is the per-file result of a run. It carries at most one of
// {FailReason, SkipReason, NewName}; each discovered file ends in exactly one.
type Outcome struct {
	Path       string
	Data       *scanning.ReceiptData
	NewName    string // set only when a rename was decided (or would be, in dry-run)
	FailReason string
	SkipReason string // "not a medical receipt" or "skipped by user"
}

// Summary aggregates the per-file outcomes of a whole run
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Config configures an Organizer
type Config struct {
	Scanner scanning.Scanner
	Images  ImageSource
	DryRun  bool
	Verbose bool
	Confirm bool
	Workers int
	Out     io.Writer // defaults to os.Stdout
	In      io.Reader // confirmation input, defaults to os.Stdin
}

// Organizer runs the per-file pipeline across a bounded worker pool:
// render image, extract, classify, build name, resolve conflict, optionally
// confirm, rename. Image rendering and extraction run in parallel; everything
// that touches the directory or the console is serialized behind one mutex.
type Organizer struct {
	scanner scanning.Scanner
	images  ImageSource
	renamer receipt.Renamer

	dryRun  bool
	verbose bool
	confirm bool
	workers int

	// mu guards the completion counter, the console, and the
	// resolve/confirm/rename critical section as a single domain. Conflict
	// resolution is a check-then-act probe against the directory, so it must
	// not be separated from the rename it feeds.
	mu    sync.Mutex
	done  int
	total int
	out   io.Writer
	input *bufio.Reader
}

// New creates an Organizer from cfg
func New(cfg Config) *Organizer {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Organizer{
		scanner: cfg.Scanner,
		images:  cfg.Images,
		dryRun:  cfg.DryRun,
		verbose: cfg.Verbose,
		confirm: cfg.Confirm,
		workers: cfg.Workers,
		out:     cfg.Out,
		input:   bufio.NewReader(cfg.In),
	}
}

// Run processes every supported file under dir and returns the aggregate
// counts. It aborts before touching any file when the scanner is unavailable.
func (o *Organizer) Run(ctx context.Context, dir string) (Summary, error) {
	if err := o.scanner.CheckAvailable(ctx); err != nil {
		return Summary{}, fmt.Errorf("scanner unavailable: %w", err)
	}

	files, err := Discover(dir)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		fmt.Fprintln(o.out, "No supported files found.")
		return Summary{}, nil
	}

	workers := o.workers
	if o.confirm {
		// A single operator input stream cannot serve concurrent prompts
		workers = 1
	}
	o.total = len(files)

	fmt.Fprintf(o.out, "Found %d file(s) to process using %d worker(s)\n", len(files), workers)
	if o.dryRun {
		fmt.Fprintln(o.out, "DRY RUN - no files will be renamed")
	}
	fmt.Fprintln(o.out)

	outcomes := make([]Outcome, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			outcomes[i] = o.processFile(ctx, path)
			return nil
		})
	}
	// Wait always returns nil here; per-file problems are absorbed into outcomes
	_ = g.Wait()

	var summary Summary
	for _, oc := range outcomes {
		switch {
		case oc.FailReason != "":
			summary.Failed++
		case oc.SkipReason != "":
			summary.Skipped++
		case oc.NewName != "":
			summary.Processed++
		}
	}
	return summary, nil
}

// processFile runs one file through the pipeline and never returns an error;
// every failure is converted into the Outcome
func (o *Organizer) processFile(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path}
	base := filepath.Base(path)

	img, err := o.images.ToImage(path)
	if err != nil {
		out.FailReason = "failed to read file"
		o.report(base, "Skipped (failed to read)")
		return out
	}

	raw, err := o.scanner.Extract(ctx, img)
	if err != nil {
		out.FailReason = fmt.Sprintf("extraction failed: %v", err)
		o.report(base, "Skipped (extraction failed)")
		return out
	}

	data := scanning.ParseResponse(raw)
	out.Data = &data

	if !data.IsMedicalReceipt {
		out.SkipReason = "not a medical receipt"
		o.report(base, "Skipped (not a medical receipt)")
		return out
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	candidate := receipt.BuildFilename(data, filepath.Ext(path))
	newName, err := o.renamer.ResolveConflict(filepath.Dir(path), candidate)
	if err != nil {
		out.FailReason = err.Error()
		o.printProgress(base)
		fmt.Fprintf(o.out, "         -> Failed (%v)\n", err)
		return out
	}

	o.printProgress(base)
	fmt.Fprintf(o.out, "         -> %s\n", newName)
	if o.verbose {
		amount := "UNKNOWN"
		if data.Amount != nil {
			amount = strconv.FormatFloat(*data.Amount, 'f', -1, 64)
		}
		fmt.Fprintf(o.out, "            Date: %s\n", orUnknown(data.Date))
		fmt.Fprintf(o.out, "            Provider: %s\n", orUnknown(data.Provider))
		fmt.Fprintf(o.out, "            Patient: %s\n", orUnknown(data.Patient))
		fmt.Fprintf(o.out, "            Amount: %s %s\n", amount, data.Currency)
	}

	if o.confirm && !o.promptAccepted() {
		fmt.Fprintln(o.out, "         Skipped by user")
		out.SkipReason = "skipped by user"
		return out
	}

	if _, err := o.renamer.Rename(path, newName, o.dryRun); err != nil {
		out.FailReason = err.Error()
		fmt.Fprintf(o.out, "         Failed: %v\n", err)
		return out
	}

	out.NewName = newName
	return out
}

// promptAccepted asks the operator about the proposed rename. Anything but an
// explicit "n" accepts. Must be called with mu held.
func (o *Organizer) promptAccepted() bool {
	action := "Rename"
	if o.dryRun {
		action = "Mark for rename"
	}
	fmt.Fprintf(o.out, "         %s? [Y/n] ", action)

	line, _ := o.input.ReadString('\n')
	return !strings.EqualFold(strings.TrimSpace(line), "n")
}

// report prints the numbered progress line plus a one-line status for files
// that terminate before the rename stage
func (o *Organizer) report(base, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.printProgress(base)
	fmt.Fprintf(o.out, "         -> %s\n", status)
}

// printProgress advances the shared completion counter. Must be called with
// mu held so the counter value and the output line stay in step.
func (o *Organizer) printProgress(base string) {
	o.done++
	fmt.Fprintf(o.out, "[%d/%d] %s\n", o.done, o.total, base)
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
