package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rumor-ml/commons.systems/smsparse/internal/config"
	"github.com/rumor-ml/commons.systems/smsparse/internal/dedup"
	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
	"github.com/rumor-ml/commons.systems/smsparse/internal/logging"
	"github.com/rumor-ml/commons.systems/smsparse/internal/output"
	"github.com/rumor-ml/commons.systems/smsparse/internal/parse"
	"github.com/rumor-ml/commons.systems/smsparse/internal/rules"
	"github.com/rumor-ml/commons.systems/smsparse/internal/sender"
	"github.com/rumor-ml/commons.systems/smsparse/internal/ui"
)

const (
	version = "0.1.0"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")

	// Core CLI flags
	inputFile = flag.String("input", "", "Input file with one message per line (default: stdin)")
	dryRun    = flag.Bool("dry-run", false, "Parse without recording fingerprints or saving state")
	verbose   = flag.Bool("verbose", false, "Show detailed parsing logs")

	// Output flags
	outputFile = flag.String("output", "", "Output JSON file (default: stdout)")

	// Deduplication and rules flags
	stateFile  = flag.String("state", "", "Deduplication state file (.db suffix selects SQLite)")
	rulesFile  = flag.String("rules", "", "Category rules YAML file (default: embedded rules)")
	windowFlag = flag.Duration("window", 0, "Duplicate suppression window (default: 5m)")
)

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `smsparse - Bank notification SMS parser

Reads one message per line. Lines may carry a sender ID before a tab:
  VM-HDFCBK<TAB>Rs. 299 debited from A/c **1234 ...

Usage:
  smsparse [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Parse messages from a file to stdout
  smsparse -input messages.txt

  # Parse with persistent duplicate detection
  smsparse -input messages.txt -output report.json -state state.json

  # Dry run with verbose output
  smsparse -input messages.txt -dry-run -verbose

`)
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Printf("smsparse version %s\n", version)
		os.Exit(0)
	}

	// Run parser
	if err := run(); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Environment config first; flags override below.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	statePath := cfg.StateFile
	if *stateFile != "" {
		statePath = *stateFile
	}
	rulesPath := cfg.RulesFile
	if *rulesFile != "" {
		rulesPath = *rulesFile
	}
	window := cfg.Window
	if *windowFlag != 0 {
		window = *windowFlag
	}
	if window == 0 {
		window = dedup.DefaultWindow
	}

	logger := logging.Setup(logging.Config{
		Level: logging.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	if !*verbose {
		ui.Header("Parsing SMS Notifications")
		ui.Step(1, 4, "Loading category rules")
	}

	var engine *rules.Engine
	if rulesPath != "" {
		engine, err = rules.LoadFromFile(rulesPath)
		if err != nil {
			return fmt.Errorf("failed to load rules file: %w", err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Loaded %d rule blocks from %s\n", len(engine.Blocks()), rulesPath)
		}
	} else {
		engine, err = rules.LoadEmbedded()
		if err != nil {
			return fmt.Errorf("failed to load embedded rules: %w", err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Loaded %d embedded rule blocks\n", len(engine.Blocks()))
		}
	}

	parser, err := parse.New(engine, parse.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	senders := sender.New()

	if !*verbose {
		ui.Step(2, 4, "Loading deduplication state")
	}
	store, mem, closer, err := openStore(statePath, window)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}
	if statePath != "" && !*dryRun {
		ui.Info(fmt.Sprintf("Deduplication enabled with state file: %s", statePath))
	}

	// Read messages
	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file %s: %w", *inputFile, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", *inputFile, closeErr)
			}
		}()
		in = f
	}

	if *verbose {
		fmt.Fprintln(os.Stderr, "Parsing messages...")
	} else {
		ui.Step(3, 4, "Parsing messages")
	}

	var results []output.Result
	lineNo := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		senderID, text := parseLine(scanner.Text())
		if text == "" {
			continue
		}

		res := output.Result{SenderID: senderID}
		if profile, ok := senders.Lookup(senderID); ok {
			res.SenderName = profile.Name
		}

		txn, err := parser.Parse(text, senderID)
		if err != nil {
			rej, ok := domain.AsRejection(err)
			if !ok {
				return fmt.Errorf("parse failed at line %d: %w", lineNo, err)
			}
			res.Rejected = true
			res.Reason = rej.Reason
			if *verbose {
				fmt.Fprintf(os.Stderr, "  line %d rejected: %s\n", lineNo, ui.YellowText(string(rej.Reason)))
			}
			results = append(results, res)
			continue
		}

		res.Transaction = txn
		res.Fingerprint = dedup.Fingerprint(txn.Amount, txn.Merchant, txn.TransactionDate)
		res.DetectionID = uuid.NewString()
		duplicate, err := store.Observe(ctx, res.Fingerprint, res.DetectionID, time.Now())
		if err != nil {
			return fmt.Errorf("fingerprint store failed at line %d: %w", lineNo, err)
		}
		res.Duplicate = duplicate

		if *verbose {
			name := res.SenderName
			if name == "" {
				name = "unknown sender"
			}
			fmt.Fprintf(os.Stderr, "  line %d: %s %s %s -> %s\n",
				lineNo, ui.BlueText(name), txn.Direction, txn.Amount.StringFixed(2), txn.CategoryGuess)
			if duplicate {
				fmt.Fprintf(os.Stderr, "    %s\n", ui.YellowText("duplicate within window"))
			}
		}
		results = append(results, res)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	report := output.NewReport(results)

	if *verbose {
		fmt.Fprintf(os.Stderr, "\nParsing complete:\n")
		fmt.Fprintf(os.Stderr, "  Parsed: %d\n", report.Parsed)
		fmt.Fprintf(os.Stderr, "  Rejected: %d\n", report.Rejected)
		fmt.Fprintf(os.Stderr, "  Duplicates: %d\n", report.Dupes)
	} else {
		ui.Success(fmt.Sprintf("Parsed %d, rejected %d, duplicates %d",
			report.Parsed, report.Rejected, report.Dupes))
	}

	if *dryRun {
		ui.Warning("Dry run: state not saved")
	}

	// Save state before writing output so a failed write can be retried
	// without losing deduplication history.
	if mem != nil && statePath != "" && !*dryRun {
		if err := dedup.SaveState(mem.Snapshot(), statePath); err != nil {
			return fmt.Errorf("failed to save state file before writing output: %w", err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Saved state with %d fingerprints to %s\n", mem.Len(), statePath)
		}
	}

	if !*verbose {
		ui.Step(4, 4, "Writing report")
	}
	opts := output.WriteOptions{FilePath: *outputFile}
	if err := output.WriteReportToFile(report, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if *outputFile != "" {
		if *verbose {
			fmt.Printf("\nOutput written to %s\n", *outputFile)
		} else {
			ui.Success(fmt.Sprintf("Output written to %s", *outputFile))
		}
	}

	return nil
}

// openStore selects the fingerprint store for statePath. An empty path or a
// dry run gets a fresh in-memory store; a ".db" path opens SQLite; anything
// else loads a JSON state file. mem is non-nil only for stores that persist
// through SaveState, and closer is non-nil only when cleanup is needed.
func openStore(statePath string, window time.Duration) (store dedup.Observer, mem *dedup.Store, closer func(), err error) {
	if statePath == "" || *dryRun {
		// Fresh in-memory store. Duplicates are still detected within the
		// batch, but nothing is recorded on disk.
		return dedup.ContextStore{Store: dedup.NewStore(window)}, nil, nil, nil
	}

	if strings.HasSuffix(statePath, ".db") {
		db, err := dedup.OpenSQLiteStore(statePath, window)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open state database %s: %w", statePath, err)
		}
		return db, nil, func() {
			if closeErr := db.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", statePath, closeErr)
			}
		}, nil
	}

	state, err := dedup.LoadState(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run, start empty.
			s := dedup.NewStore(window)
			return dedup.ContextStore{Store: s}, s, nil, nil
		}
		// The state file exists but cannot be loaded. Do not overwrite it
		// with empty state: that would reprocess every message as new.
		return nil, nil, nil, fmt.Errorf("failed to load existing state file %q: %w\n\nThe file exists but cannot be loaded. Deleting it loses deduplication history.\nOptions:\n  1. Inspect the file: cat %q\n  2. Back it up: cp %q %q.backup\n  3. Reset (reprocesses everything as new): rm %q after backing up",
			statePath, err, statePath, statePath, statePath, statePath)
	}

	s, err := dedup.NewStoreFromState(state)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("state file %q is invalid: %w", statePath, err)
	}
	// The configured window wins over whatever the state file recorded, so
	// -window takes effect on an existing state and is persisted on save.
	s.SetWindow(window)
	s.Sweep(time.Now())
	return dedup.ContextStore{Store: s}, s, nil, nil
}

// parseLine splits an input line into sender ID and message text.
// A tab separates the sender from the text; lines without a tab are
// treated as bare message text with no sender.
func parseLine(line string) (senderID, text string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	if id, rest, ok := strings.Cut(line, "\t"); ok {
		return strings.TrimSpace(id), strings.TrimSpace(rest)
	}
	return "", line
}
