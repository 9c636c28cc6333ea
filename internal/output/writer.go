package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
)

// WriteOptions configures how the report is written
type WriteOptions struct {
	FilePath string // Output path (empty = stdout)
}

// Result is the outcome of processing a single message.
type Result struct {
	SenderID    string                    `json:"sender_id,omitempty"`
	SenderName  string                    `json:"sender_name,omitempty"`
	Transaction *domain.ParsedTransaction `json:"transaction,omitempty"`
	Rejected    bool                      `json:"rejected,omitempty"`
	Reason      domain.Reason             `json:"reason,omitempty"`
	Duplicate   bool                      `json:"duplicate,omitempty"`
	Fingerprint string                    `json:"fingerprint,omitempty"`
	DetectionID string                    `json:"detection_id,omitempty"`
}

// Report aggregates the results for a whole input batch.
type Report struct {
	Results  []Result `json:"results"`
	Parsed   int      `json:"parsed"`
	Rejected int      `json:"rejected"`
	Dupes    int      `json:"duplicates"`
}

// NewReport builds a Report from individual results, computing the
// summary counts.
func NewReport(results []Result) *Report {
	report := &Report{Results: results}
	for _, r := range results {
		switch {
		case r.Rejected:
			report.Rejected++
		case r.Duplicate:
			report.Dupes++
		default:
			report.Parsed++
		}
	}
	return report
}

// WriteReport serializes the report to JSON with 2-space indentation
func WriteReport(report *Report, w io.Writer) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as JSON: %w", err)
	}

	return nil
}

// WriteReportToFile writes the report to file or stdout based on options
func WriteReportToFile(report *Report, opts WriteOptions) (err error) {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	// Write to stdout if no file path specified
	if opts.FilePath == "" {
		return WriteReport(report, os.Stdout)
	}

	f, err := os.Create(opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", opts.FilePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", opts.FilePath, closeErr)
		}
	}()

	if err = WriteReport(report, f); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", opts.FilePath, err)
	}

	return nil
}
