package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
)

func sampleResults(t *testing.T) []Result {
	t.Helper()

	txn, err := domain.NewParsedTransaction(
		decimal.NewFromInt(299),
		domain.DirectionDebit,
		time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}
	txn.Merchant = "Zomato"
	txn.SetCategoryGuess(domain.CategoryFood)

	return []Result{
		{
			SenderID:    "HDFCBK",
			SenderName:  "HDFC Bank",
			Transaction: txn,
			Fingerprint: "abc123",
			DetectionID: "det-1",
		},
		{
			SenderID: "VM-PROMO",
			Rejected: true,
			Reason:   domain.ReasonLooksLikePromotional,
		},
		{
			SenderID:    "HDFCBK",
			Transaction: txn,
			Duplicate:   true,
			Fingerprint: "abc123",
		},
	}
}

func TestNewReport_Counts(t *testing.T) {
	report := NewReport(sampleResults(t))

	if report.Parsed != 1 {
		t.Errorf("expected 1 parsed, got %d", report.Parsed)
	}
	if report.Rejected != 1 {
		t.Errorf("expected 1 rejected, got %d", report.Rejected)
	}
	if report.Dupes != 1 {
		t.Errorf("expected 1 duplicate, got %d", report.Dupes)
	}
}

func TestWriteReport(t *testing.T) {
	report := NewReport(sampleResults(t))

	var buf bytes.Buffer
	if err := WriteReport(report, &buf); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	// Verify valid JSON
	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if _, ok := result["results"]; !ok {
		t.Errorf("output missing 'results' field")
	}
	if _, ok := result["parsed"]; !ok {
		t.Errorf("output missing 'parsed' field")
	}
	if _, ok := result["duplicates"]; !ok {
		t.Errorf("output missing 'duplicates' field")
	}

	// Verify 2-space indentation
	output := buf.String()
	if !strings.Contains(output, "  \"results\"") {
		t.Errorf("output does not use 2-space indentation")
	}
}

func TestWriteReport_TransactionFields(t *testing.T) {
	report := NewReport(sampleResults(t))

	var buf bytes.Buffer
	if err := WriteReport(report, &buf); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	output := buf.String()
	for _, field := range []string{
		`"amount"`,
		`"direction"`,
		`"merchant"`,
		`"category_guess"`,
		`"transaction_date"`,
	} {
		if !strings.Contains(output, field) {
			t.Errorf("output missing transaction field %s", field)
		}
	}
}

func TestWriteReport_NilReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(nil, &buf); err == nil {
		t.Errorf("expected error for nil report")
	}
}

func TestWriteReportToFile(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "report.json")

	report := NewReport(sampleResults(t))

	opts := WriteOptions{FilePath: outputPath}
	if err := WriteReportToFile(report, opts); err != nil {
		t.Fatalf("WriteReportToFile failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(content, &result); err != nil {
		t.Fatalf("output file contains invalid JSON: %v", err)
	}

	results := result["results"].([]interface{})
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestWriteReportToFile_BadPath(t *testing.T) {
	report := NewReport(nil)

	opts := WriteOptions{FilePath: "/nonexistent/dir/report.json"}
	if err := WriteReportToFile(report, opts); err == nil {
		t.Errorf("expected error for unwritable path")
	}
}
